package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/fantasy-league-scraper/internal/session"
)

const (
	siteBase  = "https://leghe.example.test"
	siteLogin = siteBase + "/login"

	loginHTML   = `<html><body><form><input name="username"><input type="password"><button type="submit">Accedi</button></form></body></html>`
	navHTML     = `<nav><a href="/logout">Esci</a></nav>`
	rostersHTML = `<html><body>` + navHTML + `
<table class="rose">
  <tr><th>Ruolo</th><th>Calciatore</th><th>Squadra</th><th>FVM</th><th>QI</th><th>QA</th></tr>
  <tr><td colspan="6"><a href="/rosa/dream-team">Dream Team</a></td></tr>
  <tr><td>Portiere</td><td>Sommer</td><td>Inter</td><td>12</td><td>18</td><td>20</td></tr>
  <tr><td>Difensore</td><td>Bastoni</td><td>Inter</td><td>30</td><td>14</td><td>25</td></tr>
  <tr><td>Attaccante</td><td>Lautaro</td><td>Inter</td><td>220</td><td>36,5</td><td>41</td></tr>
  <tr><td colspan="6"><a href="/rosa/real-fanta">Real Fanta</a></td></tr>
  <tr><td>Portiere</td><td>Maignan</td><td>Milan</td><td>15</td><td>17</td><td>19</td></tr>
  <tr><td>Centrocampista</td><td>Barella</td><td>Inter</td><td>60</td><td>20</td><td>22</td></tr>
  <tr><td>Attaccante</td><td>Leao</td><td>Milan</td><td>150</td><td>28</td><td>33</td></tr>
</table></body></html>`
	standingsHTML = `<html><body>` + navHTML + `<table>
<tr><th>Pos</th><th>Squadra</th><th>GF</th><th>GS</th><th>Pt</th></tr>
<tr><td>1</td><td>Dream Team</td><td>30</td><td>10</td><td>42</td></tr>
<tr><td>2</td><td>Real Fanta</td><td>25</td><td>20</td><td>38</td></tr>
</table></body></html>`
	competitionsHTML = `<html><body>` + navHTML + `<form><select name="competizione">
<option value="10">Lega A</option><option value="admin">Impostazioni</option>
</select></form></body></html>`
	plainHTML = `<html><body>` + navHTML + `<p>Nessun dato</p></body></html>`
)

// fakeSite simulates the source site inside one browser tab. Pages are keyed
// by URL without query. lostPaths always bounce to the login page.
type fakeSite struct {
	mu sync.Mutex

	current     string
	pages       map[string]string
	lostPaths   map[string]bool
	acceptLogin bool
	cookies     []session.Cookie
	navigations []string
	clicks      int

	done      chan struct{}
	closeOnce sync.Once
	closed    bool
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		pages: map[string]string{
			siteLogin:                  loginHTML,
			siteBase:                   plainHTML,
			siteBase + "/dashboard":    plainHTML,
			siteBase + "/rose":         rostersHTML,
			siteBase + "/classifica":   standingsHTML,
			siteBase + "/voti":         plainHTML,
			siteBase + "/formazioni":   plainHTML,
			siteBase + "/mercato":      plainHTML,
			siteBase + "/competizioni": competitionsHTML,
		},
		lostPaths:   map[string]bool{},
		acceptLogin: true,
		done:        make(chan struct{}),
	}
}

func stripQuery(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}
	return raw
}

func (f *fakeSite) Navigate(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.navigations = append(f.navigations, url)
	if f.lostPaths[stripQuery(url)] {
		f.current = siteLogin
		return nil
	}
	f.current = url
	return nil
}

func (f *fakeSite) CurrentURL(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, nil
}

func (f *fakeSite) Snapshot(context.Context) (*goquery.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return goquery.NewDocumentFromReader(strings.NewReader(f.pages[stripQuery(f.current)]))
}

func (f *fakeSite) Evaluate(context.Context, string, any, ...any) error {
	return nil
}

func (f *fakeSite) FindElements(_ context.Context, selector string) ([]session.Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.current != siteLogin {
		return nil, nil
	}
	switch selector {
	case `input[name="username"]`:
		return []session.Element{{Selector: "#user", Tag: "input"}}, nil
	case `input[type="password"]`:
		return []session.Element{{Selector: "#pass", Tag: "input"}}, nil
	case `button[type="submit"]`:
		return []session.Element{{Selector: "#submit", Tag: "button", Text: "Accedi"}}, nil
	}
	return nil, nil
}

func (f *fakeSite) Fill(context.Context, string, string) error {
	return nil
}

func (f *fakeSite) Click(_ context.Context, selector string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.clicks++
	if selector == "#submit" && f.acceptLogin {
		f.current = siteBase + "/dashboard"
		f.cookies = []session.Cookie{{Name: "sid", Value: "secret-cookie", Domain: "leghe.example.test", Path: "/"}}
	}
	return nil
}

func (f *fakeSite) Cookies(context.Context) ([]session.Cookie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]session.Cookie(nil), f.cookies...), nil
}

func (f *fakeSite) SetCookies(_ context.Context, cookies []session.Cookie) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cookies = append([]session.Cookie(nil), cookies...)
	return nil
}

func (f *fakeSite) Done() <-chan struct{} {
	return f.done
}

func (f *fakeSite) Close() error {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.closed = true
		f.mu.Unlock()
		close(f.done)
	})
	return nil
}

func (f *fakeSite) visited(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, nav := range f.navigations {
		if nav == url {
			count++
		}
	}
	return count
}

type fakeLauncher struct {
	site     *fakeSite
	err      error
	launches int
}

func (l *fakeLauncher) Launch(context.Context) (session.Browser, error) {
	l.launches++
	if l.err != nil {
		return nil, l.err
	}
	return l.site, nil
}

var errChromeMissing = errors.New("chrome executable not found")

func testSessionConfig() session.Config {
	return session.Config{
		LoginTimeout:      50 * time.Millisecond,
		LoginPollInterval: time.Millisecond,
		ConfirmDelay:      -1,
		RetryDelay:        -1,
	}
}
