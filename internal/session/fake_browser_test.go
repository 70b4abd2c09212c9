package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/fantasy-league-scraper/internal/extraction"
)

const (
	testBase      = "https://fanta.test"
	testLoginURL  = testBase + "/login"
	loginPageHTML = `<html><body><form>
		<input name="username"><input type="password" name="password">
		<button type="submit">Accedi</button></form></body></html>`
	dashboardHTML = `<html><body><nav><a href="/logout">Esci</a></nav><h1>La mia lega</h1></body></html>`
)

var errFakeSnapshot = errors.New("snapshot failed")

// fakeBrowser serves canned HTML per URL. Navigations listed in redirects
// land on the mapped URL, and onClick hooks simulate form submits.
type fakeBrowser struct {
	mu sync.Mutex

	current   string
	pages     map[string]string
	redirects map[string][]string
	elements  map[string]map[string][]Element
	onClick   map[string]func(b *fakeBrowser)

	cookies     []Cookie
	setCookies  [][]Cookie
	fills       map[string]string
	clicks      []string
	navigations []string
	snapshots   int
	snapshotErr error

	done      chan struct{}
	closeOnce sync.Once
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{
		pages:     map[string]string{testLoginURL: loginPageHTML},
		redirects: map[string][]string{},
		elements: map[string]map[string][]Element{
			testLoginURL: {
				"input[name=username]": {{Selector: "#u", Tag: "input"}},
				"input[type=password]": {{Selector: "#p", Tag: "input"}},
				"button[type=submit]":  {{Selector: "#s", Tag: "button", Text: "Accedi"}},
			},
		},
		onClick: map[string]func(b *fakeBrowser){},
		fills:   map[string]string{},
		done:    make(chan struct{}),
	}
}

// acceptLogin makes the submit button land on the dashboard with a cookie.
func (b *fakeBrowser) acceptLogin() {
	b.pages[testBase] = dashboardHTML
	b.pages[testBase+"/dashboard"] = dashboardHTML
	b.onClick["#s"] = func(b *fakeBrowser) {
		b.current = testBase + "/dashboard"
		b.cookies = []Cookie{{Name: "sid", Value: "secret", Domain: "fanta.test", Path: "/"}}
	}
}

func (b *fakeBrowser) Navigate(_ context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.navigations = append(b.navigations, url)
	if queue := b.redirects[url]; len(queue) > 0 {
		b.current = queue[0]
		b.redirects[url] = queue[1:]
		return nil
	}
	b.current = url
	return nil
}

func (b *fakeBrowser) CurrentURL(context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current, nil
}

func (b *fakeBrowser) Snapshot(context.Context) (*goquery.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.snapshots++
	if b.snapshotErr != nil {
		return nil, b.snapshotErr
	}
	return goquery.NewDocumentFromReader(strings.NewReader(b.pages[b.current]))
}

func (b *fakeBrowser) Evaluate(context.Context, string, any, ...any) error {
	return nil
}

func (b *fakeBrowser) FindElements(_ context.Context, selector string) ([]Element, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Element(nil), b.elements[b.current][selector]...), nil
}

func (b *fakeBrowser) Fill(_ context.Context, selector, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fills[selector] = value
	return nil
}

func (b *fakeBrowser) Click(_ context.Context, selector string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.clicks = append(b.clicks, selector)
	if hook := b.onClick[selector]; hook != nil {
		hook(b)
	}
	return nil
}

func (b *fakeBrowser) Cookies(context.Context) ([]Cookie, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Cookie(nil), b.cookies...), nil
}

func (b *fakeBrowser) SetCookies(_ context.Context, cookies []Cookie) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setCookies = append(b.setCookies, cookies)
	b.cookies = append([]Cookie(nil), cookies...)
	return nil
}

func (b *fakeBrowser) Done() <-chan struct{} {
	return b.done
}

func (b *fakeBrowser) Close() error {
	b.closeOnce.Do(func() { close(b.done) })
	return nil
}

func testRules() extraction.Rules {
	rules := extraction.DefaultRules()
	rules.Login = extraction.LoginRules{
		UsernameSelectors: []string{"input[name=user]", "input[name=username]"},
		PasswordSelectors: []string{"input[type=password]"},
		SubmitSelectors:   []string{"button[type=submit]"},
	}
	return rules
}

func testConfig() Config {
	return Config{
		BaseURL:                    testBase,
		LoginTimeout:               40 * time.Millisecond,
		LoginPollInterval:          time.Millisecond,
		ManualLoginTimeout:         2 * time.Second,
		ManualPollInterval:         time.Millisecond,
		ManualMaxConsecutiveErrors: 3,
		ConfirmDelay:               -1,
		RetryDelay:                 -1,
	}
}
