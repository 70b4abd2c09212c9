package extraction

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/league"
)

var (
	numericIDRegex    = regexp.MustCompile(`^\d+$`)
	trailingPathIDReg = regexp.MustCompile(`/(\d+)/?$`)
)

// Competitions lists selectable competitions from select options and
// dropdown links. Administrative entries and non-numeric ids are skipped.
// A page without the control yields Empty, which callers read as the single
// default competition.
func Competitions(doc *goquery.Document, pageURL string, rules CompetitionRules) Result[league.Competition] {
	if pageURL == "" {
		pageURL = documentURL(doc)
	}

	var out []league.Competition
	seen := make(map[string]bool)
	found := false
	add := func(id, name, sourceURL string) {
		id = strings.TrimSpace(id)
		name = CleanText(name)
		if name == "" || !numericIDRegex.MatchString(id) || seen[id] {
			return
		}
		if HasWord(name, rules.AdminKeywords) {
			return
		}
		seen[id] = true
		out = append(out, league.Competition{ID: id, Name: name, SourceURL: sourceURL})
	}

	for _, sel := range rules.SelectSelectors {
		doc.Find(sel).Each(func(_ int, control *goquery.Selection) {
			found = true
			control.Find("option").Each(func(_ int, option *goquery.Selection) {
				id, ok := option.Attr("value")
				if !ok {
					id = option.Text()
				}
				add(id, option.Text(), withQueryParam(pageURL, "id", strings.TrimSpace(id)))
			})
		})
	}
	for _, sel := range rules.LinkSelectors {
		doc.Find(sel).Each(func(_ int, link *goquery.Selection) {
			found = true
			href, _ := link.Attr("href")
			target := resolveURL(pageURL, href)
			add(competitionIDFromURL(target, rules.IDParams), link.Text(), target)
		})
	}

	if !found {
		return empty[league.Competition]("page has no competition control")
	}
	return ok(out)
}

func competitionIDFromURL(raw string, params []string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	query := parsed.Query()
	for _, param := range params {
		if v := strings.TrimSpace(query.Get(param)); v != "" {
			return v
		}
	}
	if m := trailingPathIDReg.FindStringSubmatch(parsed.Path); len(m) == 2 {
		return m[1]
	}
	return ""
}

func withQueryParam(raw, key, value string) string {
	if raw == "" || value == "" {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	query := parsed.Query()
	query.Set(key, value)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// WithCompetition narrows a page URL to one competition.
func WithCompetition(raw, competitionID string) string {
	return withQueryParam(raw, "id", competitionID)
}
