package session

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/fantasy-league-scraper/internal/extraction"
)

const (
	ReasonLoginPath      = "login_path"
	ReasonCaptcha        = "captcha"
	ReasonLoginForm      = "login_affordance"
	ReasonLogoutPresent  = "logout_affordance"
	ReasonProtectedPath  = "protected_path"
	ReasonNoSignal       = "no_signal"
	affordanceSelector   = "a, button, [role=button], input[type=submit], input[type=button]"
	hiddenAncestorFilter = "[hidden], [aria-hidden=true], [style*='display:none'], [style*='display: none']"
)

// Signal is the authentication verdict for one page.
type Signal struct {
	Authenticated bool
	Reason        string
}

// DetectAuthentication decides from URL and DOM alone whether the page
// belongs to a logged-in session. Login evidence always wins over logout
// evidence, so a wrong answer leans towards an extra login.
func DetectAuthentication(pageURL string, doc *goquery.Document, rules extraction.AuthRules) Signal {
	path := ""
	if parsed, err := url.Parse(pageURL); err == nil {
		path = strings.ToLower(parsed.Path)
	}
	if hasPathSegment(path, rules.LoginPaths) {
		return Signal{Reason: ReasonLoginPath}
	}
	if doc == nil {
		return Signal{Reason: ReasonNoSignal}
	}

	for _, sel := range rules.CaptchaSelectors {
		if doc.Find(sel).Length() > 0 {
			return Signal{Reason: ReasonCaptcha}
		}
	}
	if hasVisiblePassword(doc) || hasAffordance(doc, rules.LoginKeywords) {
		return Signal{Reason: ReasonLoginForm}
	}
	if hasAffordance(doc, rules.LogoutKeywords) {
		return Signal{Authenticated: true, Reason: ReasonLogoutPresent}
	}
	if hasPathSegment(path, rules.ProtectedPaths) {
		return Signal{Authenticated: true, Reason: ReasonProtectedPath}
	}
	return Signal{Reason: ReasonNoSignal}
}

// IsLoginURL reports whether the URL path is one of the login paths.
func IsLoginURL(pageURL string, rules extraction.AuthRules) bool {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	return hasPathSegment(strings.ToLower(parsed.Path), rules.LoginPaths)
}

func hasPathSegment(path string, segments []string) bool {
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		for _, seg := range segments {
			if part == strings.ToLower(strings.Trim(seg, "/")) {
				return true
			}
		}
	}
	return false
}

func hasVisiblePassword(doc *goquery.Document) bool {
	visible := false
	doc.Find("input[type=password]").EachWithBreak(func(_ int, input *goquery.Selection) bool {
		if input.Is(hiddenAncestorFilter) || input.ParentsFiltered(hiddenAncestorFilter).Length() > 0 {
			return true
		}
		visible = true
		return false
	})
	return visible
}

func hasAffordance(doc *goquery.Document, keywords []string) bool {
	found := false
	doc.Find(affordanceSelector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		text := el.Text()
		if value, ok := el.Attr("value"); ok && text == "" {
			text = value
		}
		if extraction.HasWord(text, keywords) {
			found = true
			return false
		}
		if href, ok := el.Attr("href"); ok && hrefMatches(href, keywords) {
			found = true
			return false
		}
		return true
	})
	return found
}

func hrefMatches(href string, keywords []string) bool {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}
	path := strings.ToLower(parsed.Path)
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		for _, kw := range keywords {
			kw = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(kw)), " ", "")
			if kw != "" && strings.ReplaceAll(part, "-", "") == kw {
				return true
			}
		}
	}
	return false
}
