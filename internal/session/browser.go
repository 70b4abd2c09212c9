package session

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Browser is one live automated page. Implementations bound every call with
// their own timeouts; a failed call leaves the page usable.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	// Snapshot returns the rendered DOM of the current page.
	Snapshot(ctx context.Context) (*goquery.Document, error)
	// Evaluate runs a read-only function expression with JSON encoded args and
	// decodes its result into out.
	Evaluate(ctx context.Context, fn string, out any, args ...any) error
	FindElements(ctx context.Context, selector string) ([]Element, error)
	Fill(ctx context.Context, selector, value string) error
	Click(ctx context.Context, selector string) error
	Cookies(ctx context.Context) ([]Cookie, error)
	SetCookies(ctx context.Context, cookies []Cookie) error
	// Done is closed once the browser has gone away.
	Done() <-chan struct{}
	Close() error
}

// Element is a handle to a matched element. Selector addresses exactly this
// element for later Click or Fill calls.
type Element struct {
	Selector string `json:"selector"`
	Text     string `json:"text"`
	Href     string `json:"href"`
	Tag      string `json:"tag"`
}

type Cookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain"`
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HTTPOnly bool      `json:"httpOnly,omitempty"`
	SameSite string    `json:"sameSite,omitempty"`
}

// Expired reports whether the cookie carries an expiry already in the past.
func (c Cookie) Expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}
