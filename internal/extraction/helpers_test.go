package extraction

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func mustDocAt(t *testing.T, rawURL, html string) *goquery.Document {
	t.Helper()

	doc := mustDoc(t, html)
	parsed, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse fixture url: %v", err)
	}
	doc.Url = parsed
	return doc
}
