package extraction

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize lowercases s and collapses whitespace.
func Normalize(s string) string {
	return strings.ToLower(CleanText(s))
}

// CleanText trims s and collapses inner whitespace.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// ContainsAny reports whether the normalized text contains any keyword.
func ContainsAny(text string, keywords []string) bool {
	text = Normalize(text)
	if text == "" {
		return false
	}
	for _, kw := range keywords {
		kw = Normalize(kw)
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// HasWord reports whether text contains any keyword as a whole word or phrase.
func HasWord(text string, keywords []string) bool {
	words := splitWords(Normalize(text))
	if len(words) == 0 {
		return false
	}
	joined := " " + strings.Join(words, " ") + " "
	for _, kw := range keywords {
		kwWords := splitWords(Normalize(kw))
		if len(kwWords) == 0 {
			continue
		}
		if strings.Contains(joined, " "+strings.Join(kwWords, " ")+" ") {
			return true
		}
	}
	return false
}

// MatchesHeader reports whether a header cell names one of the keywords.
// Short keywords must match exactly, longer ones may be contained.
func MatchesHeader(cell string, keywords []string) bool {
	cell = Normalize(cell)
	if cell == "" {
		return false
	}
	for _, kw := range keywords {
		kw = Normalize(kw)
		if kw == "" {
			continue
		}
		if cell == kw {
			return true
		}
		if len(kw) >= 4 && strings.Contains(cell, kw) {
			return true
		}
	}
	return false
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '/' && r != '#'
	})
}

// ParseNumber parses numbers written with either decimal separator,
// optionally carrying currency or ordinal marks.
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.NewReplacer("€", "", "°", "", "ª", "", " ", "", "\u00a0", "").Replace(s)
	s = strings.TrimSuffix(strings.TrimSuffix(s, "cr"), "CR")
	s = strings.TrimSuffix(s, ".")
	if s == "" || hasLetter(s) {
		return 0, false
	}
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
		}
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseInt parses an integer cell, allowing a leading sign and ordinal marks.
func ParseInt(raw string) (int, bool) {
	v, ok := ParseNumber(raw)
	if !ok || v != float64(int(v)) {
		return 0, false
	}
	return int(v), true
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func plausibleName(s string) bool {
	s = CleanText(s)
	if s == "" || len(s) > 60 || !hasLetter(s) {
		return false
	}
	_, numeric := ParseNumber(s)
	return !numeric
}

func cellTexts(cells *goquery.Selection) []string {
	out := make([]string, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		out = append(out, CleanText(cell.Text()))
	})
	return out
}

func rowCells(row *goquery.Selection) *goquery.Selection {
	return row.ChildrenFiltered("td, th")
}

func tableRows(table *goquery.Selection) *goquery.Selection {
	// Nested tables carry their own rows.
	return table.Find("tr").FilterFunction(func(_ int, row *goquery.Selection) bool {
		return row.Closest("table").IsSelection(table)
	})
}

func headerTexts(table *goquery.Selection) []string {
	head := table.Find("thead tr").First()
	if head.Length() == 0 {
		head = tableRows(table).FilterFunction(func(_ int, row *goquery.Selection) bool {
			return row.ChildrenFiltered("th").Length() > 0
		}).First()
	}
	if head.Length() == 0 {
		return nil
	}
	return cellTexts(rowCells(head))
}

func isHeaderRow(row *goquery.Selection) bool {
	if row.ParentsFiltered("thead").Length() > 0 {
		return true
	}
	cells := rowCells(row)
	return cells.Length() > 0 && cells.Length() == row.ChildrenFiltered("th").Length()
}

func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if base == "" {
		return ref.String()
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref.String()
	}
	return baseURL.ResolveReference(ref).String()
}

// columnIndex returns the first header index matching keywords, or -1.
func columnIndex(headers []string, keywords []string, taken map[int]bool) int {
	for i, h := range headers {
		if taken[i] {
			continue
		}
		if MatchesHeader(h, keywords) {
			return i
		}
	}
	return -1
}

func cellAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

// SpacedText joins the text nodes under s with spaces, so adjacent elements
// do not run together.
func SpacedText(s *goquery.Selection) string {
	var b strings.Builder
	var walk func(sel *goquery.Selection)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, child *goquery.Selection) {
			switch goquery.NodeName(child) {
			case "#text":
				b.WriteString(child.Text())
				b.WriteByte(' ')
			case "script", "style", "#comment":
			default:
				walk(child)
			}
		})
	}
	walk(s)
	return CleanText(b.String())
}
