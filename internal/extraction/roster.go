package extraction

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/scraped"
)

// Rosters reads fantasy teams and their players. The best scoring table is
// walked with a current-team cursor; player columns are anchored from the
// right so the last cell is the auction value and the one before it the
// performance index. Without any team row, links to team pages become stubs.
func Rosters(doc *goquery.Document, leagueType league.Type, rules RosterRules) Result[scraped.Roster] {
	tables := doc.Find("table")
	links := doc.Find("a[href]")
	if tables.Length() == 0 && links.Length() == 0 {
		return empty[scraped.Roster]("page has no tables or links")
	}

	base := documentURL(doc)
	if table := primaryRosterTable(tables, rules); table != nil {
		if rosters := walkRosterTable(table, leagueType, rules, base); len(rosters) > 0 {
			return ok(rosters)
		}
	}

	if stubs := rosterLinkStubs(links, rules, base); len(stubs) > 0 {
		return ok(stubs)
	}
	return malformed[scraped.Roster]("no team rows or team links matched")
}

func primaryRosterTable(tables *goquery.Selection, rules RosterRules) *goquery.Selection {
	var (
		best      *goquery.Selection
		bestScore = -1
		bestRows  = -1
	)
	tables.Each(func(_ int, table *goquery.Selection) {
		rows := tableRows(table).Length()
		if rows == 0 {
			return
		}
		label := table.ChildrenFiltered("caption").Text() + " " + strings.Join(headerTexts(table), " ")
		score := 0
		for _, kw := range rules.TableKeywords {
			if HasWord(label, []string{kw}) {
				score++
			}
		}
		if score > bestScore || (score == bestScore && rows > bestRows) {
			best, bestScore, bestRows = table, score, rows
		}
	})
	return best
}

func walkRosterTable(table *goquery.Selection, leagueType league.Type, rules RosterRules, base string) []scraped.Roster {
	var rosters []scraped.Roster
	byName := make(map[string]int)
	cursor := -1

	startTeam := func(name, sourceURL string) {
		key := Normalize(name)
		if idx, ok := byName[key]; ok {
			cursor = idx
			return
		}
		rosters = append(rosters, scraped.Roster{Name: name, SourceURL: sourceURL, Players: []scraped.PlayerRow{}})
		cursor = len(rosters) - 1
		byName[key] = cursor
	}

	if caption := CleanText(table.ChildrenFiltered("caption").Text()); plausibleName(caption) {
		startTeam(caption, "")
	}

	tableRows(table).Each(func(_ int, row *goquery.Selection) {
		if rosterHeaderRow(row) {
			return
		}
		cells := rowCells(row)
		texts := cellTexts(cells)
		if len(texts) == 0 {
			return
		}

		if headerLike(texts, rules.HeaderKeywords) {
			return
		}
		if name, sourceURL, ok := teamFromRow(cells.First(), texts, rules, base); ok {
			startTeam(name, sourceURL)
			return
		}
		if cursor < 0 {
			return
		}
		if p, ok := playerFromCells(texts, leagueType); ok {
			rosters[cursor].Players = append(rosters[cursor].Players, p)
		}
	})

	return rosters
}

// rosterHeaderRow keeps all-th rows whose first cell links a team page, since
// some layouts mark each team that way inside tbody.
func rosterHeaderRow(row *goquery.Selection) bool {
	if row.ParentsFiltered("thead").Length() > 0 {
		return true
	}
	if !isHeaderRow(row) {
		return false
	}
	return rowCells(row).First().Find("a[href]").Length() == 0
}

func teamFromRow(first *goquery.Selection, texts []string, rules RosterRules, base string) (string, string, bool) {
	if anchor := first.Find("a[href]").First(); anchor.Length() > 0 {
		name := CleanText(anchor.Text())
		if plausibleName(name) {
			href, _ := anchor.Attr("href")
			return name, resolveURL(base, href), true
		}
	}

	label := Normalize(texts[0])
	for _, kw := range rules.TeamKeywords {
		kw = Normalize(kw)
		if kw == "" || !strings.HasPrefix(label, kw) {
			continue
		}
		rest := label[len(kw):]
		if rest != "" && !strings.ContainsAny(rest[:1], " :-–") {
			continue
		}
		name := strings.TrimLeft(CleanText(texts[0])[len(kw):], " :-–")
		name = CleanText(name)
		if name == "" && len(texts) > 1 {
			name = texts[1]
		}
		if plausibleName(name) {
			return name, "", true
		}
	}
	return "", "", false
}

func headerLike(texts []string, keywords []string) bool {
	hits := 0
	for _, text := range texts {
		if MatchesHeader(text, keywords) {
			hits++
		}
	}
	return hits >= 2
}

func playerFromCells(texts []string, leagueType league.Type) (scraped.PlayerRow, bool) {
	if len(texts) < 4 {
		return scraped.PlayerRow{}, false
	}
	name := texts[1]
	if !plausibleName(name) {
		return scraped.PlayerRow{}, false
	}
	qa, okQA := ParseNumber(texts[len(texts)-1])
	qi, okQI := ParseNumber(texts[len(texts)-2])
	if !okQA || !okQI {
		return scraped.PlayerRow{}, false
	}

	row := scraped.PlayerRow{
		Name:             name,
		Role:             NormalizeRole(texts[0], leagueType),
		AuctionValue:     qa,
		PerformanceIndex: qi,
	}
	for _, cell := range texts[2 : len(texts)-2] {
		if cell == "" {
			continue
		}
		if _, numeric := ParseNumber(cell); numeric {
			if row.MarketForm == "" {
				row.MarketForm = cell
			}
			continue
		}
		if row.RealClub == "" {
			row.RealClub = cell
		}
	}
	return row, true
}

func rosterLinkStubs(links *goquery.Selection, rules RosterRules, base string) []scraped.Roster {
	var stubs []scraped.Roster
	seen := make(map[string]bool)
	basePath := ""
	if parsed, err := url.Parse(base); err == nil {
		basePath = strings.TrimSuffix(parsed.Path, "/")
	}

	links.Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		target, err := url.Parse(resolveURL(base, href))
		if err != nil {
			return
		}
		path := strings.ToLower(target.Path)
		if path == "" || strings.TrimSuffix(target.Path, "/") == basePath {
			return
		}
		if !ContainsAny(path, rules.LinkKeywords) {
			return
		}
		name := CleanText(link.Text())
		if !plausibleName(name) || seen[Normalize(name)] {
			return
		}
		seen[Normalize(name)] = true
		stubs = append(stubs, scraped.Roster{Name: name, SourceURL: target.String(), Players: []scraped.PlayerRow{}})
	})
	return stubs
}

func documentURL(doc *goquery.Document) string {
	if doc == nil || doc.Url == nil {
		return ""
	}
	return doc.Url.String()
}
