package extraction

import (
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/vote"
)

// Votes reads player scores from every table whose header names a player
// and a score column. The team comes from a column or the table label.
func Votes(doc *goquery.Document, rules VotesRules) Result[vote.Vote] {
	tables := doc.Find("table")
	if tables.Length() == 0 {
		return empty[vote.Vote]("page has no tables")
	}

	matchday := findMatchday(SpacedText(doc.Selection), rules.MatchdayPattern)
	var out []vote.Vote
	matched := false
	tables.Each(func(_ int, table *goquery.Selection) {
		headers := headerTexts(table)
		taken := make(map[int]bool)
		playerIdx := columnIndex(headers, rules.Player, taken)
		if playerIdx >= 0 {
			taken[playerIdx] = true
		}
		scoreIdx := columnIndex(headers, rules.Score, taken)
		if scoreIdx >= 0 {
			taken[scoreIdx] = true
		}
		teamIdx := columnIndex(headers, rules.Team, taken)
		if playerIdx < 0 || scoreIdx < 0 {
			return
		}
		matched = true

		tableTeam := tableLabel(table)
		tableRows(table).Each(func(_ int, row *goquery.Selection) {
			if isHeaderRow(row) {
				return
			}
			cells := cellTexts(rowCells(row))
			name := cellAt(cells, playerIdx)
			score, okScore := ParseNumber(cellAt(cells, scoreIdx))
			if !plausibleName(name) || !okScore {
				return
			}
			team := cellAt(cells, teamIdx)
			if team == "" {
				team = tableTeam
			}
			out = append(out, vote.Vote{PlayerName: name, TeamName: team, Score: score, Matchday: matchday})
		})
	})

	if !matched {
		return malformed[vote.Vote]("no table with player and score columns")
	}
	if len(out) == 0 {
		return malformed[vote.Vote]("no vote row had player and score")
	}
	return ok(out)
}

func findMatchday(text, pattern string) int {
	if pattern == "" {
		return 0
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0
	}
	for _, group := range re.FindStringSubmatch(text) {
		if n, err := strconv.Atoi(group); err == nil {
			return n
		}
	}
	return 0
}

// tableLabel is the caption of a table or the closest heading before it.
func tableLabel(table *goquery.Selection) string {
	if caption := CleanText(table.ChildrenFiltered("caption").Text()); caption != "" {
		return caption
	}
	node := table
	for depth := 0; depth < 3 && node.Length() > 0; depth++ {
		if heading := node.PrevAllFiltered("h1, h2, h3, h4, h5").First(); heading.Length() > 0 {
			return CleanText(heading.Text())
		}
		node = node.Parent()
	}
	return ""
}
