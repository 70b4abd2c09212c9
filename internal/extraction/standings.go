package extraction

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/leaguestanding"
)

type standingColumns struct {
	position, team, points, goalsFor, goalsAgainst, goalDifference int
}

// Standings reads the league table. Columns are mapped from header keywords;
// without a usable header the layout position, team, ..., points is assumed.
func Standings(doc *goquery.Document, rules StandingsRules) Result[leaguestanding.Standing] {
	tables := doc.Find("table")
	if tables.Length() == 0 {
		return empty[leaguestanding.Standing]("page has no tables")
	}

	table, cols := bestStandingsTable(tables, rules)
	var out []leaguestanding.Standing
	seen := make(map[string]bool)
	tableRows(table).Each(func(_ int, row *goquery.Selection) {
		if isHeaderRow(row) {
			return
		}
		cells := cellTexts(rowCells(row))
		entry, ok := standingFromCells(cells, cols)
		if !ok || seen[Normalize(entry.TeamName)] {
			return
		}
		seen[Normalize(entry.TeamName)] = true
		out = append(out, entry)
	})

	if len(out) == 0 {
		return malformed[leaguestanding.Standing]("no standings row had position, team and points")
	}
	return ok(out)
}

func bestStandingsTable(tables *goquery.Selection, rules StandingsRules) (*goquery.Selection, standingColumns) {
	var (
		best      = tables.First()
		bestCols  = standingColumns{position: 0, team: 1, points: -1, goalsFor: -1, goalsAgainst: -1, goalDifference: -1}
		bestScore = -1
	)
	tables.Each(func(_ int, table *goquery.Selection) {
		headers := headerTexts(table)
		taken := make(map[int]bool)
		pick := func(keywords []string) int {
			idx := columnIndex(headers, keywords, taken)
			if idx >= 0 {
				taken[idx] = true
			}
			return idx
		}
		cols := standingColumns{
			position:       pick(rules.Position),
			team:           pick(rules.Team),
			points:         pick(rules.Points),
			goalDifference: pick(rules.GoalDifference),
			goalsFor:       pick(rules.GoalsFor),
			goalsAgainst:   pick(rules.GoalsAgainst),
		}
		score := 0
		for _, idx := range []int{cols.position, cols.team, cols.points, cols.goalsFor, cols.goalsAgainst, cols.goalDifference} {
			if idx >= 0 {
				score++
			}
		}
		if cols.team < 0 || cols.points < 0 {
			// positional fallback
			cols.position, cols.team, cols.points = 0, 1, -1
		}
		if score > bestScore {
			best, bestCols, bestScore = table, cols, score
		}
	})
	return best, bestCols
}

func standingFromCells(cells []string, cols standingColumns) (leaguestanding.Standing, bool) {
	if len(cells) < 3 {
		return leaguestanding.Standing{}, false
	}
	pointsIdx := cols.points
	if pointsIdx < 0 {
		pointsIdx = len(cells) - 1
	}

	position, okPos := ParseInt(cellAt(cells, cols.position))
	team := cellAt(cells, cols.team)
	points, okPoints := ParseNumber(cellAt(cells, pointsIdx))
	if !okPos || !okPoints || !plausibleName(team) {
		return leaguestanding.Standing{}, false
	}

	entry := leaguestanding.Standing{Position: position, TeamName: team, Points: points}
	gf, okGF := ParseInt(cellAt(cells, cols.goalsFor))
	ga, okGA := ParseInt(cellAt(cells, cols.goalsAgainst))
	if okGF {
		entry.GoalsFor = gf
	}
	if okGA {
		entry.GoalsAgainst = ga
	}
	if gd, okGD := ParseInt(cellAt(cells, cols.goalDifference)); okGD {
		entry.GoalDifference = gd
	} else if okGF && okGA {
		entry.GoalDifference = gf - ga
	}
	return entry, true
}
