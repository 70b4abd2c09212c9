package extraction

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/lineup"
)

// Lineups reads formations from lineup containers. When containers nest,
// the innermost valid one wins.
func Lineups(doc *goquery.Document, rules LineupRules) Result[lineup.Lineup] {
	containerSel := strings.Join(rules.ContainerSelectors, ", ")
	if containerSel == "" {
		return empty[lineup.Lineup]("no lineup selectors configured")
	}
	containers := doc.Find(containerSel)
	if containers.Length() == 0 {
		return empty[lineup.Lineup]("page has no lineup containers")
	}

	formationRe, err := regexp.Compile(rules.FormationPattern)
	if err != nil {
		formationRe = regexp.MustCompile(DefaultRules().Lineups.FormationPattern)
	}

	parsed := make(map[any]lineup.Lineup)
	containers.Each(func(_ int, c *goquery.Selection) {
		if item, ok := lineupFromContainer(c, rules, formationRe); ok {
			parsed[c.Get(0)] = item
		}
	})

	var out []lineup.Lineup
	containers.Each(func(_ int, c *goquery.Selection) {
		item, ok := parsed[c.Get(0)]
		if !ok {
			return
		}
		hasInner := false
		c.Find(containerSel).EachWithBreak(func(_ int, inner *goquery.Selection) bool {
			_, hasInner = parsed[inner.Get(0)]
			return !hasInner
		})
		if !hasInner {
			out = append(out, item)
		}
	})

	if len(out) == 0 {
		return malformed[lineup.Lineup]("no lineup container had a team name and starters")
	}
	return ok(out)
}

func lineupFromContainer(c *goquery.Selection, rules LineupRules, formationRe *regexp.Regexp) (lineup.Lineup, bool) {
	item := lineup.Lineup{
		TeamName:  lineupTeamName(c, rules),
		Formation: formationRe.FindString(SpacedText(c)),
		Starters:  []string{},
		Bench:     []string{},
	}
	if formation, ok := c.Attr("data-formation"); ok && formationRe.MatchString(formation) {
		item.Formation = formationRe.FindString(formation)
	}
	if item.TeamName == "" {
		return lineup.Lineup{}, false
	}

	benchSection := firstMatch(c, rules.BenchSelectors)
	if benchSection != nil {
		item.Bench = playerNames(benchSection, rules.PlayerSelector, item.Formation)
	}
	if starterSection := firstMatch(c, rules.StarterSelectors); starterSection != nil {
		item.Starters = playerNames(starterSection, rules.PlayerSelector, item.Formation)
	} else {
		starters := c.Clone()
		for _, sel := range rules.BenchSelectors {
			starters.Find(sel).Remove()
		}
		item.Starters = playerNames(starters, rules.PlayerSelector, item.Formation)
	}

	if len(item.Starters) == 0 {
		return lineup.Lineup{}, false
	}
	return item, true
}

func lineupTeamName(c *goquery.Selection, rules LineupRules) string {
	for _, sel := range rules.TeamNameSelectors {
		var name string
		c.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := CleanText(s.Text())
			if plausibleName(text) {
				name = text
				return false
			}
			return true
		})
		if name != "" {
			return name
		}
	}
	if team, ok := c.Attr("data-team"); ok && plausibleName(team) {
		return CleanText(team)
	}
	return ""
}

func firstMatch(c *goquery.Selection, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		if found := c.Find(sel).First(); found.Length() > 0 {
			return found
		}
	}
	return nil
}

func playerNames(section *goquery.Selection, playerSel, formation string) []string {
	out := []string{}
	if playerSel == "" {
		return out
	}
	section.Find(playerSel).
		FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.Find(playerSel).Length() == 0
		}).
		Each(func(_ int, s *goquery.Selection) {
			name := CleanText(s.Text())
			if name == formation || !plausibleName(name) {
				return
			}
			out = append(out, name)
		})
	return out
}
