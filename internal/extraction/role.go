package extraction

import (
	"strings"

	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/player"
)

type roleKeywords struct {
	role     player.Role
	exact    []string
	contains []string
}

// Checked in order, first match wins.
var classicRoles = []roleKeywords{
	{role: player.RoleGoalkeeper, exact: []string{"p", "por"}, contains: []string{"portier", "goalkeeper", "gk"}},
	{role: player.RoleDefender, exact: []string{"d", "def"}, contains: []string{"difens", "defender"}},
	{role: player.RoleMidfielder, exact: []string{"c", "cen", "mid"}, contains: []string{"centrocamp", "midfielder"}},
	{role: player.RoleForward, exact: []string{"a", "att"}, contains: []string{"attacc", "forward", "striker"}},
}

// NormalizeRole applies the role policy of the league type. Extended leagues
// keep the raw label uppercased; classic leagues map it onto P/D/C/A.
func NormalizeRole(raw string, leagueType league.Type) string {
	if leagueType.IsExtended() {
		return strings.ToUpper(strings.TrimSpace(raw))
	}

	label := Normalize(raw)
	for _, candidate := range classicRoles {
		for _, kw := range candidate.exact {
			if label == kw {
				return string(candidate.role)
			}
		}
	}
	for _, candidate := range classicRoles {
		for _, kw := range candidate.contains {
			if strings.Contains(label, kw) {
				return string(candidate.role)
			}
		}
	}
	return string(player.RoleDefault)
}
