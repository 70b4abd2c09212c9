package leaguestanding

import "time"

// Standing is one row of the scraped league table.
type Standing struct {
	Position       int       `json:"position"`
	TeamName       string    `json:"teamName"`
	Points         float64   `json:"points"`
	GoalsFor       int       `json:"goalsFor"`
	GoalsAgainst   int       `json:"goalsAgainst"`
	GoalDifference int       `json:"goalDifference"`
	ScrapedAt      time.Time `json:"-"`
}
