package postgres

import (
	"time"
)

type playerTableModel struct {
	ID               int64      `db:"id"`
	PublicID         string     `db:"public_id"`
	LeagueID         string     `db:"league_public_id"`
	Name             string     `db:"name"`
	RealClub         string     `db:"real_club"`
	Role             string     `db:"role"`
	AuctionValue     float64    `db:"auction_value"`
	PerformanceIndex float64    `db:"performance_index"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
	DeletedAt        *time.Time `db:"deleted_at"`
}

type valuationInsertModel struct {
	PlayerID   string    `db:"player_public_id"`
	Value      float64   `db:"value"`
	Source     string    `db:"source"`
	RecordedAt time.Time `db:"recorded_at"`
}

type valuationTableModel struct {
	ID         int64     `db:"id"`
	PlayerID   string    `db:"player_public_id"`
	Value      float64   `db:"value"`
	Source     string    `db:"source"`
	RecordedAt time.Time `db:"recorded_at"`
}

type standingTableModel struct {
	ID             int64     `db:"id"`
	LeagueID       string    `db:"league_public_id"`
	Position       int       `db:"position"`
	TeamName       string    `db:"team_name"`
	Points         float64   `db:"points"`
	GoalsFor       int       `db:"goals_for"`
	GoalsAgainst   int       `db:"goals_against"`
	GoalDifference int       `db:"goal_difference"`
	ScrapedAt      time.Time `db:"scraped_at"`
}

type standingInsertModel struct {
	LeagueID       string    `db:"league_public_id"`
	Position       int       `db:"position"`
	TeamName       string    `db:"team_name"`
	Points         float64   `db:"points"`
	GoalsFor       int       `db:"goals_for"`
	GoalsAgainst   int       `db:"goals_against"`
	GoalDifference int       `db:"goal_difference"`
	ScrapedAt      time.Time `db:"scraped_at"`
}
