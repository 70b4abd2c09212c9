package postgres

import (
	"database/sql"
	"time"
)

type scrapedTeamTableModel struct {
	ID         int64        `db:"id"`
	PublicID   string       `db:"public_id"`
	LeagueID   string       `db:"league_public_id"`
	Name       string       `db:"name"`
	SourceURL  string       `db:"source_url"`
	LastSeenAt sql.NullTime `db:"last_seen_at"`
	CreatedAt  time.Time    `db:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at"`
}

type scrapedTeamInsertModel struct {
	PublicID   string    `db:"public_id"`
	LeagueID   string    `db:"league_public_id"`
	Name       string    `db:"name"`
	SourceURL  string    `db:"source_url"`
	LastSeenAt time.Time `db:"last_seen_at"`
}

type scrapedPlayerTableModel struct {
	ID               int64        `db:"id"`
	PublicID         string       `db:"public_id"`
	LeagueID         string       `db:"league_public_id"`
	TeamID           string       `db:"team_public_id"`
	Name             string       `db:"name"`
	Role             string       `db:"role"`
	RealClub         string       `db:"real_club"`
	AuctionValue     float64      `db:"auction_value"`
	PerformanceIndex float64      `db:"performance_index"`
	MarketForm       string       `db:"market_form"`
	LastSeenAt       sql.NullTime `db:"last_seen_at"`
	CreatedAt        time.Time    `db:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at"`
}

type scrapedPlayerInsertModel struct {
	PublicID         string    `db:"public_id"`
	LeagueID         string    `db:"league_public_id"`
	TeamID           string    `db:"team_public_id"`
	Name             string    `db:"name"`
	Role             string    `db:"role"`
	RealClub         string    `db:"real_club"`
	AuctionValue     float64   `db:"auction_value"`
	PerformanceIndex float64   `db:"performance_index"`
	MarketForm       string    `db:"market_form"`
	LastSeenAt       time.Time `db:"last_seen_at"`
}

type insertReturningModel struct {
	PublicID  string    `db:"public_id"`
	CreatedAt time.Time `db:"created_at"`
}
