package scraped

import (
	"fmt"
	"time"
)

// PlayerRow is a player as read from a roster table, before it is stored.
type PlayerRow struct {
	Name             string  `json:"name"`
	Role             string  `json:"role"`
	RealClub         string  `json:"realClub,omitempty"`
	AuctionValue     float64 `json:"auctionValue"`
	PerformanceIndex float64 `json:"performanceIndex"`
	MarketForm       string  `json:"marketForm,omitempty"`
}

// Roster is one fantasy team and the players listed under it.
type Roster struct {
	Name      string      `json:"name"`
	SourceURL string      `json:"sourceUrl,omitempty"`
	Players   []PlayerRow `json:"players"`
}

// Team mirrors a fantasy team of the source site. (LeagueID, Name) is unique.
type Team struct {
	ID         string
	LeagueID   string
	Name       string
	SourceURL  string
	LastSeenAt time.Time
	CreatedAt  time.Time
}

func (t Team) Validate() error {
	if t.LeagueID == "" {
		return fmt.Errorf("scraped team league id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("scraped team name is required")
	}

	return nil
}

// Player mirrors a rostered player. (LeagueID, TeamID, Name) is unique.
type Player struct {
	ID               string
	LeagueID         string
	TeamID           string
	Name             string
	Role             string
	RealClub         string
	AuctionValue     float64
	PerformanceIndex float64
	MarketForm       string
	LastSeenAt       time.Time
	CreatedAt        time.Time
}

func (p Player) Validate() error {
	if p.LeagueID == "" {
		return fmt.Errorf("scraped player league id is required")
	}
	if p.TeamID == "" {
		return fmt.Errorf("scraped player team id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("scraped player name is required")
	}

	return nil
}

// ApplyRow overwrites the mutable fields of p with the scraped row.
func (p *Player) ApplyRow(row PlayerRow, seenAt time.Time) {
	p.Role = row.Role
	p.RealClub = row.RealClub
	p.AuctionValue = row.AuctionValue
	p.PerformanceIndex = row.PerformanceIndex
	p.MarketForm = row.MarketForm
	p.LastSeenAt = seenAt
}
