package player

import (
	"fmt"
	"time"
)

// Role is the canonical single-letter role of the classic ruleset.
type Role string

const (
	RoleGoalkeeper Role = "P"
	RoleDefender   Role = "D"
	RoleMidfielder Role = "C"
	RoleForward    Role = "A"
)

// RoleDefault is assigned when a classic role label matches no keyword.
const RoleDefault = RoleMidfielder

// Player is a record of the primary domain player table whose valuation
// fields are refreshed from scraped data.
type Player struct {
	ID               string
	LeagueID         string
	Name             string
	RealClub         string
	Role             string
	AuctionValue     float64
	PerformanceIndex float64
	UpdatedAt        time.Time
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.LeagueID == "" {
		return fmt.Errorf("player league id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}

	return nil
}
