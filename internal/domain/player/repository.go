package player

import (
	"context"
	"time"
)

// Repository describes the primary player table needs of the valuation sync.
type Repository interface {
	FindByLeagueNameClub(ctx context.Context, leagueID, name, realClub string) (Player, bool, error)
	UpdateValuation(ctx context.Context, playerID string, auctionValue, performanceIndex float64, updatedAt time.Time) error
}
