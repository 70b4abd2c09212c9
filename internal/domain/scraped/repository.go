package scraped

import (
	"context"
	"time"
)

// Repository describes the scraped mirror tables.
type Repository interface {
	FindTeam(ctx context.Context, leagueID, name string) (Team, bool, error)
	CreateTeam(ctx context.Context, item Team) (Team, error)
	TouchTeam(ctx context.Context, teamID string, seenAt time.Time) error
	FindPlayer(ctx context.Context, leagueID, teamID, name string) (Player, bool, error)
	CreatePlayer(ctx context.Context, item Player) (Player, error)
	UpdatePlayer(ctx context.Context, item Player) error
	CountByLeague(ctx context.Context, leagueID string) (teams int, players int, err error)
}
