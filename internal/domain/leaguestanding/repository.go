package leaguestanding

import "context"

// Repository stores the standings snapshot. Every write replaces the previous snapshot.
type Repository interface {
	ReplaceSnapshot(ctx context.Context, leagueID string, rows []Standing) error
	ListByLeague(ctx context.Context, leagueID string) ([]Standing, error)
}
