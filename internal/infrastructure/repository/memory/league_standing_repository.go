package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/leaguestanding"
)

type LeagueStandingRepository struct {
	mu       sync.RWMutex
	byLeague map[string][]leaguestanding.Standing
}

func NewLeagueStandingRepository() *LeagueStandingRepository {
	return &LeagueStandingRepository{byLeague: make(map[string][]leaguestanding.Standing)}
}

func (r *LeagueStandingRepository) ReplaceSnapshot(_ context.Context, leagueID string, rows []leaguestanding.Standing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make([]leaguestanding.Standing, 0, len(rows))
	snapshot = append(snapshot, rows...)
	r.byLeague[leagueID] = snapshot
	return nil
}

func (r *LeagueStandingRepository) ListByLeague(_ context.Context, leagueID string) ([]leaguestanding.Standing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.byLeague[leagueID]
	out := make([]leaguestanding.Standing, 0, len(items))
	out = append(out, items...)
	return out, nil
}
