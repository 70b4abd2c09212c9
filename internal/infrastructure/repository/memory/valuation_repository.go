package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/valuation"
)

type ValuationRepository struct {
	mu       sync.RWMutex
	byPlayer map[string][]valuation.Record
}

func NewValuationRepository() *ValuationRepository {
	return &ValuationRepository{byPlayer: make(map[string][]valuation.Record)}
}

func (r *ValuationRepository) Append(_ context.Context, item valuation.Record) error {
	if err := item.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byPlayer[item.PlayerID] = append(r.byPlayer[item.PlayerID], item)
	return nil
}

func (r *ValuationRepository) ListByPlayer(_ context.Context, playerID string) ([]valuation.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.byPlayer[playerID]
	out := make([]valuation.Record, 0, len(items))
	out = append(out, items...)
	return out, nil
}
