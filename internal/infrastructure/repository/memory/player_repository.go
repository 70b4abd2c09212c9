package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/player"
)

type PlayerRepository struct {
	mu      sync.RWMutex
	players map[string]player.Player
	order   []string
}

func NewPlayerRepository(players []player.Player) *PlayerRepository {
	repo := &PlayerRepository{players: make(map[string]player.Player, len(players))}
	for _, p := range players {
		repo.players[p.ID] = p
		repo.order = append(repo.order, p.ID)
	}
	return repo
}

func (r *PlayerRepository) FindByLeagueNameClub(_ context.Context, leagueID, name, realClub string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name = strings.ToLower(strings.TrimSpace(name))
	realClub = strings.ToLower(strings.TrimSpace(realClub))
	for _, id := range r.order {
		p := r.players[id]
		if p.LeagueID != leagueID || strings.ToLower(p.Name) != name {
			continue
		}
		if realClub != "" && strings.ToLower(p.RealClub) != realClub {
			continue
		}
		return p, true, nil
	}
	return player.Player{}, false, nil
}

func (r *PlayerRepository) UpdateValuation(_ context.Context, playerID string, auctionValue, performanceIndex float64, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return fmt.Errorf("player %s not found", playerID)
	}
	p.AuctionValue = auctionValue
	p.PerformanceIndex = performanceIndex
	p.UpdatedAt = updatedAt
	r.players[playerID] = p
	return nil
}

func (r *PlayerRepository) Get(playerID string) (player.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[playerID]
	return p, ok
}
