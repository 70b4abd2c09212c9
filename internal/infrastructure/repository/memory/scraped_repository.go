package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/scraped"
	idgen "github.com/riskibarqy/fantasy-league-scraper/internal/platform/id"
)

type ScrapedRepository struct {
	mu      sync.RWMutex
	ids     idgen.Generator
	teams   map[string]scraped.Team
	players map[string]scraped.Player
}

func NewScrapedRepository(ids idgen.Generator) *ScrapedRepository {
	return &ScrapedRepository{
		ids:     ids,
		teams:   make(map[string]scraped.Team),
		players: make(map[string]scraped.Player),
	}
}

func teamKey(leagueID, name string) string {
	return leagueID + "\x00" + name
}

func playerKey(leagueID, teamID, name string) string {
	return leagueID + "\x00" + teamID + "\x00" + name
}

func (r *ScrapedRepository) FindTeam(_ context.Context, leagueID, name string) (scraped.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.teams[teamKey(leagueID, name)]
	return item, ok, nil
}

func (r *ScrapedRepository) CreateTeam(_ context.Context, item scraped.Team) (scraped.Team, error) {
	if err := item.Validate(); err != nil {
		return scraped.Team{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := teamKey(item.LeagueID, item.Name)
	if existing, ok := r.teams[key]; ok {
		existing.SourceURL = item.SourceURL
		existing.LastSeenAt = item.LastSeenAt
		r.teams[key] = existing
		return existing, nil
	}

	id, err := r.ids.NewID()
	if err != nil {
		return scraped.Team{}, fmt.Errorf("generate scraped team id: %w", err)
	}
	item.ID = id
	item.CreatedAt = time.Now().UTC()
	r.teams[key] = item
	return item, nil
}

func (r *ScrapedRepository) TouchTeam(_ context.Context, teamID string, seenAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, item := range r.teams {
		if item.ID != teamID {
			continue
		}
		item.LastSeenAt = seenAt
		r.teams[key] = item
		return nil
	}
	return fmt.Errorf("scraped team %s not found", teamID)
}

func (r *ScrapedRepository) FindPlayer(_ context.Context, leagueID, teamID, name string) (scraped.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.players[playerKey(leagueID, teamID, name)]
	return item, ok, nil
}

func (r *ScrapedRepository) CreatePlayer(_ context.Context, item scraped.Player) (scraped.Player, error) {
	if err := item.Validate(); err != nil {
		return scraped.Player{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := playerKey(item.LeagueID, item.TeamID, item.Name)
	if existing, ok := r.players[key]; ok {
		item.ID = existing.ID
		item.CreatedAt = existing.CreatedAt
		r.players[key] = item
		return item, nil
	}

	id, err := r.ids.NewID()
	if err != nil {
		return scraped.Player{}, fmt.Errorf("generate scraped player id: %w", err)
	}
	item.ID = id
	item.CreatedAt = time.Now().UTC()
	r.players[key] = item
	return item, nil
}

func (r *ScrapedRepository) UpdatePlayer(_ context.Context, item scraped.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := playerKey(item.LeagueID, item.TeamID, item.Name)
	existing, ok := r.players[key]
	if !ok || existing.ID != item.ID {
		return fmt.Errorf("scraped player %s not found", item.ID)
	}
	item.CreatedAt = existing.CreatedAt
	r.players[key] = item
	return nil
}

func (r *ScrapedRepository) CountByLeague(_ context.Context, leagueID string) (int, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var teams, players int
	for _, item := range r.teams {
		if item.LeagueID == leagueID {
			teams++
		}
	}
	for _, item := range r.players {
		if item.LeagueID == leagueID {
			players++
		}
	}
	return teams, players, nil
}
