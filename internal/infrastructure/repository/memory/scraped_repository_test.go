package memory

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/scraped"
	idgen "github.com/riskibarqy/fantasy-league-scraper/internal/platform/id"
)

func TestScrapedRepositoryCreateTeamIsKeyedByLeagueAndName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewScrapedRepository(idgen.NewRandomGenerator())

	first, err := repo.CreateTeam(ctx, scraped.Team{LeagueID: "l1", Name: "Dream Team", LastSeenAt: time.Unix(10, 0)})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	second, err := repo.CreateTeam(ctx, scraped.Team{LeagueID: "l1", Name: "Dream Team", LastSeenAt: time.Unix(20, 0)})
	if err != nil {
		t.Fatalf("create team again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same id for same (league, name), got %s and %s", first.ID, second.ID)
	}

	if _, err := repo.CreateTeam(ctx, scraped.Team{LeagueID: "l2", Name: "Dream Team"}); err != nil {
		t.Fatalf("create team other league: %v", err)
	}

	teams, players, err := repo.CountByLeague(ctx, "l1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if teams != 1 || players != 0 {
		t.Fatalf("expected 1 team 0 players, got %d/%d", teams, players)
	}
}

func TestScrapedRepositoryUpdatePlayerRequiresExisting(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewScrapedRepository(idgen.NewRandomGenerator())

	err := repo.UpdatePlayer(ctx, scraped.Player{ID: "missing", LeagueID: "l1", TeamID: "t1", Name: "X"})
	if err == nil {
		t.Fatalf("expected error updating unknown player")
	}

	created, err := repo.CreatePlayer(ctx, scraped.Player{LeagueID: "l1", TeamID: "t1", Name: "X", AuctionValue: 5})
	if err != nil {
		t.Fatalf("create player: %v", err)
	}
	created.AuctionValue = 9
	if err := repo.UpdatePlayer(ctx, created); err != nil {
		t.Fatalf("update player: %v", err)
	}
	got, ok, err := repo.FindPlayer(ctx, "l1", "t1", "X")
	if err != nil || !ok {
		t.Fatalf("find player: ok=%t err=%v", ok, err)
	}
	if got.AuctionValue != 9 {
		t.Fatalf("expected auction value 9, got %v", got.AuctionValue)
	}
}
