package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/leaguestanding"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/player"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/scraped"
	"github.com/riskibarqy/fantasy-league-scraper/internal/infrastructure/repository/memory"
	playermock "github.com/riskibarqy/fantasy-league-scraper/internal/mocks/domain/player"
	"github.com/riskibarqy/fantasy-league-scraper/internal/platform/id"
	"github.com/riskibarqy/fantasy-league-scraper/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testLeagueID = "lega-serie-a-2026"

func sampleRosters() []scraped.Roster {
	return []scraped.Roster{
		{
			Name: "Atletico Ma Non Troppo",
			Players: []scraped.PlayerRow{
				{Name: "Maignan", Role: "P", RealClub: "Milan", AuctionValue: 18, PerformanceIndex: 16},
				{Name: "Bastoni", Role: "D", RealClub: "Inter", AuctionValue: 22, PerformanceIndex: 19},
			},
		},
		{
			Name: "Real Mandrillo",
			Players: []scraped.PlayerRow{
				{Name: "Lautaro", Role: "A", RealClub: "Inter", AuctionValue: 41, PerformanceIndex: 38},
			},
		},
	}
}

type syncFixture struct {
	scraped    *memory.ScrapedRepository
	players    *memory.PlayerRepository
	valuations *memory.ValuationRepository
	standings  *memory.LeagueStandingRepository
	service    *SyncService
	clock      time.Time
}

func newSyncFixture(primary []player.Player) *syncFixture {
	f := &syncFixture{
		scraped:    memory.NewScrapedRepository(id.NewRandomGenerator()),
		players:    memory.NewPlayerRepository(primary),
		valuations: memory.NewValuationRepository(),
		standings:  memory.NewLeagueStandingRepository(),
		clock:      time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
	}
	f.service = NewSyncService(f.scraped, f.players, f.valuations, f.standings, SyncConfig{Workers: 2}, logging.NewNop())
	f.service.now = func() time.Time { return f.clock }
	return f
}

func TestSyncService_PersistIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(nil)
	ctx := context.Background()

	first, err := f.service.Persist(ctx, testLeagueID, sampleRosters())
	require.NoError(t, err)
	assert.Equal(t, 2, first.TeamsSaved)
	assert.Equal(t, 3, first.PlayersSaved)

	teams, players, err := f.scraped.CountByLeague(ctx, testLeagueID)
	require.NoError(t, err)

	f.clock = f.clock.Add(time.Hour)
	second, err := f.service.Persist(ctx, testLeagueID, sampleRosters())
	require.NoError(t, err)
	assert.Equal(t, first.TeamsSaved, second.TeamsSaved)
	assert.Equal(t, first.PlayersSaved, second.PlayersSaved)

	teamsAfter, playersAfter, err := f.scraped.CountByLeague(ctx, testLeagueID)
	require.NoError(t, err)
	assert.Equal(t, teams, teamsAfter)
	assert.Equal(t, players, playersAfter)

	team, found, err := f.scraped.FindTeam(ctx, testLeagueID, "Real Mandrillo")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, team.LastSeenAt.Equal(f.clock))
}

func TestSyncService_PersistOverwritesMutableFields(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(nil)
	ctx := context.Background()
	_, err := f.service.Persist(ctx, testLeagueID, sampleRosters())
	require.NoError(t, err)

	changed := sampleRosters()
	changed[1].Players[0].AuctionValue = 44
	changed[1].Players[0].MarketForm = "7.5"
	_, err = f.service.Persist(ctx, testLeagueID, changed)
	require.NoError(t, err)

	team, _, err := f.scraped.FindTeam(ctx, testLeagueID, "Real Mandrillo")
	require.NoError(t, err)
	stored, found, err := f.scraped.FindPlayer(ctx, testLeagueID, team.ID, "Lautaro")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 44.0, stored.AuctionValue)
	assert.Equal(t, "7.5", stored.MarketForm)
}

func TestSyncService_PersistRequiresLeague(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(nil)
	_, err := f.service.Persist(context.Background(), " ", sampleRosters())
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestSyncService_PersistSkipsInvalidRecords(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(nil)
	rosters := sampleRosters()
	rosters = append(rosters, scraped.Roster{Name: ""})
	rosters[0].Players = append(rosters[0].Players, scraped.PlayerRow{Name: ""})

	report, err := f.service.Persist(context.Background(), testLeagueID, rosters)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TeamsSaved)
	assert.Equal(t, 3, report.PlayersSaved)
	assert.Equal(t, 2, report.Failed)
	assert.Len(t, report.Errors, 2)
}

func TestSyncService_ValuationHistoryOnlyOnChange(t *testing.T) {
	t.Parallel()

	f := newSyncFixture([]player.Player{
		{ID: "p-lautaro", LeagueID: testLeagueID, Name: "Lautaro", RealClub: "Inter", AuctionValue: 41},
		{ID: "p-bastoni", LeagueID: testLeagueID, Name: "Bastoni", RealClub: "Inter", AuctionValue: 20},
	})
	ctx := context.Background()
	rows := []scraped.PlayerRow{
		{Name: "Lautaro", RealClub: "Inter", AuctionValue: 41, PerformanceIndex: 39},
		{Name: "Bastoni", RealClub: "Inter", AuctionValue: 22, PerformanceIndex: 19},
		{Name: "Sconosciuto", RealClub: "Lecce", AuctionValue: 1, PerformanceIndex: 1},
	}

	report, err := f.service.SyncValuationToPrimary(ctx, testLeagueID, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, 1, report.HistoryAppended)
	assert.Equal(t, 1, report.NotFound)
	assert.Zero(t, report.Failed)

	lautaro, _ := f.players.Get("p-lautaro")
	assert.Equal(t, 39.0, lautaro.PerformanceIndex)
	history, err := f.valuations.ListByPlayer(ctx, "p-lautaro")
	require.NoError(t, err)
	assert.Empty(t, history)

	history, err = f.valuations.ListByPlayer(ctx, "p-bastoni")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 22.0, history[0].Value)

	// unchanged re-scrape appends nothing
	again, err := f.service.SyncValuationToPrimary(ctx, testLeagueID, rows)
	require.NoError(t, err)
	assert.Zero(t, again.HistoryAppended)
	history, err = f.valuations.ListByPlayer(ctx, "p-bastoni")
	require.NoError(t, err)
	assert.Len(t, history, 1)

	// one record per changed sync
	rows[1].AuctionValue = 25
	changed, err := f.service.SyncValuationToPrimary(ctx, testLeagueID, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, changed.HistoryAppended)
	history, err = f.valuations.ListByPlayer(ctx, "p-bastoni")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestSyncService_ValuationRowsForSamePlayerAppendOnce(t *testing.T) {
	t.Parallel()

	f := newSyncFixture([]player.Player{
		{ID: "p-barella", LeagueID: testLeagueID, Name: "Barella", RealClub: "Inter", AuctionValue: 20},
	})
	ctx := context.Background()
	rows := []scraped.PlayerRow{
		{Name: "Barella", RealClub: "Inter", AuctionValue: 25, PerformanceIndex: 21},
		{Name: "barella ", AuctionValue: 25, PerformanceIndex: 21},
		{Name: "Barella", RealClub: "Inter", AuctionValue: 25, PerformanceIndex: 21},
	}

	for range 20 {
		report, err := f.service.SyncValuationToPrimary(ctx, testLeagueID, rows)
		require.NoError(t, err)
		assert.Equal(t, 3, report.Updated)
	}

	history, err := f.valuations.ListByPlayer(ctx, "p-barella")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 25.0, history[0].Value)
}

func TestSyncService_ValuationRoundsToStoredScale(t *testing.T) {
	t.Parallel()

	f := newSyncFixture([]player.Player{
		{ID: "p-thuram", LeagueID: testLeagueID, Name: "Thuram", RealClub: "Inter", AuctionValue: 30.25},
	})
	ctx := context.Background()
	rows := []scraped.PlayerRow{{Name: "Thuram", RealClub: "Inter", AuctionValue: 30.2549, PerformanceIndex: 28.123}}

	report, err := f.service.SyncValuationToPrimary(ctx, testLeagueID, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Zero(t, report.HistoryAppended)

	thuram, _ := f.players.Get("p-thuram")
	assert.Equal(t, 30.25, thuram.AuctionValue)
	assert.Equal(t, 28.12, thuram.PerformanceIndex)

	rows[0].AuctionValue = 30.256
	report, err = f.service.SyncValuationToPrimary(ctx, testLeagueID, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, report.HistoryAppended)
	history, err := f.valuations.ListByPlayer(ctx, "p-thuram")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 30.26, history[0].Value)
}

func TestSyncService_ValuationErrorsDoNotAbortBatch(t *testing.T) {
	t.Parallel()

	players := playermock.NewRepository(t)
	valuations := memory.NewValuationRepository()
	service := NewSyncService(nil, players, valuations, nil, SyncConfig{Workers: 3}, logging.NewNop())

	players.
		On("FindByLeagueNameClub", mock.Anything, testLeagueID, "Broken", "Roma").
		Return(player.Player{}, false, errors.New("connection reset")).
		Once()
	players.
		On("FindByLeagueNameClub", mock.Anything, testLeagueID, "Dybala", "Roma").
		Return(player.Player{ID: "p-dybala", LeagueID: testLeagueID, Name: "Dybala", AuctionValue: 15}, true, nil).
		Once()
	players.
		On("UpdateValuation", mock.Anything, "p-dybala", 17.0, 14.0, mock.AnythingOfType("time.Time")).
		Return(nil).
		Once()

	report, err := service.SyncValuationToPrimary(context.Background(), testLeagueID, []scraped.PlayerRow{
		{Name: "Broken", RealClub: "Roma", AuctionValue: 3},
		{Name: "Dybala", RealClub: "Roma", AuctionValue: 17, PerformanceIndex: 14},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.HistoryAppended)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "connection reset")
}

func TestSyncService_ReplaceStandings(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(nil)
	ctx := context.Background()

	_, err := f.service.ReplaceStandings(ctx, testLeagueID, []leaguestanding.Standing{
		{Position: 1, TeamName: "Real Mandrillo", Points: 30},
		{Position: 2, TeamName: "Atletico Ma Non Troppo", Points: 27},
	})
	require.NoError(t, err)

	saved, err := f.service.ReplaceStandings(ctx, testLeagueID, []leaguestanding.Standing{
		{Position: 1, TeamName: "Atletico Ma Non Troppo", Points: 33},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, saved)

	rows, err := f.standings.ListByLeague(ctx, testLeagueID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Atletico Ma Non Troppo", rows[0].TeamName)
	assert.True(t, rows[0].ScrapedAt.Equal(f.clock))
}

func TestSyncService_MissingDependencies(t *testing.T) {
	t.Parallel()

	service := NewSyncService(nil, nil, nil, nil, SyncConfig{}, logging.NewNop())
	_, err := service.Persist(context.Background(), testLeagueID, sampleRosters())
	assert.True(t, errors.Is(err, ErrDependencyUnavailable))
	_, err = service.SyncValuationToPrimary(context.Background(), testLeagueID, nil)
	assert.True(t, errors.Is(err, ErrDependencyUnavailable))
	_, err = service.ReplaceStandings(context.Background(), testLeagueID, nil)
	assert.True(t, errors.Is(err, ErrDependencyUnavailable))
}
