package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/leaguestanding"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/player"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/scraped"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/valuation"
	"github.com/riskibarqy/fantasy-league-scraper/internal/platform/logging"
)

const defaultSyncWorkers = 4

type SyncConfig struct {
	Workers int
}

// SyncReport counts the rows written by Persist. Per-record failures are
// listed in Errors and never abort the batch.
type SyncReport struct {
	TeamsSaved   int      `json:"teamsSaved"`
	PlayersSaved int      `json:"playersSaved"`
	Failed       int      `json:"failed"`
	Errors       []string `json:"errors,omitempty"`
}

type ValuationReport struct {
	Updated         int      `json:"updated"`
	HistoryAppended int      `json:"historyAppended"`
	NotFound        int      `json:"notFound"`
	Failed          int      `json:"failed"`
	Errors          []string `json:"errors,omitempty"`
}

type SyncService struct {
	scrapedRepo   scraped.Repository
	playerRepo    player.Repository
	valuationRepo valuation.Repository
	standingRepo  leaguestanding.Repository
	cfg           SyncConfig
	logger        *logging.Logger
	now           func() time.Time
}

func NewSyncService(
	scrapedRepo scraped.Repository,
	playerRepo player.Repository,
	valuationRepo valuation.Repository,
	standingRepo leaguestanding.Repository,
	cfg SyncConfig,
	logger *logging.Logger,
) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultSyncWorkers
	}
	return &SyncService{
		scrapedRepo:   scrapedRepo,
		playerRepo:    playerRepo,
		valuationRepo: valuationRepo,
		standingRepo:  standingRepo,
		cfg:           cfg,
		logger:        logger.Named("sync"),
		now:           time.Now,
	}
}

// Persist upserts the scraped teams and their players. Running it twice with
// the same input leaves the row set unchanged; only last-seen timestamps move.
func (s *SyncService) Persist(ctx context.Context, leagueID string, rosters []scraped.Roster) (SyncReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.Persist")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return SyncReport{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if s.scrapedRepo == nil {
		return SyncReport{}, fmt.Errorf("%w: scraped repository is not configured", ErrDependencyUnavailable)
	}

	seenAt := s.now().UTC()
	report := SyncReport{}
	for _, roster := range rosters {
		teamID, err := s.upsertTeam(ctx, leagueID, roster, seenAt)
		if err != nil {
			report.fail(fmt.Errorf("team %q: %w", roster.Name, err))
			continue
		}
		report.TeamsSaved++

		for _, row := range roster.Players {
			if err := s.upsertPlayer(ctx, leagueID, teamID, row, seenAt); err != nil {
				report.fail(fmt.Errorf("player %q of %q: %w", row.Name, roster.Name, err))
				continue
			}
			report.PlayersSaved++
		}
	}

	s.logger.InfoContext(ctx, "scraped rosters persisted",
		"league_id", leagueID,
		"teams_saved", report.TeamsSaved,
		"players_saved", report.PlayersSaved,
		"failed", report.Failed,
	)
	return report, nil
}

func (s *SyncService) upsertTeam(ctx context.Context, leagueID string, roster scraped.Roster, seenAt time.Time) (string, error) {
	existing, found, err := s.scrapedRepo.FindTeam(ctx, leagueID, roster.Name)
	if err != nil {
		return "", fmt.Errorf("find team: %w", err)
	}
	if found {
		if err := s.scrapedRepo.TouchTeam(ctx, existing.ID, seenAt); err != nil {
			return "", fmt.Errorf("touch team: %w", err)
		}
		return existing.ID, nil
	}

	team := scraped.Team{
		LeagueID:   leagueID,
		Name:       roster.Name,
		SourceURL:  roster.SourceURL,
		LastSeenAt: seenAt,
	}
	if err := team.Validate(); err != nil {
		return "", err
	}
	created, err := s.scrapedRepo.CreateTeam(ctx, team)
	if err != nil {
		return "", fmt.Errorf("create team: %w", err)
	}
	return created.ID, nil
}

func (s *SyncService) upsertPlayer(ctx context.Context, leagueID, teamID string, row scraped.PlayerRow, seenAt time.Time) error {
	existing, found, err := s.scrapedRepo.FindPlayer(ctx, leagueID, teamID, row.Name)
	if err != nil {
		return fmt.Errorf("find player: %w", err)
	}
	if found {
		existing.ApplyRow(row, seenAt)
		if err := s.scrapedRepo.UpdatePlayer(ctx, existing); err != nil {
			return fmt.Errorf("update player: %w", err)
		}
		return nil
	}

	item := scraped.Player{
		LeagueID: leagueID,
		TeamID:   teamID,
		Name:     row.Name,
	}
	item.ApplyRow(row, seenAt)
	if err := item.Validate(); err != nil {
		return err
	}
	if _, err := s.scrapedRepo.CreatePlayer(ctx, item); err != nil {
		return fmt.Errorf("create player: %w", err)
	}
	return nil
}

// SyncValuationToPrimary copies auction value and performance index onto the
// primary player records. A history record is appended only when the auction
// value actually changed. Each row is handled by exactly one pool worker.
func (s *SyncService) SyncValuationToPrimary(ctx context.Context, leagueID string, rows []scraped.PlayerRow) (ValuationReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncValuationToPrimary")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return ValuationReport{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if s.playerRepo == nil || s.valuationRepo == nil {
		return ValuationReport{}, fmt.Errorf("%w: valuation sync is not configured", ErrDependencyUnavailable)
	}
	if len(rows) == 0 {
		return ValuationReport{}, nil
	}

	// Rows that can resolve to the same primary player share a name, so they
	// go to one task and are applied in order against fresh reads.
	groups := groupRowsByName(rows)
	workerCount := s.cfg.Workers
	if workerCount > len(groups) {
		workerCount = len(groups)
	}
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return ValuationReport{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		updated  atomic.Int32
		appended atomic.Int32
		notFound atomic.Int32
		errMu    sync.Mutex
		errs     []string
	)
	recordedAt := s.now().UTC()

	var workers sync.WaitGroup
	for _, group := range groups {
		group := group
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			for _, row := range group {
				outcome, err := s.syncValuation(ctx, leagueID, row, recordedAt)
				if err != nil {
					errMu.Lock()
					errs = append(errs, fmt.Sprintf("player %q: %v", row.Name, err))
					errMu.Unlock()
				}
				switch outcome {
				case valuationNotFound:
					notFound.Add(1)
				case valuationAppended:
					updated.Add(1)
					appended.Add(1)
				case valuationUpdated:
					updated.Add(1)
				}
			}
		}); err != nil {
			workers.Done()
			return ValuationReport{}, fmt.Errorf("submit valuation task to worker pool: %w", err)
		}
	}
	workers.Wait()

	report := ValuationReport{
		Updated:         int(updated.Load()),
		HistoryAppended: int(appended.Load()),
		NotFound:        int(notFound.Load()),
		Failed:          len(errs),
		Errors:          errs,
	}
	s.logger.InfoContext(ctx, "valuation propagated",
		"league_id", leagueID,
		"workers", workerCount,
		"updated", report.Updated,
		"history_appended", report.HistoryAppended,
		"not_found", report.NotFound,
		"failed", report.Failed,
	)
	return report, nil
}

type valuationOutcome int

const (
	valuationFailed valuationOutcome = iota
	valuationNotFound
	valuationUpdated
	valuationAppended
)

func (s *SyncService) syncValuation(ctx context.Context, leagueID string, row scraped.PlayerRow, recordedAt time.Time) (valuationOutcome, error) {
	primary, found, err := s.playerRepo.FindByLeagueNameClub(ctx, leagueID, row.Name, row.RealClub)
	if err != nil {
		return valuationFailed, fmt.Errorf("find primary player: %w", err)
	}
	if !found {
		return valuationNotFound, nil
	}

	auctionValue := roundValuation(row.AuctionValue)
	performanceIndex := roundValuation(row.PerformanceIndex)
	changed := !sameValue(primary.AuctionValue, auctionValue)
	if err := s.playerRepo.UpdateValuation(ctx, primary.ID, auctionValue, performanceIndex, recordedAt); err != nil {
		return valuationFailed, fmt.Errorf("update primary player: %w", err)
	}
	if !changed {
		return valuationUpdated, nil
	}

	record := valuation.Record{
		PlayerID:   primary.ID,
		Value:      auctionValue,
		Source:     valuation.SourceScraper,
		RecordedAt: recordedAt,
	}
	if err := record.Validate(); err != nil {
		return valuationFailed, err
	}
	if err := s.valuationRepo.Append(ctx, record); err != nil {
		return valuationFailed, fmt.Errorf("append valuation history: %w", err)
	}
	return valuationAppended, nil
}

// ReplaceStandings swaps the stored standings snapshot for entries.
func (s *SyncService) ReplaceStandings(ctx context.Context, leagueID string, entries []leaguestanding.Standing) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.ReplaceStandings")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return 0, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if s.standingRepo == nil {
		return 0, fmt.Errorf("%w: standings repository is not configured", ErrDependencyUnavailable)
	}

	scrapedAt := s.now().UTC()
	rows := make([]leaguestanding.Standing, 0, len(entries))
	for _, entry := range entries {
		entry.ScrapedAt = scrapedAt
		rows = append(rows, entry)
	}
	if err := s.standingRepo.ReplaceSnapshot(ctx, leagueID, rows); err != nil {
		return 0, fmt.Errorf("replace standings: %w", err)
	}
	return len(rows), nil
}

func (r *SyncReport) fail(err error) {
	r.Failed++
	r.Errors = append(r.Errors, err.Error())
}

func sameValue(a, b float64) bool {
	return math.Abs(roundValuation(a)-roundValuation(b)) < 1e-9
}

// roundValuation matches the NUMERIC(10, 2) scale of the valuation columns.
func roundValuation(v float64) float64 {
	return math.Round(v*100) / 100
}

func groupRowsByName(rows []scraped.PlayerRow) [][]scraped.PlayerRow {
	index := make(map[string]int, len(rows))
	var groups [][]scraped.PlayerRow
	for _, row := range rows {
		key := strings.ToLower(strings.TrimSpace(row.Name))
		idx, ok := index[key]
		if !ok {
			idx = len(groups)
			index[key] = idx
			groups = append(groups, nil)
		}
		groups[idx] = append(groups[idx], row)
	}
	return groups
}
