package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-league-scraper/internal/config"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/leaguestanding"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/player"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/scraped"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/valuation"
	"github.com/riskibarqy/fantasy-league-scraper/internal/extraction"
	"github.com/riskibarqy/fantasy-league-scraper/internal/infrastructure/browser"
	"github.com/riskibarqy/fantasy-league-scraper/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-league-scraper/internal/infrastructure/repository/postgres"
	idgen "github.com/riskibarqy/fantasy-league-scraper/internal/platform/id"
	"github.com/riskibarqy/fantasy-league-scraper/internal/platform/logging"
	"github.com/riskibarqy/fantasy-league-scraper/internal/session"
	"github.com/riskibarqy/fantasy-league-scraper/internal/usecase"
)

// App is the wired scraper: store, sync engine and orchestrator.
type App struct {
	Scrape *usecase.ScrapeService
	Sync   *usecase.SyncService
	Rules  extraction.Rules

	db *sqlx.DB
}

type repositories struct {
	scraped   scraped.Repository
	players   player.Repository
	valuation valuation.Repository
	standings leaguestanding.Repository
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	rules, err := extraction.LoadRules(cfg.Scraper.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("load extraction rules: %w", err)
	}

	a := &App{Rules: rules}
	repos, err := a.buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a.Sync = usecase.NewSyncService(
		repos.scraped,
		repos.players,
		repos.valuation,
		repos.standings,
		usecase.SyncConfig{Workers: cfg.SyncWorkers},
		logger,
	)
	a.Scrape = usecase.NewScrapeService(
		NewChromeLauncher(BrowserConfig(cfg.Scraper), logger),
		a.Sync,
		rules,
		SessionConfig(cfg.Scraper),
		logger,
	)
	return a, nil
}

func (a *App) buildRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	ids := idgen.NewRandomGenerator()

	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := openDB(ctx, cfg)
		if err != nil {
			return repositories{}, err
		}
		a.db = db
		logger.Info("store ready", "driver", cfg.StoreDriver, "db_name", dbNameFromURL(cfg.DBURL))
		return repositories{
			scraped:   postgres.NewScrapedRepository(db, ids),
			players:   postgres.NewPlayerRepository(db),
			valuation: postgres.NewValuationRepository(db),
			standings: postgres.NewLeagueStandingRepository(db),
		}, nil
	case config.StoreMemory, "":
		logger.Info("store ready", "driver", config.StoreMemory)
		return repositories{
			scraped:   memory.NewScrapedRepository(ids),
			players:   memory.NewPlayerRepository(nil),
			valuation: memory.NewValuationRepository(),
			standings: memory.NewLeagueStandingRepository(),
		}, nil
	default:
		return repositories{}, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func (a *App) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// BrowserConfig maps scraper settings onto the chromedp session.
func BrowserConfig(cfg config.ScraperConfig) browser.Config {
	return browser.Config{
		Headless:          cfg.Headless,
		ChromePath:        cfg.ChromePath,
		UserAgent:         cfg.UserAgent,
		Locale:            cfg.Locale,
		ViewportWidth:     cfg.ViewportWidth,
		ViewportHeight:    cfg.ViewportHeight,
		NavigationTimeout: cfg.NavigationTimeout,
		EvalTimeout:       cfg.EvalTimeout,
	}
}

// SessionConfig maps scraper settings onto the login state machine. Base URL
// and league type come from each request.
func SessionConfig(cfg config.ScraperConfig) session.Config {
	return session.Config{
		LoginURL:                   cfg.LoginURL,
		LoginTimeout:               cfg.LoginTimeout,
		LoginPollInterval:          cfg.LoginPollInterval,
		ManualLoginTimeout:         cfg.ManualLoginTimeout,
		ManualPollInterval:         cfg.ManualPollInterval,
		ManualMaxConsecutiveErrors: cfg.ManualMaxErrors,
	}
}

// ChromeLauncher opens one chromedp browser per run.
type ChromeLauncher struct {
	cfg    browser.Config
	logger *logging.Logger
}

func NewChromeLauncher(cfg browser.Config, logger *logging.Logger) *ChromeLauncher {
	return &ChromeLauncher{cfg: cfg, logger: logger}
}

func (l *ChromeLauncher) Launch(ctx context.Context) (session.Browser, error) {
	chrome, err := browser.Open(ctx, l.cfg, l.logger)
	if err != nil {
		return nil, err
	}
	return chrome, nil
}
