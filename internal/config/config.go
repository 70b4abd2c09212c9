package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-league-scraper/internal/platform/logging"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config stores runtime configuration for the scraper.
type Config struct {
	AppEnv                  string
	ServiceName             string
	ServiceVersion          string
	LogLevel                logging.Level
	DBURL                   string
	DBDisablePreparedBinary bool
	StoreDriver             string
	SyncWorkers             int
	UptraceEnabled          bool
	UptraceDSN              string

	Scraper ScraperConfig
}

// ScraperConfig holds the source site, browser and login settings. Password
// is never printed by String.
type ScraperConfig struct {
	BaseURL            string
	LoginURL           string
	LeagueType         string
	Username           string
	Password           string
	ManualLogin        bool
	Headless           bool
	UserAgent          string
	Locale             string
	ViewportWidth      int
	ViewportHeight     int
	ChromePath         string
	NavigationTimeout  time.Duration
	EvalTimeout        time.Duration
	LoginTimeout       time.Duration
	LoginPollInterval  time.Duration
	ManualLoginTimeout time.Duration
	ManualPollInterval time.Duration
	ManualMaxErrors    int
	RulesPath          string
}

func (c ScraperConfig) String() string {
	password := ""
	if c.Password != "" {
		password = "[redacted]"
	}
	return fmt.Sprintf("ScraperConfig{BaseURL:%s LoginURL:%s LeagueType:%s Username:%s Password:%s ManualLogin:%t Headless:%t}",
		c.BaseURL, c.LoginURL, c.LeagueType, c.Username, password, c.ManualLogin, c.Headless)
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	storeDefault := StoreMemory
	if dbURL != "" {
		storeDefault = StorePostgres
	}
	storeDriver, err := parseStoreDriver(getEnv("STORE_DRIVER", storeDefault))
	if err != nil {
		return Config{}, err
	}
	if storeDriver == StorePostgres && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when STORE_DRIVER=%s", StorePostgres)
	}

	syncWorkers, err := getEnvAsInt("SYNC_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_WORKERS: %w", err)
	}
	if syncWorkers < 1 {
		return Config{}, fmt.Errorf("SYNC_WORKERS must be >= 1")
	}

	scraper, err := loadScraper()
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:                  appEnv,
		ServiceName:             strings.TrimSpace(getEnv("APP_SERVICE_NAME", "fantasy-league-scraper")),
		ServiceVersion:          strings.TrimSpace(getEnv("APP_SERVICE_VERSION", "dev")),
		LogLevel:                logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		DBURL:                   dbURL,
		DBDisablePreparedBinary: dbDisablePreparedBinary,
		StoreDriver:             storeDriver,
		SyncWorkers:             syncWorkers,
		UptraceEnabled:          uptraceEnabled,
		UptraceDSN:              uptraceDSN,
		Scraper:                 scraper,
	}, nil
}

func loadScraper() (ScraperConfig, error) {
	cfg := ScraperConfig{
		BaseURL:    strings.TrimRight(strings.TrimSpace(getEnv("SCRAPER_BASE_URL", "")), "/"),
		LoginURL:   strings.TrimSpace(getEnv("SCRAPER_LOGIN_URL", "")),
		LeagueType: strings.ToLower(strings.TrimSpace(getEnv("SCRAPER_LEAGUE_TYPE", "classic"))),
		Username:   strings.TrimSpace(getEnv("SCRAPER_USERNAME", "")),
		Password:   os.Getenv("SCRAPER_PASSWORD"),
		UserAgent:  strings.TrimSpace(getEnv("SCRAPER_USER_AGENT", "")),
		Locale:     strings.TrimSpace(getEnv("SCRAPER_LOCALE", "it-IT")),
		ChromePath: strings.TrimSpace(getEnv("SCRAPER_CHROME_PATH", "")),
		RulesPath:  strings.TrimSpace(getEnv("SCRAPER_RULES_PATH", "")),
	}

	switch cfg.LeagueType {
	case "classic", "extended", "mantra":
	default:
		return ScraperConfig{}, fmt.Errorf("invalid SCRAPER_LEAGUE_TYPE %q: valid values are classic, extended, mantra", cfg.LeagueType)
	}

	var err error
	if cfg.ManualLogin, err = strconv.ParseBool(getEnv("SCRAPER_MANUAL_LOGIN", "false")); err != nil {
		return ScraperConfig{}, fmt.Errorf("parse SCRAPER_MANUAL_LOGIN: %w", err)
	}

	// A manual login needs a visible window.
	headlessDefault := "true"
	if cfg.ManualLogin {
		headlessDefault = "false"
	}
	if cfg.Headless, err = strconv.ParseBool(getEnv("SCRAPER_HEADLESS", headlessDefault)); err != nil {
		return ScraperConfig{}, fmt.Errorf("parse SCRAPER_HEADLESS: %w", err)
	}

	if cfg.ViewportWidth, cfg.ViewportHeight, err = parseViewport(getEnv("SCRAPER_VIEWPORT", "1366x768")); err != nil {
		return ScraperConfig{}, fmt.Errorf("parse SCRAPER_VIEWPORT: %w", err)
	}

	durations := []struct {
		key      string
		fallback string
		target   *time.Duration
	}{
		{"SCRAPER_NAV_TIMEOUT", "30s", &cfg.NavigationTimeout},
		{"SCRAPER_EVAL_TIMEOUT", "15s", &cfg.EvalTimeout},
		{"SCRAPER_LOGIN_TIMEOUT", "30s", &cfg.LoginTimeout},
		{"SCRAPER_LOGIN_POLL_INTERVAL", "500ms", &cfg.LoginPollInterval},
		{"SCRAPER_MANUAL_LOGIN_TIMEOUT", "5m", &cfg.ManualLoginTimeout},
		{"SCRAPER_MANUAL_POLL_INTERVAL", "3s", &cfg.ManualPollInterval},
	}
	for _, d := range durations {
		value, err := time.ParseDuration(getEnv(d.key, d.fallback))
		if err != nil {
			return ScraperConfig{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		if value <= 0 {
			return ScraperConfig{}, fmt.Errorf("%s must be > 0", d.key)
		}
		*d.target = value
	}

	if cfg.ManualMaxErrors, err = getEnvAsInt("SCRAPER_MANUAL_MAX_ERRORS", 3); err != nil {
		return ScraperConfig{}, fmt.Errorf("parse SCRAPER_MANUAL_MAX_ERRORS: %w", err)
	}
	if cfg.ManualMaxErrors < 1 {
		return ScraperConfig{}, fmt.Errorf("SCRAPER_MANUAL_MAX_ERRORS must be >= 1")
	}

	return cfg, nil
}

func parseViewport(raw string) (int, int, error) {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(raw)), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid viewport %q, expected WIDTHxHEIGHT", raw)
	}
	width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid viewport width %q: %w", parts[0], err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid viewport height %q: %w", parts[1], err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("viewport dimensions must be > 0")
	}
	return width, height, nil
}

func parseStoreDriver(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case StorePostgres, StoreMemory:
		return value, nil
	default:
		return "", fmt.Errorf("invalid STORE_DRIVER %q: valid values are %s, %s", v, StorePostgres, StoreMemory)
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
