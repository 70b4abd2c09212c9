package commands

import (
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-league-scraper/internal/config"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-scraper/internal/infrastructure/browser"
	"github.com/riskibarqy/fantasy-league-scraper/internal/platform/logging"
	"github.com/riskibarqy/fantasy-league-scraper/internal/session"
	"github.com/riskibarqy/fantasy-league-scraper/internal/usecase"
	"github.com/spf13/pflag"
)

// scrapeFlags are shared by run and competitions. Empty values fall back to
// the SCRAPER_* environment.
type scrapeFlags struct {
	baseURL      string
	loginURL     string
	leagueType   string
	kinds        []string
	competitions []string
	targetLeague string
	manualLogin  bool
	cookiesPath  string
	outputPath   string
	pretty       bool
}

func (f *scrapeFlags) register(flags *pflag.FlagSet, withKinds bool) {
	flags.StringVar(&f.baseURL, "base-url", "", "league base URL (default SCRAPER_BASE_URL)")
	flags.StringVar(&f.loginURL, "login-url", "", "login page URL (default SCRAPER_LOGIN_URL or <base-url>/login)")
	flags.StringVar(&f.leagueType, "league-type", "", "classic or extended (default SCRAPER_LEAGUE_TYPE)")
	flags.BoolVar(&f.manualLogin, "manual-login", false, "wait for a human to log in inside the browser window")
	flags.StringVar(&f.cookiesPath, "cookies", "", "cookie jar file reused across runs")
	flags.StringVarP(&f.outputPath, "output", "o", "-", "result file, - for stdout")
	flags.BoolVar(&f.pretty, "pretty", false, "indent the JSON result")
	if withKinds {
		flags.StringSliceVar(&f.kinds, "kinds", nil, "page kinds: rosters, standings, votes, lineups, market (default all)")
		flags.StringSliceVar(&f.competitions, "competition", nil, "numeric competition id, repeatable")
		flags.StringVar(&f.targetLeague, "target-league", "", "persist rosters and standings under this league id")
	}
}

func (f *scrapeFlags) request(cfg config.ScraperConfig) usecase.ScrapeRequest {
	req := usecase.ScrapeRequest{
		BaseURL:     firstNonEmpty(f.baseURL, cfg.BaseURL),
		LoginURL:    strings.TrimSpace(f.loginURL),
		LeagueType:  league.Type(firstNonEmpty(f.leagueType, cfg.LeagueType)),
		Credentials: session.Credentials{Username: cfg.Username, Password: cfg.Password},
		ManualLogin: f.manualLogin || cfg.ManualLogin,

		TargetLeagueID: strings.TrimSpace(f.targetLeague),
	}
	for _, kind := range f.kinds {
		if kind = strings.TrimSpace(kind); kind != "" {
			req.Kinds = append(req.Kinds, usecase.Kind(kind))
		}
	}
	return req
}

// loadCookies fills the request from the jar. A missing jar is not an error.
func (f *scrapeFlags) loadCookies(req *usecase.ScrapeRequest, now time.Time) error {
	if f.cookiesPath == "" {
		return nil
	}
	cookies, err := browser.LoadCookies(f.cookiesPath, strings.TrimRight(req.BaseURL, "/"), now)
	if err != nil {
		return err
	}
	req.Cookies = cookies
	return nil
}

func (f *scrapeFlags) saveCookies(baseURL string, cookies []session.Cookie, now time.Time) error {
	if f.cookiesPath == "" || len(cookies) == 0 {
		return nil
	}
	return browser.SaveCookies(f.cookiesPath, strings.TrimRight(baseURL, "/"), cookies, now)
}

func (f *scrapeFlags) saveJar(logger *logging.Logger, baseURL string, cookies []session.Cookie) {
	if err := f.saveCookies(baseURL, cookies, time.Now()); err != nil {
		logger.Warn("save cookie jar failed", "path", f.cookiesPath, "error", err)
		return
	}
	if f.cookiesPath != "" && len(cookies) > 0 {
		logger.Info("cookie jar saved", "path", f.cookiesPath, "cookies", len(cookies))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
