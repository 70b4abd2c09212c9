package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-league-scraper/internal/config"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-scraper/internal/session"
	"github.com/riskibarqy/fantasy-league-scraper/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrapeFlagsRequestFallsBackToEnvironment(t *testing.T) {
	flags := scrapeFlags{
		kinds:        []string{"rosters", " ", "standings"},
		targetLeague: " lega-1 ",
	}
	req := flags.request(config.ScraperConfig{
		BaseURL:    "https://leghe.example.test",
		LoginURL:   "https://sso.example.test/login",
		LeagueType: "extended",
		Username:   "mister",
		Password:   "hunter2",
	})

	assert.Equal(t, "https://leghe.example.test", req.BaseURL)
	assert.Empty(t, req.LoginURL)
	assert.Equal(t, league.Type("extended"), req.LeagueType)
	assert.Equal(t, session.Credentials{Username: "mister", Password: "hunter2"}, req.Credentials)
	assert.Equal(t, []usecase.Kind{usecase.KindRosters, usecase.KindStandings}, req.Kinds)
	assert.Equal(t, "lega-1", req.TargetLeagueID)
	assert.False(t, req.ManualLogin)
}

func TestScrapeFlagsRequestPrefersFlags(t *testing.T) {
	flags := scrapeFlags{baseURL: "https://other.example.test", loginURL: " https://other.example.test/accedi ", leagueType: "classic", manualLogin: true}
	req := flags.request(config.ScraperConfig{BaseURL: "https://leghe.example.test", LeagueType: "extended"})

	assert.Equal(t, "https://other.example.test", req.BaseURL)
	assert.Equal(t, "https://other.example.test/accedi", req.LoginURL)
	assert.Equal(t, league.TypeClassic, req.LeagueType)
	assert.True(t, req.ManualLogin)
}

func TestScrapeFlagsCookieJarRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	flags := scrapeFlags{cookiesPath: path}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	req := usecase.ScrapeRequest{BaseURL: "https://leghe.example.test"}
	require.NoError(t, flags.loadCookies(&req, now))
	assert.Empty(t, req.Cookies)

	cookies := []session.Cookie{{Name: "sid", Value: "abc", Domain: "leghe.example.test", Path: "/"}}
	require.NoError(t, flags.saveCookies("https://leghe.example.test/", cookies, now))
	require.NoError(t, flags.loadCookies(&req, now))
	require.Len(t, req.Cookies, 1)
	assert.Equal(t, "sid", req.Cookies[0].Name)
}

func TestScrapeFlagsWithoutJarIsNoop(t *testing.T) {
	var flags scrapeFlags
	req := usecase.ScrapeRequest{BaseURL: "https://leghe.example.test"}

	assert.NoError(t, flags.loadCookies(&req, time.Now()))
	assert.NoError(t, flags.saveCookies(req.BaseURL, []session.Cookie{{Name: "sid"}}, time.Now()))
}

func TestWriteResult(t *testing.T) {
	payload := map[string]int{"teams": 2}

	var stdout bytes.Buffer
	require.NoError(t, writeResult(&stdout, "-", payload, false))
	assert.Equal(t, "{\"teams\":2}\n", stdout.String())

	path := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, writeResult(&stdout, path, payload, true))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "{\n  \"teams\": 2"))
}

func TestMigrateArgumentParsing(t *testing.T) {
	steps, err := parseSteps(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, steps)

	_, err = parseSteps([]string{"0"})
	assert.Error(t, err)

	version, err := parseVersion("1772000100")
	require.NoError(t, err)
	assert.Equal(t, 1772000100, version)

	_, err = parseVersion("-3")
	assert.Error(t, err)

	_, err = parseTarget("abc")
	assert.Error(t, err)
}

func TestEnvBool(t *testing.T) {
	t.Setenv("SCRAPER_TEST_FLAG", "")
	assert.True(t, envBool("SCRAPER_TEST_FLAG", true))

	t.Setenv("SCRAPER_TEST_FLAG", "off")
	assert.False(t, envBool("SCRAPER_TEST_FLAG", true))

	t.Setenv("SCRAPER_TEST_FLAG", "yes")
	assert.True(t, envBool("SCRAPER_TEST_FLAG", false))
}

func TestResolveMigrationsDirPrefersFlag(t *testing.T) {
	dir := t.TempDir()
	got, err := resolveMigrationsDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}
