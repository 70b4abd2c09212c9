package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-league-scraper/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = Credentials{Username: "mister", Password: "hunter2"}

func newTestMachine(b Browser) *Machine {
	return NewMachine(b, testConfig(), testRules(), logging.NewNop())
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{BaseURL: "https://fanta.test/ "}.withDefaults()

	assert.Equal(t, "https://fanta.test", cfg.BaseURL)
	assert.Equal(t, "https://fanta.test/login", cfg.LoginURL)
	assert.Equal(t, defaultLoginTimeout, cfg.LoginTimeout)
	assert.Equal(t, defaultManualPollInterval, cfg.ManualPollInterval)
	assert.Equal(t, defaultManualMaxErrors, cfg.ManualMaxConsecutiveErrors)
	assert.Equal(t, defaultConfirmDelay, cfg.ConfirmDelay)
}

func TestMachine_LoginReachesAuthenticated(t *testing.T) {
	b := newFakeBrowser()
	b.acceptLogin()
	m := newTestMachine(b)

	require.NoError(t, m.Login(context.Background(), testCreds))

	state := m.State()
	assert.Equal(t, PhaseAuthenticated, state.Phase)
	assert.True(t, state.Authenticated)
	require.Len(t, state.Cookies, 1)
	assert.Equal(t, "sid", state.Cookies[0].Name)
	assert.Equal(t, testBase+"/dashboard", state.LastCheckedURL)
	assert.Equal(t, "mister", b.fills["#u"])
	assert.Equal(t, "hunter2", b.fills["#p"])
	assert.Equal(t, []string{"#s"}, b.clicks)
}

func TestMachine_LoginRejectedWhenStillOnLoginPage(t *testing.T) {
	b := newFakeBrowser()
	m := newTestMachine(b)

	err := m.Login(context.Background(), testCreds)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLoginRejected))
	assert.True(t, IsAuthError(err))
	assert.Equal(t, PhaseUnauthenticated, m.Phase())
}

func TestMachine_LoginMissingField(t *testing.T) {
	b := newFakeBrowser()
	delete(b.elements[testLoginURL], "input[type=password]")
	m := newTestMachine(b)

	err := m.Login(context.Background(), testCreds)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLoginFieldNotFound))
	assert.Empty(t, b.fills)
	assert.Empty(t, b.clicks)
	assert.Equal(t, PhaseUnauthenticated, m.Phase())
}

func TestMachine_LoginRequiresCredentials(t *testing.T) {
	m := newTestMachine(newFakeBrowser())

	err := m.Login(context.Background(), Credentials{Username: "mister"})
	assert.True(t, errors.Is(err, ErrLoginRejected))
}

func TestMachine_WaitForManualLoginConfirmsTwice(t *testing.T) {
	b := newFakeBrowser()
	b.acceptLogin()
	b.current = testBase + "/dashboard"
	b.cookies = []Cookie{{Name: "sid", Value: "manual", Domain: "fanta.test"}}
	m := newTestMachine(b)

	require.NoError(t, m.WaitForManualLogin(context.Background()))
	assert.Equal(t, PhaseAuthenticated, m.Phase())
	assert.GreaterOrEqual(t, b.snapshots, 2)
	assert.Empty(t, b.navigations)
	assert.Len(t, m.State().Cookies, 1)
}

func TestMachine_WaitForManualLoginGivesUpAfterConsecutiveErrors(t *testing.T) {
	b := newFakeBrowser()
	b.snapshotErr = errFakeSnapshot
	m := newTestMachine(b)

	err := m.WaitForManualLogin(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrManualLoginTimeout))
	assert.Equal(t, 3, b.snapshots)
	assert.Equal(t, []string{testLoginURL}, b.navigations)
}

func TestMachine_WaitForManualLoginEndsWhenBrowserCloses(t *testing.T) {
	b := newFakeBrowser()
	b.current = testLoginURL
	cfg := testConfig()
	cfg.ManualPollInterval = time.Hour
	m := NewMachine(b, cfg, testRules(), logging.NewNop())
	require.NoError(t, b.Close())

	err := m.WaitForManualLogin(context.Background())
	assert.True(t, errors.Is(err, ErrSessionClosed))
}

func TestMachine_WaitForManualLoginHonoursCancellation(t *testing.T) {
	b := newFakeBrowser()
	b.current = testLoginURL
	cfg := testConfig()
	cfg.ManualPollInterval = time.Hour
	m := NewMachine(b, cfg, testRules(), logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.WaitForManualLogin(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, PhaseUnauthenticated, m.Phase())
}

func TestMachine_ResumeWithCookies(t *testing.T) {
	b := newFakeBrowser()
	b.acceptLogin()
	m := newTestMachine(b)

	ok, err := m.Resume(context.Background(), []Cookie{{Name: "sid", Value: "v", Domain: "fanta.test", Expires: time.Now().Add(time.Hour)}})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, PhaseAuthenticated, m.Phase())
	require.Len(t, b.setCookies, 1)
}

func TestMachine_ResumeSkipsExpiredCookies(t *testing.T) {
	b := newFakeBrowser()
	b.acceptLogin()
	m := newTestMachine(b)

	ok, err := m.Resume(context.Background(), []Cookie{{Name: "sid", Value: "v", Expires: time.Now().Add(-time.Hour)}})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, b.setCookies)
	assert.Equal(t, PhaseUnauthenticated, m.Phase())
}

func TestMachine_CheckDegradesLostSession(t *testing.T) {
	b := newFakeBrowser()
	b.acceptLogin()
	m := newTestMachine(b)
	ctx := context.Background()
	require.NoError(t, m.Login(ctx, testCreds))

	require.NoError(t, b.Navigate(ctx, testLoginURL))
	obs, err := m.Check(ctx)
	require.NoError(t, err)
	assert.False(t, obs.Signal.Authenticated)
	assert.Equal(t, ReasonLoginPath, obs.Signal.Reason)
	assert.Equal(t, PhaseDegraded, m.Phase())
}

func TestMachine_RecoverPrefersCookies(t *testing.T) {
	b := newFakeBrowser()
	b.acceptLogin()
	m := newTestMachine(b)
	ctx := context.Background()
	require.NoError(t, m.Login(ctx, testCreds))
	m.MarkDegraded(ctx, "test")

	require.NoError(t, m.Recover(ctx))
	assert.Equal(t, PhaseAuthenticated, m.Phase())
	assert.Len(t, b.setCookies, 1)
	assert.Equal(t, []string{"#s"}, b.clicks)
}

func TestMachine_RecoverFallsBackToCredentials(t *testing.T) {
	b := newFakeBrowser()
	b.acceptLogin()
	m := newTestMachine(b)
	ctx := context.Background()
	require.NoError(t, m.Login(ctx, testCreds))
	m.MarkDegraded(ctx, "test")
	b.redirects[testBase] = []string{testLoginURL}

	require.NoError(t, m.Recover(ctx))
	assert.Equal(t, PhaseAuthenticated, m.Phase())
	assert.Equal(t, []string{"#s", "#s"}, b.clicks)
}

func TestMachine_RecoverManualSessionWithoutCookies(t *testing.T) {
	m := newTestMachine(newFakeBrowser())
	ctx := context.Background()
	m.setPhase(ctx, PhaseDegraded, "test")

	err := m.Recover(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLoginRejected))
	assert.Equal(t, PhaseUnauthenticated, m.Phase())
}

func TestMachine_EnsureAuthenticatedNeverLoggedIn(t *testing.T) {
	m := newTestMachine(newFakeBrowser())

	err := m.EnsureAuthenticated(context.Background())
	assert.True(t, errors.Is(err, ErrNotAuthenticated))
}

func TestMachine_StateIsACopy(t *testing.T) {
	b := newFakeBrowser()
	b.acceptLogin()
	m := newTestMachine(b)
	require.NoError(t, m.Login(context.Background(), testCreds))

	state := m.State()
	state.Cookies[0].Value = "tampered"
	assert.Equal(t, "secret", m.State().Cookies[0].Value)
}

func TestCredentialsAreRedacted(t *testing.T) {
	out := fmt.Sprintf("%v %+v %#v %s", testCreds, testCreds, testCreds, testCreds)
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "mister")
}
