package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-scraper/internal/extraction"
	"github.com/riskibarqy/fantasy-league-scraper/internal/platform/logging"
	"github.com/riskibarqy/fantasy-league-scraper/internal/platform/resilience"
)

const (
	defaultLoginTimeout        = 30 * time.Second
	defaultLoginPollInterval   = 500 * time.Millisecond
	defaultManualLoginTimeout  = 5 * time.Minute
	defaultManualPollInterval  = 3 * time.Second
	defaultManualMaxErrors     = 3
	defaultConfirmDelay        = 750 * time.Millisecond
	defaultRetryDelay          = 500 * time.Millisecond
	defaultLoginPathFromBase   = "/login"
	manualLoginWaitLogInterval = 30 * time.Second
)

type Config struct {
	BaseURL    string
	LoginURL   string
	LeagueType league.Type

	LoginTimeout      time.Duration
	LoginPollInterval time.Duration

	ManualLoginTimeout         time.Duration
	ManualPollInterval         time.Duration
	ManualMaxConsecutiveErrors int

	// ConfirmDelay separates the two checks that must agree before a positive
	// signal is trusted.
	ConfirmDelay time.Duration
	// RetryDelay is the pause before a guarded navigation is retried.
	RetryDelay time.Duration
}

func (c Config) withDefaults() Config {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if strings.TrimSpace(c.LoginURL) == "" && c.BaseURL != "" {
		c.LoginURL = c.BaseURL + defaultLoginPathFromBase
	}
	if c.LeagueType == "" {
		c.LeagueType = league.TypeClassic
	}
	if c.LoginTimeout <= 0 {
		c.LoginTimeout = defaultLoginTimeout
	}
	if c.LoginPollInterval <= 0 {
		c.LoginPollInterval = defaultLoginPollInterval
	}
	if c.ManualLoginTimeout <= 0 {
		c.ManualLoginTimeout = defaultManualLoginTimeout
	}
	if c.ManualPollInterval <= 0 {
		c.ManualPollInterval = defaultManualPollInterval
	}
	if c.ManualMaxConsecutiveErrors <= 0 {
		c.ManualMaxConsecutiveErrors = defaultManualMaxErrors
	}
	if c.ConfirmDelay < 0 {
		c.ConfirmDelay = 0
	} else if c.ConfirmDelay == 0 {
		c.ConfirmDelay = defaultConfirmDelay
	}
	if c.RetryDelay < 0 {
		c.RetryDelay = 0
	} else if c.RetryDelay == 0 {
		c.RetryDelay = defaultRetryDelay
	}
	return c
}

// Observation is one authentication check of the current page.
type Observation struct {
	URL    string
	Doc    *goquery.Document
	Signal Signal
}

// Machine drives the login lifecycle of one browser and owns its State.
type Machine struct {
	browser Browser
	cfg     Config
	auth    extraction.AuthRules
	login   extraction.LoginRules
	consent extraction.ConsentRules
	logger  *logging.Logger
	now     func() time.Time

	mu       sync.RWMutex
	state    State
	creds    Credentials
	hasCreds bool
}

func NewMachine(browser Browser, cfg Config, rules extraction.Rules, logger *logging.Logger) *Machine {
	if logger == nil {
		logger = logging.Default()
	}
	cfg = cfg.withDefaults()
	return &Machine{
		browser: browser,
		cfg:     cfg,
		auth:    rules.Auth,
		login:   rules.Login,
		consent: rules.Consent,
		logger:  logger.Named("login"),
		now:     time.Now,
		state: State{
			Phase:      PhaseUnauthenticated,
			LeagueType: cfg.LeagueType,
			BaseURL:    cfg.BaseURL,
		},
	}
}

// State returns a copy of the session state.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.clone()
}

func (m *Machine) Phase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Phase
}

func (m *Machine) setPhase(ctx context.Context, to Phase, reason string) {
	m.mu.Lock()
	from := m.state.Phase
	m.state.Phase = to
	m.state.Authenticated = to == PhaseAuthenticated
	m.mu.Unlock()

	if from != to {
		m.logger.InfoContext(ctx, "session phase changed", "from", from, "to", to, "reason", reason)
	}
}

// MarkDegraded records that a later check lost the session.
func (m *Machine) MarkDegraded(ctx context.Context, reason string) {
	if m.Phase() == PhaseAuthenticated {
		m.setPhase(ctx, PhaseDegraded, reason)
	}
}

// Login submits credentials and waits until the site leaves the login page.
// Credentials are kept in memory for later recovery.
func (m *Machine) Login(ctx context.Context, creds Credentials) error {
	ctx, span := startSessionSpan(ctx, "session.Machine.Login")
	defer span.End()

	if creds.Empty() {
		return crerr.Wrap(ErrLoginRejected, "username and password are required")
	}
	m.mu.Lock()
	m.creds = creds
	m.hasCreds = true
	m.mu.Unlock()

	return m.submitCredentials(ctx)
}

func (m *Machine) submitCredentials(ctx context.Context) error {
	m.mu.RLock()
	creds, hasCreds := m.creds, m.hasCreds
	m.mu.RUnlock()
	if !hasCreds {
		return crerr.Wrap(ErrNotAuthenticated, "no stored credentials")
	}
	if m.cfg.LoginURL == "" {
		return crerr.Wrap(ErrLoginFieldNotFound, "login url is not configured")
	}

	if err := m.browser.Navigate(ctx, m.cfg.LoginURL); err != nil {
		m.setPhase(ctx, PhaseUnauthenticated, "login page unreachable")
		return crerr.Wrapf(ErrLoginRejected, "open login page: %v", err)
	}
	DismissConsent(ctx, m.browser, m.consent, m.logger)

	username, err := m.findField(ctx, "username", m.login.UsernameSelectors)
	if err != nil {
		m.setPhase(ctx, PhaseUnauthenticated, "username field missing")
		return err
	}
	password, err := m.findField(ctx, "password", m.login.PasswordSelectors)
	if err != nil {
		m.setPhase(ctx, PhaseUnauthenticated, "password field missing")
		return err
	}
	submit, err := m.findField(ctx, "submit", m.login.SubmitSelectors)
	if err != nil {
		m.setPhase(ctx, PhaseUnauthenticated, "submit control missing")
		return err
	}

	m.setPhase(ctx, PhaseAuthenticating, "credentials submitted")
	if err := m.browser.Fill(ctx, username, creds.Username); err != nil {
		m.setPhase(ctx, PhaseUnauthenticated, "fill username failed")
		return crerr.Wrapf(ErrLoginFieldNotFound, "fill username: %v", err)
	}
	if err := m.browser.Fill(ctx, password, creds.Password); err != nil {
		m.setPhase(ctx, PhaseUnauthenticated, "fill password failed")
		return crerr.Wrapf(ErrLoginFieldNotFound, "fill password: %v", err)
	}
	if err := m.browser.Click(ctx, submit); err != nil {
		m.setPhase(ctx, PhaseUnauthenticated, "submit failed")
		return crerr.Wrapf(ErrLoginFieldNotFound, "click submit: %v", err)
	}

	return m.awaitLoginRedirect(ctx)
}

func (m *Machine) findField(ctx context.Context, field string, selectors []string) (string, error) {
	for _, sel := range selectors {
		elements, err := m.browser.FindElements(ctx, sel)
		if err != nil {
			m.logger.DebugContext(ctx, "login field lookup failed", "field", field, "selector", sel, "error", err)
			continue
		}
		if len(elements) > 0 {
			return elements[0].Selector, nil
		}
	}
	return "", crerr.Wrapf(ErrLoginFieldNotFound, "%s field not found (tried %d selectors)", field, len(selectors))
}

func (m *Machine) awaitLoginRedirect(ctx context.Context) error {
	deadline := m.now().Add(m.cfg.LoginTimeout)
	lastURL := ""
	for {
		if err := resilience.Sleep(ctx, m.cfg.LoginPollInterval); err != nil {
			m.setPhase(ctx, PhaseUnauthenticated, "login wait cancelled")
			return err
		}

		current, err := m.browser.CurrentURL(ctx)
		if err != nil {
			m.logger.DebugContext(ctx, "read url after submit failed", "error", err)
		} else {
			lastURL = current
			if !IsLoginURL(current, m.auth) {
				confirmed, err := m.confirm(ctx)
				if err != nil {
					m.logger.DebugContext(ctx, "confirm login failed", "error", err)
				}
				if confirmed {
					m.onAuthenticated(ctx, "login redirect confirmed")
					return nil
				}
			}
		}

		if !m.now().Before(deadline) {
			m.setPhase(ctx, PhaseUnauthenticated, "still on login page")
			return crerr.Wrapf(ErrLoginRejected, "still on login page after %s (url=%s)", m.cfg.LoginTimeout, lastURL)
		}
	}
}

// WaitForManualLogin polls until a human completes the login in the visible
// browser. Two consecutive positive checks are required. Closing the browser
// or cancelling ctx ends the wait.
func (m *Machine) WaitForManualLogin(ctx context.Context) error {
	ctx, span := startSessionSpan(ctx, "session.Machine.WaitForManualLogin")
	defer span.End()

	if m.cfg.LoginURL != "" {
		if current, err := m.browser.CurrentURL(ctx); err != nil || !m.onSite(current) {
			if err := m.browser.Navigate(ctx, m.cfg.LoginURL); err != nil {
				m.logger.WarnContext(ctx, "open login page for manual login failed", "error", err)
			}
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, m.cfg.ManualLoginTimeout)
	defer cancel()

	budget := resilience.NewErrorBudget(m.cfg.ManualMaxConsecutiveErrors)
	ticker := time.NewTicker(m.cfg.ManualPollInterval)
	defer ticker.Stop()

	started := m.now()
	lastLog := started
	positives := 0
	m.logger.InfoContext(ctx, "waiting for manual login", "timeout", m.cfg.ManualLoginTimeout.String())

	for {
		obs, err := m.observe(waitCtx)
		switch {
		case err != nil:
			positives = 0
			if waitCtx.Err() != nil {
				break
			}
			if budget.RecordFailure(err) {
				return crerr.Wrapf(ErrManualLoginTimeout, "%d consecutive detection errors, last: %v", budget.Consecutive(), err)
			}
			m.logger.DebugContext(ctx, "manual login check failed", "consecutive", budget.Consecutive(), "error", err)
		case obs.Signal.Authenticated:
			budget.RecordSuccess()
			positives++
			if positives >= 2 {
				m.onAuthenticated(ctx, "manual login confirmed")
				return nil
			}
		default:
			budget.RecordSuccess()
			positives = 0
		}

		if now := m.now(); now.Sub(lastLog) >= manualLoginWaitLogInterval {
			lastLog = now
			m.logger.InfoContext(ctx, "still waiting for manual login", "elapsed", now.Sub(started).Round(time.Second).String())
		}

		select {
		case <-m.browser.Done():
			return ErrSessionClosed
		case <-waitCtx.Done():
			if err := ctx.Err(); err != nil {
				return err
			}
			return crerr.Wrapf(ErrManualLoginTimeout, "no login within %s", m.cfg.ManualLoginTimeout)
		case <-ticker.C:
		}
	}
}

// Resume restores cookies from an earlier session and confirms them against
// the base URL. It reports false when the cookies no longer authenticate.
func (m *Machine) Resume(ctx context.Context, cookies []Cookie) (bool, error) {
	if len(cookies) == 0 {
		return false, nil
	}
	m.mu.Lock()
	m.state.Cookies = append([]Cookie(nil), cookies...)
	m.mu.Unlock()

	if err := m.restoreCookies(ctx); err != nil {
		m.logger.InfoContext(ctx, "stored cookies did not authenticate", "error", err)
		return false, nil
	}
	m.onAuthenticated(ctx, "cookies restored")
	return true, nil
}

// Check evaluates the authentication signal of the current page. An
// authenticated session whose signal is lost becomes degraded.
func (m *Machine) Check(ctx context.Context) (Observation, error) {
	obs, err := m.observe(ctx)
	if err != nil {
		return Observation{}, err
	}

	switch {
	case obs.Signal.Authenticated && m.Phase() == PhaseAuthenticated:
		m.saveCookies(ctx)
	case !obs.Signal.Authenticated:
		m.MarkDegraded(ctx, obs.Signal.Reason)
	}
	return obs, nil
}

// Recover re-establishes a degraded session. Restoring saved cookies is tried
// first, then stored credentials are submitted again.
func (m *Machine) Recover(ctx context.Context) error {
	ctx, span := startSessionSpan(ctx, "session.Machine.Recover")
	defer span.End()

	switch m.Phase() {
	case PhaseAuthenticated:
		return nil
	case PhaseDegraded:
	default:
		return crerr.Wrapf(ErrNotAuthenticated, "cannot recover from phase %s", m.Phase())
	}

	state := m.State()
	if len(state.Cookies) > 0 {
		err := m.restoreCookies(ctx)
		if err == nil {
			m.onAuthenticated(ctx, "cookies restored")
			return nil
		}
		m.logger.InfoContext(ctx, "cookie restore failed", "error", err)
	}

	m.mu.RLock()
	hasCreds := m.hasCreds
	m.mu.RUnlock()
	if !hasCreds {
		m.setPhase(ctx, PhaseUnauthenticated, "manual session lost")
		return crerr.Wrap(ErrLoginRejected, "manual session cannot be recovered without valid cookies")
	}
	return m.submitCredentials(ctx)
}

// EnsureAuthenticated is a no-op for authenticated sessions and recovers
// degraded ones.
func (m *Machine) EnsureAuthenticated(ctx context.Context) error {
	switch m.Phase() {
	case PhaseAuthenticated:
		return nil
	case PhaseDegraded:
		return m.Recover(ctx)
	default:
		return crerr.Wrapf(ErrNotAuthenticated, "phase %s", m.Phase())
	}
}

func (m *Machine) restoreCookies(ctx context.Context) error {
	state := m.State()
	now := m.now()
	live := make([]Cookie, 0, len(state.Cookies))
	for _, c := range state.Cookies {
		if !c.Expired(now) {
			live = append(live, c)
		}
	}
	if len(live) == 0 {
		return crerr.New("all saved cookies expired")
	}
	if err := m.browser.SetCookies(ctx, live); err != nil {
		return crerr.Wrap(err, "set cookies")
	}
	if err := m.browser.Navigate(ctx, m.cfg.BaseURL); err != nil {
		return crerr.Wrap(err, "reload base url")
	}
	confirmed, err := m.confirm(ctx)
	if err != nil {
		return err
	}
	if !confirmed {
		return crerr.New("restored cookies not accepted")
	}
	return nil
}

// confirm requires two positive checks separated by ConfirmDelay.
func (m *Machine) confirm(ctx context.Context) (bool, error) {
	first, err := m.observe(ctx)
	if err != nil || !first.Signal.Authenticated {
		return false, err
	}
	if err := resilience.Sleep(ctx, m.cfg.ConfirmDelay); err != nil {
		return false, err
	}
	second, err := m.observe(ctx)
	if err != nil {
		return false, err
	}
	return second.Signal.Authenticated, nil
}

func (m *Machine) observe(ctx context.Context) (Observation, error) {
	current, err := m.browser.CurrentURL(ctx)
	if err != nil {
		return Observation{}, crerr.Wrap(err, "read current url")
	}
	doc, err := m.browser.Snapshot(ctx)
	if err != nil {
		return Observation{}, crerr.Wrap(err, "snapshot page")
	}
	signal := DetectAuthentication(current, doc, m.auth)

	m.mu.Lock()
	m.state.LastCheckedURL = current
	m.state.LastCheckedAt = m.now()
	m.mu.Unlock()

	return Observation{URL: current, Doc: doc, Signal: signal}, nil
}

func (m *Machine) onSite(pageURL string) bool {
	return m.cfg.BaseURL != "" && strings.HasPrefix(pageURL, m.cfg.BaseURL)
}

func (m *Machine) onAuthenticated(ctx context.Context, reason string) {
	m.setPhase(ctx, PhaseAuthenticated, reason)
	m.saveCookies(ctx)
}

func (m *Machine) saveCookies(ctx context.Context) {
	cookies, err := m.browser.Cookies(ctx)
	if err != nil {
		m.logger.DebugContext(ctx, "read cookies failed", "error", err)
		return
	}
	if len(cookies) == 0 {
		return
	}
	m.mu.Lock()
	m.state.Cookies = cookies
	m.mu.Unlock()
}
