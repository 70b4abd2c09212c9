package session

import (
	"context"
	"errors"
	"time"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-league-scraper/internal/extraction"
	"github.com/riskibarqy/fantasy-league-scraper/internal/platform/logging"
	"github.com/riskibarqy/fantasy-league-scraper/internal/platform/resilience"
)

const guardAttempts = 2

// Page is a rendered page reached through the guard.
type Page struct {
	URL string
	Doc *goquery.Document
}

// Guard makes every navigation an authenticated one. A page that turns out to
// be a login screen costs one recover-and-retry.
type Guard struct {
	browser Browser
	machine *Machine
	consent extraction.ConsentRules
	logger  *logging.Logger

	retryDelay time.Duration
}

func NewGuard(browser Browser, machine *Machine, consent extraction.ConsentRules, logger *logging.Logger) *Guard {
	if logger == nil {
		logger = logging.Default()
	}
	return &Guard{
		browser:    browser,
		machine:    machine,
		consent:    consent,
		logger:     logger.Named("guard"),
		retryDelay: machine.cfg.RetryDelay,
	}
}

func (g *Guard) Goto(ctx context.Context, kind, url string) (Page, error) {
	ctx, span := startSessionSpan(ctx, "session.Guard.Goto")
	defer span.End()

	var page Page
	attempts, err := resilience.Retry(ctx, resilience.RetryConfig{
		Attempts: guardAttempts,
		Delay:    g.retryDelay,
		Retryable: func(err error) bool {
			return errors.Is(err, ErrSessionLostDuringNavigation)
		},
		BeforeRetry: func(ctx context.Context, attempt int, err error) error {
			g.logger.WarnContext(ctx, "session lost, recovering", "kind", kind, "attempt", attempt)
			return g.machine.Recover(ctx)
		},
	}, func(ctx context.Context, attempt int) error {
		p, err := g.visit(ctx, url)
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		g.logger.WarnContext(ctx, "guarded navigation failed", "kind", kind, "url", url, "attempts", attempts, "error", err)
		return Page{}, &GuardError{Kind: kind, URL: url, Attempts: attempts, Err: err}
	}
	if attempts > 1 {
		g.logger.InfoContext(ctx, "guarded navigation recovered", "kind", kind, "attempts", attempts)
	}
	return page, nil
}

func (g *Guard) visit(ctx context.Context, url string) (Page, error) {
	if err := g.machine.EnsureAuthenticated(ctx); err != nil {
		return Page{}, err
	}
	if err := g.browser.Navigate(ctx, url); err != nil {
		return Page{}, crerr.Wrapf(err, "navigate %s", url)
	}
	DismissConsent(ctx, g.browser, g.consent, g.logger)

	obs, err := g.machine.Check(ctx)
	if err != nil {
		return Page{}, err
	}
	if !obs.Signal.Authenticated {
		return Page{}, crerr.Wrapf(ErrSessionLostDuringNavigation, "landed on %s (%s)", obs.URL, obs.Signal.Reason)
	}
	return Page{URL: obs.URL, Doc: obs.Doc}, nil
}
