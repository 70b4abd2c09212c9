package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bytedance/sonic"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-league-scraper/internal/platform/logging"
	"github.com/riskibarqy/fantasy-league-scraper/internal/session"
)

var _ session.Browser = (*Chrome)(nil)

// Chrome is a session.Browser backed by one chromedp tab in its own browser
// process.
type Chrome struct {
	cfg    Config
	logger *logging.Logger

	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	tabCtx      context.Context
	cancelTab   context.CancelFunc

	done      chan struct{}
	doneOnce  sync.Once
	closeOnce sync.Once
}

// Open starts the browser and verifies it with a probe navigation. Every
// failure wraps session.ErrInit.
func Open(ctx context.Context, cfg Config, logger *logging.Logger) (*Chrome, error) {
	if logger == nil {
		logger = logging.Default()
	}
	cfg = cfg.withDefaults()

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("lang", cfg.Locale),
		chromedp.WindowSize(cfg.ViewportWidth, cfg.ViewportHeight),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}

	// The browser outlives individual calls; callers cancel through per-call contexts.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithErrorf(func(format string, args ...any) {
		logger.Debug("chromedp error", "detail", fmt.Sprintf(format, args...))
	}))

	c := &Chrome{
		cfg:         cfg,
		logger:      logger.Named("browser"),
		allocCtx:    allocCtx,
		cancelAlloc: cancelAlloc,
		tabCtx:      tabCtx,
		cancelTab:   cancelTab,
		done:        make(chan struct{}),
	}

	// The first Run allocates the browser and binds it to tabCtx.
	if err := chromedp.Run(tabCtx); err != nil {
		_ = c.Close()
		return nil, crerr.Wrapf(session.ErrInit, "launch chrome: %v", err)
	}
	if err := c.run(ctx, cfg.NavigationTimeout, c.setupTasks()...); err != nil {
		_ = c.Close()
		return nil, crerr.Wrapf(session.ErrInit, "start chrome: %v", err)
	}
	go func() {
		<-tabCtx.Done()
		c.markDone()
	}()

	c.logger.InfoContext(ctx, "browser ready",
		"headless", cfg.Headless,
		"viewport", fmt.Sprintf("%dx%d", cfg.ViewportWidth, cfg.ViewportHeight),
		"locale", cfg.Locale,
	)
	return c, nil
}

func (c *Chrome) setupTasks() []chromedp.Action {
	tasks := []chromedp.Action{
		chromedp.ActionFunc(func(ctx context.Context) error {
			if err := network.Enable().Do(ctx); err != nil {
				return err
			}
			return network.SetExtraHTTPHeaders(network.Headers{
				"Accept-Language": acceptLanguage(c.cfg.Locale),
			}).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetAutomationOverride(false).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetDeviceMetricsOverride(int64(c.cfg.ViewportWidth), int64(c.cfg.ViewportHeight), 1, false).Do(ctx)
		}),
	}
	if c.cfg.UserAgent != "" {
		tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetUserAgentOverride(c.cfg.UserAgent).WithAcceptLanguage(acceptLanguage(c.cfg.Locale)).Do(ctx)
		}))
	}
	return append(tasks, chromedp.Navigate("about:blank"))
}

// run executes actions on the tab bounded by timeout and by the caller's ctx.
// A cancelled call never cancels the tab itself.
func (c *Chrome) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	select {
	case <-c.done:
		return session.ErrSessionClosed
	default:
	}

	callCtx, cancel := context.WithTimeout(c.tabCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(callCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (c *Chrome) Navigate(ctx context.Context, rawURL string) error {
	err := c.run(ctx, c.cfg.NavigationTimeout,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(waitForReadyState),
	)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", rawURL, err)
	}
	return nil
}

func waitForReadyState(ctx context.Context) error {
	ticker := time.NewTicker(readyStatePollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		var state string
		if err := chromedp.Evaluate(readyStateScript, &state, chromedp.EvalAsValue).Do(ctx); err != nil {
			lastErr = err
		} else if strings.EqualFold(strings.TrimSpace(state), "complete") {
			return nil
		}

		select {
		case <-ctx.Done():
			if lastErr != nil {
				return lastErr
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Chrome) CurrentURL(ctx context.Context) (string, error) {
	var location string
	if err := c.run(ctx, c.cfg.EvalTimeout, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return location, nil
}

func (c *Chrome) Snapshot(ctx context.Context) (*goquery.Document, error) {
	var location, html string
	err := c.run(ctx, c.cfg.EvalTimeout,
		chromedp.Location(&location),
		chromedp.Evaluate(outerHTMLScript, &html, chromedp.EvalAsValue),
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot dom: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse dom: %w", err)
	}
	if parsed, err := url.Parse(location); err == nil {
		doc.Url = parsed
	}
	return doc, nil
}

// Evaluate calls fn with args encoded as JSON. A nil out discards the result.
func (c *Chrome) Evaluate(ctx context.Context, fn string, out any, args ...any) error {
	if args == nil {
		args = []any{}
	}
	encoded, err := sonic.ConfigDefault.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode evaluate args: %w", err)
	}
	expression := fmt.Sprintf("(() => { const r = (%s)(...%s); return r === undefined ? null : r; })()", fn, encoded)

	if out == nil {
		var discard []byte
		out = &discard
	}
	if err := c.run(ctx, c.cfg.EvalTimeout, chromedp.Evaluate(expression, out)); err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	return nil
}

func (c *Chrome) FindElements(ctx context.Context, selector string) ([]session.Element, error) {
	var elements []session.Element
	if err := c.Evaluate(ctx, findElementsScript, &elements, selector); err != nil {
		return nil, fmt.Errorf("find %q: %w", selector, err)
	}
	return elements, nil
}

func (c *Chrome) Fill(ctx context.Context, selector, value string) error {
	err := c.run(ctx, c.cfg.EvalTimeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SetValue(selector, "", chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("fill %s: %w", selector, err)
	}
	return nil
}

func (c *Chrome) Click(ctx context.Context, selector string) error {
	if err := c.run(ctx, c.cfg.EvalTimeout, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

func (c *Chrome) Cookies(ctx context.Context) ([]session.Cookie, error) {
	var raw []*network.Cookie
	err := c.run(ctx, c.cfg.EvalTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		raw, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}

	cookies := make([]session.Cookie, 0, len(raw))
	for _, rc := range raw {
		cookies = append(cookies, fromNetworkCookie(rc))
	}
	return cookies, nil
}

func (c *Chrome) SetCookies(ctx context.Context, cookies []session.Cookie) error {
	now := time.Now()
	failed := 0
	err := c.run(ctx, c.cfg.EvalTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, cookie := range cookies {
			if err := setCookieAction(cookie, now).Do(ctx); err != nil {
				failed++
				c.logger.DebugContext(ctx, "set cookie failed", "name", cookie.Name, "domain", cookie.Domain, "error", err)
			}
		}
		return nil
	}))
	if err != nil {
		return fmt.Errorf("set cookies: %w", err)
	}
	if failed == len(cookies) && failed > 0 {
		return fmt.Errorf("set cookies: all %d cookies rejected", failed)
	}
	return nil
}

func setCookieAction(cookie session.Cookie, now time.Time) *network.SetCookieParams {
	params := network.SetCookie(cookie.Name, cookie.Value).
		WithDomain(strings.TrimPrefix(cookie.Domain, ".")).
		WithSecure(cookie.Secure).
		WithHTTPOnly(cookie.HTTPOnly)
	if cookie.Path != "" {
		params = params.WithPath(cookie.Path)
	}
	if sameSite, ok := sameSiteValue(cookie.SameSite); ok {
		params = params.WithSameSite(sameSite)
	}
	if !cookie.Expires.IsZero() && cookie.Expires.After(now) {
		expires := cdp.TimeSinceEpoch(cookie.Expires)
		params = params.WithExpires(&expires)
	}
	return params
}

func sameSiteValue(raw string) (network.CookieSameSite, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "strict":
		return network.CookieSameSiteStrict, true
	case "lax":
		return network.CookieSameSiteLax, true
	case "none":
		return network.CookieSameSiteNone, true
	default:
		return "", false
	}
}

func fromNetworkCookie(rc *network.Cookie) session.Cookie {
	out := session.Cookie{
		Name:     rc.Name,
		Value:    rc.Value,
		Domain:   rc.Domain,
		Path:     rc.Path,
		Secure:   rc.Secure,
		HTTPOnly: rc.HTTPOnly,
		SameSite: string(rc.SameSite),
	}
	// Session cookies report -1.
	if !rc.Session && rc.Expires > 0 {
		sec := int64(rc.Expires)
		nsec := int64((rc.Expires - float64(sec)) * float64(time.Second))
		out.Expires = time.Unix(sec, nsec).UTC()
	}
	return out
}

func (c *Chrome) Done() <-chan struct{} {
	return c.done
}

// Close shuts the tab and the browser process down. It is safe to call more
// than once and from error paths.
func (c *Chrome) Close() error {
	c.closeOnce.Do(func() {
		c.cancelTab()
		c.cancelAlloc()
		c.markDone()
		c.logger.Info("browser closed")
	})
	return nil
}

func (c *Chrome) markDone() {
	c.doneOnce.Do(func() { close(c.done) })
}
