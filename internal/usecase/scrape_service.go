package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/leaguestanding"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/scraped"
	"github.com/riskibarqy/fantasy-league-scraper/internal/extraction"
	"github.com/riskibarqy/fantasy-league-scraper/internal/platform/logging"
	"github.com/riskibarqy/fantasy-league-scraper/internal/session"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/attribute"
)

// BrowserLauncher opens a fresh browser for one run.
type BrowserLauncher interface {
	Launch(ctx context.Context) (session.Browser, error)
}

type ScrapeRequest struct {
	BaseURL        string              `validate:"required,http_url"`
	LoginURL       string              `validate:"omitempty,http_url"`
	LeagueType     league.Type         `validate:"omitempty,oneof=classic extended"`
	CompetitionID  string              `validate:"omitempty,numeric"`
	Kinds          []Kind              `validate:"omitempty,dive,oneof=rosters standings votes lineups market"`
	Credentials    session.Credentials `validate:"-"`
	ManualLogin    bool
	TargetLeagueID string `validate:"omitempty,max=128"`
	// Cookies from an earlier session are tried before any login.
	Cookies []session.Cookie `validate:"-"`
}

type ScrapeService struct {
	launcher   BrowserLauncher
	syncer     *SyncService
	rules      extraction.Rules
	sessionCfg session.Config
	validate   *validator.Validate
	extractors map[Kind]extractor
	root       *logging.Logger
	logger     *logging.Logger
}

func NewScrapeService(
	launcher BrowserLauncher,
	syncer *SyncService,
	rules extraction.Rules,
	sessionCfg session.Config,
	logger *logging.Logger,
) *ScrapeService {
	if logger == nil {
		logger = logging.Default()
	}
	s := &ScrapeService{
		launcher:   launcher,
		syncer:     syncer,
		rules:      rules,
		sessionCfg: sessionCfg,
		validate:   validator.New(),
		root:       logger,
		logger:     logger.Named("scrape"),
	}
	s.extractors = s.defaultExtractors()
	return s
}

// scrapeSession is one authenticated browser shared by sequential runs.
type scrapeSession struct {
	browser session.Browser
	machine *session.Machine
	guard   *session.Guard
}

func (s *scrapeSession) close(ctx context.Context, logger *logging.Logger) {
	if err := s.browser.Close(); err != nil {
		logger.WarnContext(ctx, "close browser failed", "error", err)
	}
}

// Run scrapes the requested kinds of one competition. Authentication errors
// abort the run; every later failure is recorded on its kind.
func (s *ScrapeService) Run(ctx context.Context, req ScrapeRequest) (ScrapeResult, error) {
	ctx, span := startRunSpan(ctx, "usecase.ScrapeService.Run")
	defer span.End()

	req, err := s.normalizeRequest(ctx, req)
	if err != nil {
		return ScrapeResult{}, recordSpanError(span, err)
	}
	span.SetAttributes(requestAttributes(req)...)

	sess, err := s.openSession(ctx, req)
	if err != nil {
		return ScrapeResult{}, recordSpanError(span, err)
	}
	defer sess.close(ctx, s.logger)

	result := s.scrape(ctx, sess, req)
	return result, nil
}

// RunCompetitions scrapes several competitions one after another with a single
// authenticated session. No ids means the default competition only.
func (s *ScrapeService) RunCompetitions(ctx context.Context, req ScrapeRequest, competitionIDs []string) (CompetitionsResult, error) {
	ctx, span := startRunSpan(ctx, "usecase.ScrapeService.RunCompetitions")
	defer span.End()

	req, err := s.normalizeRequest(ctx, req)
	if err != nil {
		return CompetitionsResult{}, recordSpanError(span, err)
	}
	ids, err := s.normalizeCompetitionIDs(competitionIDs)
	if err != nil {
		return CompetitionsResult{}, recordSpanError(span, err)
	}
	if len(ids) == 0 {
		ids = []string{req.CompetitionID}
	}
	span.SetAttributes(requestAttributes(req)...)
	span.SetAttributes(attribute.StringSlice("scrape.competition_ids", ids))

	sess, err := s.openSession(ctx, req)
	if err != nil {
		return CompetitionsResult{}, recordSpanError(span, err)
	}
	defer sess.close(ctx, s.logger)

	out := CompetitionsResult{Competitions: make([]ScrapeResult, 0, len(ids))}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		runReq := req
		runReq.CompetitionID = id
		out.Competitions = append(out.Competitions, s.scrape(ctx, sess, runReq))
	}
	return out, nil
}

// ListCompetitions discovers the selectable competitions of the league.
func (s *ScrapeService) ListCompetitions(ctx context.Context, req ScrapeRequest) (CompetitionList, error) {
	ctx, span := startRunSpan(ctx, "usecase.ScrapeService.ListCompetitions")
	defer span.End()

	req, err := s.normalizeRequest(ctx, req)
	if err != nil {
		return CompetitionList{}, recordSpanError(span, err)
	}
	pageURL, err := s.routeURL(req.BaseURL, routeCompetitions, "")
	if err != nil {
		return CompetitionList{}, err
	}

	sess, err := s.openSession(ctx, req)
	if err != nil {
		return CompetitionList{}, recordSpanError(span, err)
	}
	defer sess.close(ctx, s.logger)

	page, err := sess.guard.Goto(ctx, routeCompetitions, pageURL)
	if err != nil {
		return CompetitionList{Cookies: sess.machine.State().Cookies}, recordSpanError(span, err)
	}

	found := extraction.Competitions(page.Doc, page.URL, s.rules.Competitions)
	s.logger.InfoContext(ctx, "competitions discovered", "count", found.Len(), "outcome", found.Outcome)
	return CompetitionList{
		Competitions: found.Items,
		Outcome:      found.Outcome,
		Reason:       found.Reason,
		Cookies:      sess.machine.State().Cookies,
	}, nil
}

func (s *ScrapeService) normalizeRequest(ctx context.Context, req ScrapeRequest) (ScrapeRequest, error) {
	req.BaseURL = strings.TrimRight(strings.TrimSpace(req.BaseURL), "/")
	req.LoginURL = strings.TrimSpace(req.LoginURL)
	req.CompetitionID = strings.TrimSpace(req.CompetitionID)
	req.TargetLeagueID = strings.TrimSpace(req.TargetLeagueID)

	leagueType, err := league.ParseType(string(req.LeagueType))
	if err != nil {
		return ScrapeRequest{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	req.LeagueType = leagueType

	kinds := make([]Kind, len(req.Kinds))
	for i, kind := range req.Kinds {
		kinds[i] = Kind(strings.ToLower(strings.TrimSpace(string(kind))))
	}
	req.Kinds = kinds
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return ScrapeRequest{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !req.ManualLogin && req.Credentials.Empty() && len(req.Cookies) == 0 {
		return ScrapeRequest{}, ErrCredentialsRequired
	}
	req.Kinds = orderedKinds(req.Kinds)
	return req, nil
}

func (s *ScrapeService) normalizeCompetitionIDs(ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if err := s.validate.Var(id, "numeric"); err != nil {
			return nil, fmt.Errorf("%w: competition id %q must be numeric", ErrInvalidInput, id)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// orderedKinds returns the requested kinds in navigation order. An empty
// request means every kind.
func orderedKinds(requested []Kind) []Kind {
	if len(requested) == 0 {
		return append([]Kind(nil), kindOrder...)
	}
	want := make(map[Kind]struct{}, len(requested))
	for _, kind := range requested {
		want[kind] = struct{}{}
	}
	out := make([]Kind, 0, len(want))
	for _, kind := range kindOrder {
		if _, ok := want[kind]; ok {
			out = append(out, kind)
		}
	}
	return out
}

func (s *ScrapeService) openSession(ctx context.Context, req ScrapeRequest) (*scrapeSession, error) {
	if s.launcher == nil {
		return nil, fmt.Errorf("%w: browser launcher is not configured", ErrDependencyUnavailable)
	}
	browser, err := s.launcher.Launch(ctx)
	if err != nil {
		if errors.Is(err, session.ErrInit) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", session.ErrInit, err)
	}

	cfg := s.sessionCfg
	cfg.BaseURL = req.BaseURL
	cfg.LeagueType = req.LeagueType
	cfg.LoginURL = loginURLFor(req.BaseURL, req.LoginURL, cfg.LoginURL)

	machine := session.NewMachine(browser, cfg, s.rules, s.root)
	sess := &scrapeSession{
		browser: browser,
		machine: machine,
		guard:   session.NewGuard(browser, machine, s.rules.Consent, s.root),
	}

	if err := s.authenticate(ctx, sess, req); err != nil {
		sess.close(ctx, s.logger)
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return sess, nil
}

func (s *ScrapeService) authenticate(ctx context.Context, sess *scrapeSession, req ScrapeRequest) error {
	if len(req.Cookies) > 0 {
		ok, err := sess.machine.Resume(ctx, req.Cookies)
		if err != nil {
			return err
		}
		if ok {
			s.logger.InfoContext(ctx, "session resumed from cookies")
			return nil
		}
	}
	if req.ManualLogin {
		return sess.machine.WaitForManualLogin(ctx)
	}
	if req.Credentials.Empty() {
		return fmt.Errorf("%w: stored cookies expired and no credentials were given", session.ErrNotAuthenticated)
	}
	return sess.machine.Login(ctx, req.Credentials)
}

func (s *ScrapeService) scrape(ctx context.Context, sess *scrapeSession, req ScrapeRequest) ScrapeResult {
	result := ScrapeResult{CompetitionID: req.CompetitionID}

	for _, kind := range req.Kinds {
		if err := ctx.Err(); err != nil {
			result.setKind(kind, kindFromError(err))
			continue
		}
		result.setKind(kind, s.scrapeKind(ctx, sess, req, kind, &result))
	}
	result.summarize()

	if req.TargetLeagueID != "" {
		result.Database = s.persist(ctx, req, &result)
	}
	result.Cookies = sess.machine.State().Cookies

	s.logger.InfoContext(ctx, "scrape finished",
		"competition_id", req.CompetitionID,
		"kinds", len(req.Kinds),
		"teams_found", result.Summary.TeamsFound,
		"players_found", result.Summary.PlayersFound,
	)
	return result
}

func (s *ScrapeService) scrapeKind(ctx context.Context, sess *scrapeSession, req ScrapeRequest, kind Kind, result *ScrapeResult) KindResult {
	pageURL, err := s.routeURL(req.BaseURL, string(kind), req.CompetitionID)
	if err != nil {
		return kindFromError(err)
	}
	page, err := sess.guard.Goto(ctx, string(kind), pageURL)
	if err != nil {
		return kindFromError(err)
	}

	var (
		out     KindResult
		catcher panics.Catcher
	)
	extract, ok := s.extractors[kind]
	if !ok {
		return kindFromError(fmt.Errorf("unsupported kind %q", kind))
	}
	catcher.Try(func() {
		out = extract(page.Doc, req.LeagueType, result)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		s.logger.ErrorContext(ctx, "extractor panicked", "kind", kind, "panic", recovered.String())
		return kindFromError(fmt.Errorf("extract %s: %w", kind, recovered.AsError()))
	}

	if out.Failed() {
		s.logger.WarnContext(ctx, "page not recognized", "kind", kind, "url", page.URL, "reason", out.Reason)
	} else {
		s.logger.InfoContext(ctx, "page extracted", "kind", kind, "count", out.Count, "outcome", out.Outcome)
	}
	return out
}

// extractor reads one page kind. Extractors that feed persistence stash their
// typed items on result.
type extractor func(doc *goquery.Document, leagueType league.Type, result *ScrapeResult) KindResult

func (s *ScrapeService) defaultExtractors() map[Kind]extractor {
	return map[Kind]extractor{
		KindRosters: func(doc *goquery.Document, leagueType league.Type, result *ScrapeResult) KindResult {
			found := extraction.Rosters(doc, leagueType, s.rules.Roster)
			if found.Outcome == extraction.OutcomeOK {
				result.rosters = found.Items
			}
			return kindFromResult(found, KindRosters)
		},
		KindStandings: func(doc *goquery.Document, _ league.Type, result *ScrapeResult) KindResult {
			found := extraction.Standings(doc, s.rules.Standings)
			if found.Outcome == extraction.OutcomeOK {
				result.standings = found.Items
			}
			return kindFromResult(found, KindStandings)
		},
		KindVotes: func(doc *goquery.Document, _ league.Type, _ *ScrapeResult) KindResult {
			return kindFromResult(extraction.Votes(doc, s.rules.Votes), KindVotes)
		},
		KindLineups: func(doc *goquery.Document, _ league.Type, _ *ScrapeResult) KindResult {
			return kindFromResult(extraction.Lineups(doc, s.rules.Lineups), KindLineups)
		},
		KindMarket: func(doc *goquery.Document, _ league.Type, _ *ScrapeResult) KindResult {
			return kindFromResult(extraction.MarketMoves(doc, s.rules.Market), KindMarket)
		},
	}
}

// routeURL joins the base URL with the route of kind and narrows it to the
// competition when one is selected.
func (s *ScrapeService) routeURL(baseURL, kind, competitionID string) (string, error) {
	route, ok := s.rules.Route(kind)
	if !ok {
		return "", fmt.Errorf("no route configured for %s", kind)
	}
	base, err := url.Parse(baseURL + "/")
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	ref, err := url.Parse(strings.TrimLeft(route, "/"))
	if err != nil {
		return "", fmt.Errorf("parse route %q: %w", route, err)
	}
	target := base.ResolveReference(ref).String()
	if competitionID != "" {
		target = extraction.WithCompetition(target, competitionID)
	}
	return target, nil
}

func (s *ScrapeService) persist(ctx context.Context, req ScrapeRequest, result *ScrapeResult) *DatabaseReport {
	report := &DatabaseReport{Kinds: make(map[Kind]string, len(req.Kinds))}
	if s.syncer == nil {
		report.Errors = append(report.Errors, fmt.Sprintf("%v: sync service is not configured", ErrDependencyUnavailable))
		for _, kind := range req.Kinds {
			report.Kinds[kind] = persistSkipped
		}
		return report
	}

	for _, kind := range req.Kinds {
		kr := result.Kind(kind)
		switch {
		case kr == nil || kr.Failed():
			report.Kinds[kind] = persistSkipped
		case kind == KindRosters:
			report.Kinds[kind] = s.persistRosters(ctx, req.TargetLeagueID, result.rosters, report)
		case kind == KindStandings:
			report.Kinds[kind] = s.persistStandings(ctx, req.TargetLeagueID, result.standings, report)
		default:
			report.Kinds[kind] = persistNotPersisted
		}
	}
	return report
}

func (s *ScrapeService) persistRosters(ctx context.Context, leagueID string, rosters []scraped.Roster, report *DatabaseReport) string {
	if len(rosters) == 0 {
		return persistSkipped
	}

	saved, err := s.syncer.Persist(ctx, leagueID, rosters)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		return persistFailed
	}
	report.TeamsSaved = saved.TeamsSaved
	report.PlayersSaved = saved.PlayersSaved
	report.Errors = append(report.Errors, saved.Errors...)

	rows := make([]scraped.PlayerRow, 0)
	for _, roster := range rosters {
		rows = append(rows, roster.Players...)
	}
	valuationReport, err := s.syncer.SyncValuationToPrimary(ctx, leagueID, rows)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
	} else {
		report.Valuation = &valuationReport
	}

	if saved.Failed > 0 && saved.TeamsSaved == 0 {
		return persistFailed
	}
	return persistSaved
}

func (s *ScrapeService) persistStandings(ctx context.Context, leagueID string, entries []leaguestanding.Standing, report *DatabaseReport) string {
	if len(entries) == 0 {
		return persistSkipped
	}
	saved, err := s.syncer.ReplaceStandings(ctx, leagueID, entries)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		return persistFailed
	}
	report.StandingsSaved = saved
	return persistSaved
}

// loginURLFor prefers the request login URL. The configured one only applies
// when it lives on the same host as the base URL; otherwise the session
// falls back to <base>/login.
func loginURLFor(baseURL, requested, configured string) string {
	if requested != "" {
		return requested
	}
	if configured == "" {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	login, err := url.Parse(configured)
	if err != nil || !strings.EqualFold(login.Host, base.Host) {
		return ""
	}
	return configured
}
