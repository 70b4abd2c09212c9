package usecase

import (
	"github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/leaguestanding"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/scraped"
	"github.com/riskibarqy/fantasy-league-scraper/internal/extraction"
	"github.com/riskibarqy/fantasy-league-scraper/internal/session"
)

// Kind is a scrapeable page kind.
type Kind string

const (
	KindRosters   Kind = "rosters"
	KindStandings Kind = "standings"
	KindVotes     Kind = "votes"
	KindLineups   Kind = "lineups"
	KindMarket    Kind = "market"

	routeCompetitions = "competitions"
)

// kindOrder is the fixed navigation order of a run.
var kindOrder = []Kind{KindRosters, KindStandings, KindVotes, KindLineups, KindMarket}

// KindResult is the outcome of one page kind. It encodes as the entity list,
// as {"items": [], "empty": true} when the page had no data, or as
// {"error": "..."} when scraping failed.
type KindResult struct {
	Items   any
	Count   int
	Outcome extraction.Outcome
	Reason  string
	Err     string
}

func (k KindResult) Failed() bool {
	return k.Err != ""
}

func (k KindResult) Empty() bool {
	return !k.Failed() && k.Outcome == extraction.OutcomeEmpty
}

func (k KindResult) MarshalJSON() ([]byte, error) {
	switch {
	case k.Failed():
		return sonic.ConfigDefault.Marshal(struct {
			Error string `json:"error"`
		}{Error: k.Err})
	case k.Empty():
		return sonic.ConfigDefault.Marshal(struct {
			Items  []any  `json:"items"`
			Empty  bool   `json:"empty"`
			Reason string `json:"reason,omitempty"`
		}{Items: []any{}, Empty: true, Reason: k.Reason})
	default:
		if k.Items == nil {
			return []byte("[]"), nil
		}
		return sonic.ConfigDefault.Marshal(k.Items)
	}
}

func kindFromResult[T any](r extraction.Result[T], kind Kind) KindResult {
	if r.Outcome == extraction.OutcomeMalformed {
		reason := r.Reason
		if reason == "" {
			reason = "page layout not recognized"
		}
		return KindResult{Outcome: r.Outcome, Reason: r.Reason, Err: "no " + string(kind) + " recognized: " + reason}
	}
	return KindResult{Items: r.Items, Count: r.Len(), Outcome: r.Outcome, Reason: r.Reason}
}

func kindFromError(err error) KindResult {
	return KindResult{Err: err.Error()}
}

type Summary struct {
	TeamsFound   int `json:"teamsFound"`
	PlayersFound int `json:"playersFound"`
}

// Persistence outcomes per kind in DatabaseReport.Kinds.
const (
	persistSaved        = "saved"
	persistFailed       = "failed"
	persistSkipped      = "skipped"
	persistNotPersisted = "not_persisted"
)

type DatabaseReport struct {
	TeamsSaved     int              `json:"teamsSaved"`
	PlayersSaved   int              `json:"playersSaved"`
	StandingsSaved int              `json:"standingsSaved"`
	Valuation      *ValuationReport `json:"valuation,omitempty"`
	Kinds          map[Kind]string  `json:"kinds"`
	Errors         []string         `json:"errors,omitempty"`
}

type ScrapeResult struct {
	CompetitionID string          `json:"competitionId,omitempty"`
	Rosters       *KindResult     `json:"rosters,omitempty"`
	Standings     *KindResult     `json:"standings,omitempty"`
	Votes         *KindResult     `json:"votes,omitempty"`
	Lineups       *KindResult     `json:"lineups,omitempty"`
	Market        *KindResult     `json:"market,omitempty"`
	Summary       Summary         `json:"summary"`
	Database      *DatabaseReport `json:"database,omitempty"`

	// Cookies of the session after the run, for the cookie jar. Never encoded.
	Cookies []session.Cookie `json:"-"`

	rosters   []scraped.Roster
	standings []leaguestanding.Standing
}

func (r *ScrapeResult) Kind(kind Kind) *KindResult {
	switch kind {
	case KindRosters:
		return r.Rosters
	case KindStandings:
		return r.Standings
	case KindVotes:
		return r.Votes
	case KindLineups:
		return r.Lineups
	case KindMarket:
		return r.Market
	default:
		return nil
	}
}

func (r *ScrapeResult) setKind(kind Kind, result KindResult) {
	switch kind {
	case KindRosters:
		r.Rosters = &result
	case KindStandings:
		r.Standings = &result
	case KindVotes:
		r.Votes = &result
	case KindLineups:
		r.Lineups = &result
	case KindMarket:
		r.Market = &result
	}
}

func (r *ScrapeResult) summarize() {
	r.Summary = Summary{TeamsFound: len(r.rosters)}
	for _, roster := range r.rosters {
		r.Summary.PlayersFound += len(roster.Players)
	}
}

// CompetitionList is the discovery result. An empty list means the league has
// a single default competition.
type CompetitionList struct {
	Competitions []league.Competition `json:"competitions"`
	Outcome      extraction.Outcome   `json:"outcome"`
	Reason       string               `json:"reason,omitempty"`

	Cookies []session.Cookie `json:"-"`
}

type CompetitionsResult struct {
	Competitions []ScrapeResult `json:"competitions"`
}
