package session

import (
	"time"

	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/league"
)

type Phase string

const (
	PhaseUnauthenticated Phase = "unauthenticated"
	PhaseAuthenticating  Phase = "authenticating"
	PhaseAuthenticated   Phase = "authenticated"
	PhaseDegraded        Phase = "degraded"
)

// State is owned by Machine. Readers get copies through Machine.State.
type State struct {
	Phase          Phase
	Authenticated  bool
	Cookies        []Cookie
	LeagueType     league.Type
	BaseURL        string
	LastCheckedURL string
	LastCheckedAt  time.Time
}

func (s State) clone() State {
	out := s
	out.Cookies = append([]Cookie(nil), s.Cookies...)
	return out
}

// Credentials live in memory for re-authentication only.
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) Empty() bool {
	return c.Username == "" || c.Password == ""
}

// String keeps credentials out of logs and fmt verbs.
func (c Credentials) String() string {
	return "Credentials{redacted}"
}

func (c Credentials) GoString() string {
	return c.String()
}
