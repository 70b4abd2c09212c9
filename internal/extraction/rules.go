package extraction

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules holds every keyword dictionary, selector list and route the
// heuristics rely on. Lists loaded from a file replace the defaults per key.
type Rules struct {
	Auth         AuthRules         `yaml:"auth"`
	Consent      ConsentRules      `yaml:"consent"`
	Login        LoginRules        `yaml:"login"`
	Roster       RosterRules       `yaml:"roster"`
	Standings    StandingsRules    `yaml:"standings"`
	Votes        VotesRules        `yaml:"votes"`
	Lineups      LineupRules       `yaml:"lineups"`
	Market       MarketRules       `yaml:"market"`
	Competitions CompetitionRules  `yaml:"competitions"`
	Routes       map[string]string `yaml:"routes"`
}

type AuthRules struct {
	LoginPaths       []string `yaml:"login_paths"`
	CaptchaSelectors []string `yaml:"captcha_selectors"`
	LoginKeywords    []string `yaml:"login_keywords"`
	LogoutKeywords   []string `yaml:"logout_keywords"`
	ProtectedPaths   []string `yaml:"protected_paths"`
}

type ConsentRules struct {
	ClickableSelector string   `yaml:"clickable_selector"`
	Keywords          []string `yaml:"keywords"`
	MaxTextLength     int      `yaml:"max_text_length"`
}

type LoginRules struct {
	UsernameSelectors []string `yaml:"username_selectors"`
	PasswordSelectors []string `yaml:"password_selectors"`
	SubmitSelectors   []string `yaml:"submit_selectors"`
}

type RosterRules struct {
	TableKeywords  []string `yaml:"table_keywords"`
	TeamKeywords   []string `yaml:"team_keywords"`
	HeaderKeywords []string `yaml:"header_keywords"`
	LinkKeywords   []string `yaml:"link_keywords"`
}

type StandingsRules struct {
	Position       []string `yaml:"position"`
	Team           []string `yaml:"team"`
	Points         []string `yaml:"points"`
	GoalsFor       []string `yaml:"goals_for"`
	GoalsAgainst   []string `yaml:"goals_against"`
	GoalDifference []string `yaml:"goal_difference"`
}

type VotesRules struct {
	Player          []string `yaml:"player"`
	Team            []string `yaml:"team"`
	Score           []string `yaml:"score"`
	MatchdayPattern string   `yaml:"matchday_pattern"`
}

type LineupRules struct {
	ContainerSelectors []string `yaml:"container_selectors"`
	TeamNameSelectors  []string `yaml:"team_name_selectors"`
	StarterSelectors   []string `yaml:"starter_selectors"`
	BenchSelectors     []string `yaml:"bench_selectors"`
	PlayerSelector     string   `yaml:"player_selector"`
	FormationPattern   string   `yaml:"formation_pattern"`
}

type MarketRules struct {
	Player   []string `yaml:"player"`
	From     []string `yaml:"from"`
	To       []string `yaml:"to"`
	Price    []string `yaml:"price"`
	MoveType []string `yaml:"move_type"`
}

type CompetitionRules struct {
	SelectSelectors []string `yaml:"select_selectors"`
	LinkSelectors   []string `yaml:"link_selectors"`
	IDParams        []string `yaml:"id_params"`
	AdminKeywords   []string `yaml:"admin_keywords"`
}

// DefaultRules returns the built-in dictionaries for the Italian/English site family.
func DefaultRules() Rules {
	return Rules{
		Auth: AuthRules{
			LoginPaths:       []string{"login", "accedi", "signin", "sign-in", "auth"},
			CaptchaSelectors: []string{".g-recaptcha", "iframe[src*=captcha]", "#captcha", "[class*=hcaptcha]"},
			LoginKeywords:    []string{"accedi", "login", "log in", "sign in", "signin", "entra"},
			LogoutKeywords:   []string{"logout", "log out", "esci", "disconnetti", "sign out", "signout", "profilo", "profile", "il mio account", "my account"},
			ProtectedPaths:   []string{"dashboard", "area-riservata", "lega", "league", "rose", "classifica", "mercato", "formazioni", "voti", "account", "competizioni"},
		},
		Consent: ConsentRules{
			ClickableSelector: "button, a, [role=button], input[type=button], input[type=submit]",
			Keywords: []string{
				"accept", "accetta", "accetto", "acconsento", "agree", "i agree", "consent",
				"continue", "continua", "close", "chiudi", "ok", "got it", "manage", "gestisci",
			},
			MaxTextLength: 40,
		},
		Login: LoginRules{
			UsernameSelectors: []string{
				`input[name="username"]`,
				`input[name="email"]`,
				`input[type="email"]`,
				`input[autocomplete="username"]`,
				`input[id*="user"]`,
				`input[name*="user"]`,
			},
			PasswordSelectors: []string{
				`input[type="password"]`,
				`input[name="password"]`,
			},
			SubmitSelectors: []string{
				`button[type="submit"]`,
				`input[type="submit"]`,
				`form button`,
			},
		},
		Roster: RosterRules{
			TableKeywords:  []string{"rosa", "rose", "giocatori", "calciatori", "squadra", "ruolo", "quotazione", "qa", "qi", "fvm", "roster", "team", "player", "role"},
			TeamKeywords:   []string{"squadra", "fantasquadra", "team", "allenatore", "coach"},
			HeaderKeywords: []string{"ruolo", "nome", "calciatore", "giocatore", "role", "name", "player", "qa", "qi"},
			LinkKeywords:   []string{"rosa", "rose", "squadra", "team", "roster"},
		},
		Standings: StandingsRules{
			Position:       []string{"#", "pos", "pos.", "posizione", "position"},
			Team:           []string{"squadra", "team", "nome", "fantasquadra"},
			Points:         []string{"pt", "pt.", "pts", "punti", "points"},
			GoalsFor:       []string{"gf", "gol fatti", "goals for"},
			GoalsAgainst:   []string{"gs", "ga", "gol subiti", "goals against"},
			GoalDifference: []string{"dr", "diff", "gd", "+/-", "differenza"},
		},
		Votes: VotesRules{
			Player:          []string{"giocatore", "calciatore", "nome", "player"},
			Team:            []string{"squadra", "team", "club"},
			Score:           []string{"voto", "fv", "fantavoto", "vote", "score", "rating"},
			MatchdayPattern: `(?i)(?:giornata|matchday|turno)\s*(\d+)|(\d+)\s*[ªa°]?\s*giornata`,
		},
		Lineups: LineupRules{
			ContainerSelectors: []string{".lineup", ".formation", ".formazione", "[class*=lineup]", "[class*=formazion]"},
			TeamNameSelectors:  []string{"[class*=team-name]", "[class*=teamname]", ".team", "h2", "h3", "h4"},
			StarterSelectors:   []string{"[class*=titolar]", "[class*=starter]", ".starters"},
			BenchSelectors:     []string{"[class*=panchin]", "[class*=bench]", "[class*=riserv]"},
			PlayerSelector:     "li, [class*=player]",
			FormationPattern:   `\b\d-\d-\d(?:-\d)?\b`,
		},
		Market: MarketRules{
			Player:   []string{"giocatore", "calciatore", "player"},
			From:     []string{"da", "from", "cedente", "venditore", "seller"},
			To:       []string{"a", "to", "acquirente", "compratore", "buyer"},
			Price:    []string{"prezzo", "price", "crediti", "costo", "credits"},
			MoveType: []string{"tipo", "type", "operazione", "movimento"},
		},
		Competitions: CompetitionRules{
			SelectSelectors: []string{
				"select[name*=competiz]",
				"select[id*=competiz]",
				"select[name*=competition]",
				"select[id*=competition]",
				"select[name*=torneo]",
				"select.competitions",
			},
			LinkSelectors: []string{
				"[class*=competiz] .dropdown-menu a",
				"[class*=competition] .dropdown-menu a",
				"[class*=competiz] a",
				"[class*=competition] a",
			},
			IDParams:      []string{"id", "competitionId", "idCompetizione"},
			AdminKeywords: []string{"impostazioni", "settings", "crea", "create", "nuova", "new", "ordina", "riordina", "reorder", "gestisci", "manage", "modifica", "edit"},
		},
		Routes: map[string]string{
			"rosters":      "/rose",
			"standings":    "/classifica",
			"votes":        "/voti",
			"lineups":      "/formazioni",
			"market":       "/mercato",
			"competitions": "/competizioni",
		},
	}
}

// LoadRules reads a YAML override file on top of DefaultRules. An empty path
// returns the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	path = strings.TrimSpace(path)
	if path == "" {
		return rules, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file %s: %w", path, err)
	}
	if err := ParseRules(raw, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	return rules, nil
}

// ParseRules decodes raw YAML into rules, keeping values for absent keys.
func ParseRules(raw []byte, rules *Rules) error {
	if err := yaml.Unmarshal(raw, rules); err != nil {
		return err
	}
	if rules.Consent.MaxTextLength <= 0 {
		rules.Consent.MaxTextLength = DefaultRules().Consent.MaxTextLength
	}
	return nil
}

// Route returns the path of a page kind.
func (r Rules) Route(kind string) (string, bool) {
	path, ok := r.Routes[kind]
	return path, ok && strings.TrimSpace(path) != ""
}
