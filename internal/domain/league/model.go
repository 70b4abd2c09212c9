package league

import (
	"fmt"
	"strings"
)

// Type selects the source ruleset of a league on the scraped site.
type Type string

const (
	TypeClassic  Type = "classic"
	TypeExtended Type = "extended"
)

// ParseType accepts "classic", "extended" and the "mantra" alias. Empty means classic.
func ParseType(raw string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(TypeClassic):
		return TypeClassic, nil
	case string(TypeExtended), "mantra":
		return TypeExtended, nil
	default:
		return "", fmt.Errorf("invalid league type %q: valid values are %s, %s", raw, TypeClassic, TypeExtended)
	}
}

func (t Type) IsExtended() bool {
	return t == TypeExtended
}

// Competition is a selectable sub-tournament inside a league on the source site.
type Competition struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SourceURL string `json:"sourceUrl,omitempty"`
}

func (c Competition) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("competition id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("competition name is required")
	}

	return nil
}
