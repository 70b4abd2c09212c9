package lineup

// Lineup is the formation a fantasy team fielded for a matchday.
type Lineup struct {
	TeamName  string   `json:"teamName"`
	Formation string   `json:"formation"`
	Starters  []string `json:"starters"`
	Bench     []string `json:"bench"`
}
