package vote

// Vote is a player's score for one matchday.
type Vote struct {
	PlayerName string  `json:"playerName"`
	TeamName   string  `json:"teamName"`
	Score      float64 `json:"score"`
	Matchday   int     `json:"matchday"`
}
