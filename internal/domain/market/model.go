package market

// MoveType classifies a market operation.
type MoveType string

const (
	MovePurchase MoveType = "purchase"
	MoveRelease  MoveType = "release"
	MoveTransfer MoveType = "transfer"
)

// Move is one market operation between fantasy teams.
type Move struct {
	PlayerName string   `json:"playerName"`
	FromTeam   string   `json:"fromTeam"`
	ToTeam     string   `json:"toTeam"`
	Price      float64  `json:"price"`
	MoveType   MoveType `json:"moveType"`
}
