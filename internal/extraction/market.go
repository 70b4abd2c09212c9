package extraction

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/market"
)

var moveTypeKeywords = []struct {
	moveType market.MoveType
	keywords []string
}{
	{moveType: market.MovePurchase, keywords: []string{"acquist", "purchase", "buy", "asta", "auction"}},
	{moveType: market.MoveRelease, keywords: []string{"svincol", "release", "taglio", "cut"}},
	{moveType: market.MoveTransfer, keywords: []string{"scambio", "trasferiment", "transfer", "trade", "cession"}},
}

// MarketMoves reads market operations. A row needs a player and at least one
// of the two teams.
func MarketMoves(doc *goquery.Document, rules MarketRules) Result[market.Move] {
	tables := doc.Find("table")
	if tables.Length() == 0 {
		return empty[market.Move]("page has no tables")
	}

	var out []market.Move
	matched := false
	tables.Each(func(_ int, table *goquery.Selection) {
		headers := headerTexts(table)
		taken := make(map[int]bool)
		pick := func(keywords []string) int {
			idx := columnIndex(headers, keywords, taken)
			if idx >= 0 {
				taken[idx] = true
			}
			return idx
		}
		playerIdx := pick(rules.Player)
		typeIdx := pick(rules.MoveType)
		priceIdx := pick(rules.Price)
		fromIdx := pick(rules.From)
		toIdx := pick(rules.To)
		if playerIdx < 0 || (fromIdx < 0 && toIdx < 0) {
			return
		}
		matched = true

		tableRows(table).Each(func(_ int, row *goquery.Selection) {
			if isHeaderRow(row) {
				return
			}
			cells := cellTexts(rowCells(row))
			move := market.Move{
				PlayerName: cellAt(cells, playerIdx),
				FromTeam:   teamCell(cellAt(cells, fromIdx)),
				ToTeam:     teamCell(cellAt(cells, toIdx)),
			}
			if !plausibleName(move.PlayerName) || (move.FromTeam == "" && move.ToTeam == "") {
				return
			}
			if price, ok := ParseNumber(cellAt(cells, priceIdx)); ok {
				move.Price = price
			}
			move.MoveType = moveTypeFromLabel(cellAt(cells, typeIdx))
			if move.MoveType == "" {
				move.MoveType = inferMoveType(move)
			}
			out = append(out, move)
		})
	})

	if !matched {
		return malformed[market.Move]("no table with player and team columns")
	}
	if len(out) == 0 {
		return malformed[market.Move]("no market row had a player and a team")
	}
	return ok(out)
}

func teamCell(v string) string {
	switch v {
	case "-", "–", "—", "/", "n/a":
		return ""
	}
	return v
}

func moveTypeFromLabel(label string) market.MoveType {
	for _, candidate := range moveTypeKeywords {
		if ContainsAny(label, candidate.keywords) {
			return candidate.moveType
		}
	}
	return ""
}

func inferMoveType(move market.Move) market.MoveType {
	switch {
	case move.FromTeam == "":
		return market.MovePurchase
	case move.ToTeam == "":
		return market.MoveRelease
	default:
		return market.MoveTransfer
	}
}
