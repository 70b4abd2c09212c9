package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/player"
	qb "github.com/riskibarqy/fantasy-league-scraper/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

var playerSelectColumns = []string{
	"id",
	"public_id",
	"league_public_id",
	"name",
	"real_club",
	"role",
	"auction_value::float8 AS auction_value",
	"performance_index::float8 AS performance_index",
	"created_at",
	"updated_at",
	"deleted_at",
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// FindByLeagueNameClub matches name and club case-insensitively. An empty club
// matches on name alone.
func (r *PlayerRepository) FindByLeagueNameClub(ctx context.Context, leagueID, name, realClub string) (player.Player, bool, error) {
	conditions := []qb.Condition{
		qb.Eq("league_public_id", leagueID),
		qb.Expr("LOWER(name) = ?", normalizeKey(name)),
		qb.IsNull("deleted_at"),
	}
	if normalizeKey(realClub) != "" {
		conditions = append(conditions, qb.Expr("LOWER(real_club) = ?", normalizeKey(realClub)))
	}

	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(conditions...).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build find player by name query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("find player by name league=%s: %w", leagueID, err)
	}

	return player.Player{
		ID:               row.PublicID,
		LeagueID:         row.LeagueID,
		Name:             row.Name,
		RealClub:         row.RealClub,
		Role:             row.Role,
		AuctionValue:     row.AuctionValue,
		PerformanceIndex: row.PerformanceIndex,
		UpdatedAt:        row.UpdatedAt,
	}, true, nil
}

func (r *PlayerRepository) UpdateValuation(ctx context.Context, playerID string, auctionValue, performanceIndex float64, updatedAt time.Time) error {
	query, args, err := qb.Update("players").
		Set("auction_value", auctionValue).
		Set("performance_index", performanceIndex).
		Set("updated_at", timeOrNow(updatedAt)).
		Where(
			qb.Eq("public_id", playerID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update player valuation query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update player valuation player=%s: %w", playerID, err)
	}
	return nil
}
