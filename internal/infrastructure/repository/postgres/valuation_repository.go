package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/valuation"
	qb "github.com/riskibarqy/fantasy-league-scraper/internal/platform/querybuilder"
)

type ValuationRepository struct {
	db *sqlx.DB
}

func NewValuationRepository(db *sqlx.DB) *ValuationRepository {
	return &ValuationRepository{db: db}
}

func (r *ValuationRepository) Append(ctx context.Context, item valuation.Record) error {
	if err := item.Validate(); err != nil {
		return err
	}

	query, args, err := qb.InsertModel("player_valuation_history", valuationInsertModel{
		PlayerID:   item.PlayerID,
		Value:      item.Value,
		Source:     item.Source,
		RecordedAt: timeOrNow(item.RecordedAt),
	}).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert valuation history query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert valuation history player=%s: %w", item.PlayerID, err)
	}
	return nil
}

func (r *ValuationRepository) ListByPlayer(ctx context.Context, playerID string) ([]valuation.Record, error) {
	query, args, err := qb.Select("id", "player_public_id", "value::float8 AS value", "source", "recorded_at").
		From("player_valuation_history").
		Where(qb.Eq("player_public_id", playerID)).
		OrderBy("recorded_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list valuation history query: %w", err)
	}

	var rows []valuationTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list valuation history player=%s: %w", playerID, err)
	}

	out := make([]valuation.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, valuation.Record{
			PlayerID:   row.PlayerID,
			Value:      row.Value,
			Source:     row.Source,
			RecordedAt: row.RecordedAt,
		})
	}
	return out, nil
}
