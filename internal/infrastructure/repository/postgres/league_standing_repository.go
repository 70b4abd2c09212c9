package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/leaguestanding"
	qb "github.com/riskibarqy/fantasy-league-scraper/internal/platform/querybuilder"
)

type LeagueStandingRepository struct {
	db *sqlx.DB
}

func NewLeagueStandingRepository(db *sqlx.DB) *LeagueStandingRepository {
	return &LeagueStandingRepository{db: db}
}

func (r *LeagueStandingRepository) ListByLeague(ctx context.Context, leagueID string) ([]leaguestanding.Standing, error) {
	query, args, err := qb.Select(
		"id",
		"league_public_id",
		"position",
		"team_name",
		"points::float8 AS points",
		"goals_for",
		"goals_against",
		"goal_difference",
		"scraped_at",
	).From("scraped_standings").
		Where(qb.Eq("league_public_id", leagueID)).
		OrderBy("position", "points DESC", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list scraped standings query: %w", err)
	}

	var rows []standingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list scraped standings: %w", err)
	}

	out := make([]leaguestanding.Standing, 0, len(rows))
	for _, row := range rows {
		out = append(out, leaguestanding.Standing{
			Position:       row.Position,
			TeamName:       strings.TrimSpace(row.TeamName),
			Points:         row.Points,
			GoalsFor:       row.GoalsFor,
			GoalsAgainst:   row.GoalsAgainst,
			GoalDifference: row.GoalDifference,
			ScrapedAt:      row.ScrapedAt,
		})
	}

	return out, nil
}

// ReplaceSnapshot deletes the previous snapshot and inserts rows in one transaction.
func (r *LeagueStandingRepository) ReplaceSnapshot(ctx context.Context, leagueID string, rows []leaguestanding.Standing) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace scraped standings: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deleteQuery, deleteArgs, err := qb.DeleteFrom("scraped_standings").
		Where(qb.Eq("league_public_id", leagueID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear scraped standings query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("clear scraped standings: %w", err)
	}

	now := time.Now().UTC()
	for _, item := range rows {
		scrapedAt := item.ScrapedAt
		if scrapedAt.IsZero() {
			scrapedAt = now
		}
		query, args, err := qb.InsertModel("scraped_standings", standingInsertModel{
			LeagueID:       leagueID,
			Position:       item.Position,
			TeamName:       strings.TrimSpace(item.TeamName),
			Points:         item.Points,
			GoalsFor:       item.GoalsFor,
			GoalsAgainst:   item.GoalsAgainst,
			GoalDifference: item.GoalDifference,
			ScrapedAt:      scrapedAt.UTC(),
		}).
			OnConflict("league_public_id", "team_name").
			DoUpdateExcluded("position", "points", "goals_for", "goals_against", "goal_difference", "scraped_at").
			ToSQL()
		if err != nil {
			return fmt.Errorf("build insert scraped standing query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert scraped standing team=%s: %w", item.TeamName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace scraped standings tx: %w", err)
	}
	return nil
}
