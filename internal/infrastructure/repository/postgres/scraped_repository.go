package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/scraped"
	idgen "github.com/riskibarqy/fantasy-league-scraper/internal/platform/id"
	qb "github.com/riskibarqy/fantasy-league-scraper/internal/platform/querybuilder"
)

type ScrapedRepository struct {
	db  *sqlx.DB
	ids idgen.Generator
}

var scrapedTeamSelectColumns = []string{
	"id",
	"public_id",
	"league_public_id",
	"name",
	"source_url",
	"last_seen_at",
	"created_at",
	"updated_at",
}

var scrapedPlayerSelectColumns = []string{
	"id",
	"public_id",
	"league_public_id",
	"team_public_id",
	"name",
	"role",
	"real_club",
	"auction_value::float8 AS auction_value",
	"performance_index::float8 AS performance_index",
	"market_form",
	"last_seen_at",
	"created_at",
	"updated_at",
}

func NewScrapedRepository(db *sqlx.DB, ids idgen.Generator) *ScrapedRepository {
	return &ScrapedRepository{db: db, ids: ids}
}

func (r *ScrapedRepository) FindTeam(ctx context.Context, leagueID, name string) (scraped.Team, bool, error) {
	query, args, err := qb.Select(scrapedTeamSelectColumns...).From("scraped_teams").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("name", name),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return scraped.Team{}, false, fmt.Errorf("build find scraped team query: %w", err)
	}

	var row scrapedTeamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return scraped.Team{}, false, nil
		}
		return scraped.Team{}, false, fmt.Errorf("find scraped team league=%s: %w", leagueID, err)
	}

	return scrapedTeamFromRow(row), true, nil
}

// CreateTeam inserts the team. A concurrent insert of the same (league, name)
// is folded into an update so the last writer wins.
func (r *ScrapedRepository) CreateTeam(ctx context.Context, item scraped.Team) (scraped.Team, error) {
	if err := item.Validate(); err != nil {
		return scraped.Team{}, err
	}

	publicID, err := r.ids.NewID()
	if err != nil {
		return scraped.Team{}, fmt.Errorf("generate scraped team id: %w", err)
	}

	insertModel := scrapedTeamInsertModel{
		PublicID:   publicID,
		LeagueID:   item.LeagueID,
		Name:       item.Name,
		SourceURL:  item.SourceURL,
		LastSeenAt: timeOrNow(item.LastSeenAt),
	}
	query, args, err := qb.InsertModel("scraped_teams", insertModel).
		OnConflict("league_public_id", "name").
		DoUpdateExcluded("source_url", "last_seen_at").
		DoUpdateExpr("updated_at", "NOW()").
		Returning("public_id", "created_at").
		ToSQL()
	if err != nil {
		return scraped.Team{}, fmt.Errorf("build insert scraped team query: %w", err)
	}

	var out insertReturningModel
	if err := r.db.GetContext(ctx, &out, query, args...); err != nil {
		return scraped.Team{}, fmt.Errorf("insert scraped team league=%s: %w", item.LeagueID, err)
	}

	item.ID = out.PublicID
	item.CreatedAt = out.CreatedAt
	item.LastSeenAt = insertModel.LastSeenAt
	return item, nil
}

func (r *ScrapedRepository) TouchTeam(ctx context.Context, teamID string, seenAt time.Time) error {
	query, args, err := qb.Update("scraped_teams").
		Set("last_seen_at", timeOrNow(seenAt)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("public_id", teamID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build touch scraped team query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("touch scraped team=%s: %w", teamID, err)
	}
	return nil
}

func (r *ScrapedRepository) FindPlayer(ctx context.Context, leagueID, teamID, name string) (scraped.Player, bool, error) {
	query, args, err := qb.Select(scrapedPlayerSelectColumns...).From("scraped_players").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("team_public_id", teamID),
			qb.Eq("name", name),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return scraped.Player{}, false, fmt.Errorf("build find scraped player query: %w", err)
	}

	var row scrapedPlayerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return scraped.Player{}, false, nil
		}
		return scraped.Player{}, false, fmt.Errorf("find scraped player team=%s: %w", teamID, err)
	}

	return scrapedPlayerFromRow(row), true, nil
}

func (r *ScrapedRepository) CreatePlayer(ctx context.Context, item scraped.Player) (scraped.Player, error) {
	if err := item.Validate(); err != nil {
		return scraped.Player{}, err
	}

	publicID, err := r.ids.NewID()
	if err != nil {
		return scraped.Player{}, fmt.Errorf("generate scraped player id: %w", err)
	}

	insertModel := scrapedPlayerInsertModel{
		PublicID:         publicID,
		LeagueID:         item.LeagueID,
		TeamID:           item.TeamID,
		Name:             item.Name,
		Role:             item.Role,
		RealClub:         item.RealClub,
		AuctionValue:     item.AuctionValue,
		PerformanceIndex: item.PerformanceIndex,
		MarketForm:       item.MarketForm,
		LastSeenAt:       timeOrNow(item.LastSeenAt),
	}
	query, args, err := qb.InsertModel("scraped_players", insertModel).
		OnConflict("league_public_id", "team_public_id", "name").
		DoUpdateExcluded("role", "real_club", "auction_value", "performance_index", "market_form", "last_seen_at").
		DoUpdateExpr("updated_at", "NOW()").
		Returning("public_id", "created_at").
		ToSQL()
	if err != nil {
		return scraped.Player{}, fmt.Errorf("build insert scraped player query: %w", err)
	}

	var out insertReturningModel
	if err := r.db.GetContext(ctx, &out, query, args...); err != nil {
		return scraped.Player{}, fmt.Errorf("insert scraped player team=%s: %w", item.TeamID, err)
	}

	item.ID = out.PublicID
	item.CreatedAt = out.CreatedAt
	item.LastSeenAt = insertModel.LastSeenAt
	return item, nil
}

func (r *ScrapedRepository) UpdatePlayer(ctx context.Context, item scraped.Player) error {
	if item.ID == "" {
		return fmt.Errorf("scraped player id is required")
	}

	query, args, err := qb.Update("scraped_players").
		Set("role", item.Role).
		Set("real_club", item.RealClub).
		Set("auction_value", item.AuctionValue).
		Set("performance_index", item.PerformanceIndex).
		Set("market_form", item.MarketForm).
		Set("last_seen_at", timeOrNow(item.LastSeenAt)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("public_id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update scraped player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update scraped player=%s: %w", item.ID, err)
	}
	return nil
}

func (r *ScrapedRepository) CountByLeague(ctx context.Context, leagueID string) (int, int, error) {
	teamQuery, teamArgs, err := qb.Select("COUNT(1)").From("scraped_teams").
		Where(qb.Eq("league_public_id", leagueID)).
		ToSQL()
	if err != nil {
		return 0, 0, fmt.Errorf("build count scraped teams query: %w", err)
	}
	playerQuery, playerArgs, err := qb.Select("COUNT(1)").From("scraped_players").
		Where(qb.Eq("league_public_id", leagueID)).
		ToSQL()
	if err != nil {
		return 0, 0, fmt.Errorf("build count scraped players query: %w", err)
	}

	var teams, players int
	if err := r.db.GetContext(ctx, &teams, teamQuery, teamArgs...); err != nil {
		return 0, 0, fmt.Errorf("count scraped teams league=%s: %w", leagueID, err)
	}
	if err := r.db.GetContext(ctx, &players, playerQuery, playerArgs...); err != nil {
		return 0, 0, fmt.Errorf("count scraped players league=%s: %w", leagueID, err)
	}
	return teams, players, nil
}

func scrapedTeamFromRow(row scrapedTeamTableModel) scraped.Team {
	return scraped.Team{
		ID:         row.PublicID,
		LeagueID:   row.LeagueID,
		Name:       row.Name,
		SourceURL:  row.SourceURL,
		LastSeenAt: nullTimeToTime(row.LastSeenAt),
		CreatedAt:  row.CreatedAt,
	}
}

func scrapedPlayerFromRow(row scrapedPlayerTableModel) scraped.Player {
	return scraped.Player{
		ID:               row.PublicID,
		LeagueID:         row.LeagueID,
		TeamID:           row.TeamID,
		Name:             row.Name,
		Role:             row.Role,
		RealClub:         row.RealClub,
		AuctionValue:     row.AuctionValue,
		PerformanceIndex: row.PerformanceIndex,
		MarketForm:       row.MarketForm,
		LastSeenAt:       nullTimeToTime(row.LastSeenAt),
		CreatedAt:        row.CreatedAt,
	}
}
