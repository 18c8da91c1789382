package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pickem-league/internal/domain/game"
	qb "github.com/riskibarqy/pickem-league/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetByID(ctx context.Context, gameID string) (game.Game, bool, error) {
	query, args, err := qb.Select("*").From("games").
		Where(qb.Eq("public_id", gameID)).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build get game by id query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game by id: %w", err)
	}
	return gameFromRow(row), true, nil
}

func (r *GameRepository) ListByIDs(ctx context.Context, gameIDs []string) ([]game.Game, error) {
	if len(gameIDs) == 0 {
		return []game.Game{}, nil
	}
	return r.selectGames(ctx, "list games by ids", qb.InStrings("public_id", gameIDs))
}

func (r *GameRepository) ListByWeek(ctx context.Context, season, week int) ([]game.Game, error) {
	return r.selectGames(ctx, "list games by week",
		qb.Eq("season", season),
		qb.Eq("week", week),
	)
}

// ListKickoffBetween is inclusive on both ends.
func (r *GameRepository) ListKickoffBetween(ctx context.Context, from, to time.Time) ([]game.Game, error) {
	return r.selectGames(ctx, "list games by kickoff window", qb.Between("kickoff_at", from.UTC(), to.UTC()))
}

func (r *GameRepository) Upsert(ctx context.Context, item game.Game) error {
	query, args, err := qb.InsertModel("games", gameInsertModel{
		PublicID:   item.ID,
		Season:     item.Season,
		Week:       item.Week,
		HomeTeamID: item.HomeTeamID,
		AwayTeamID: item.AwayTeamID,
		KickoffAt:  item.KickoffAt.UTC(),
		Status:     string(item.Status),
		UpdatedAt:  updatedAtOrNow(item.UpdatedAt),
	}, `ON CONFLICT (public_id) DO UPDATE SET
    kickoff_at = EXCLUDED.kickoff_at,
    status = EXCLUDED.status,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert game query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert game id=%s: %w", item.ID, err)
	}
	return nil
}

func (r *GameRepository) selectGames(ctx context.Context, op string, conditions ...qb.Condition) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(conditions...).
		OrderBy("kickoff_at", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameFromRow(row))
	}
	return out, nil
}

func gameFromRow(row gameTableModel) game.Game {
	return game.Game{
		ID:         row.PublicID,
		Season:     row.Season,
		Week:       row.Week,
		HomeTeamID: row.HomeTeamID,
		AwayTeamID: row.AwayTeamID,
		KickoffAt:  row.KickoffAt.UTC(),
		Status:     game.Status(row.Status),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
}
