package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pickem-league/internal/infrastructure/repository/memory"
	qb "github.com/riskibarqy/pickem-league/internal/platform/querybuilder"
)

// BootstrapSeed loads the demo leagues, players and schedule into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM leagues WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count leagues for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	exec := func(what, query string, args []any, buildErr error) error {
		if buildErr != nil {
			return fmt.Errorf("build seed %s query: %w", what, buildErr)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed %s: %w", what, err)
		}
		return nil
	}

	for _, l := range memory.SeedLeagues() {
		query, args, err := qb.InsertModel("leagues", leagueInsertModel{
			PublicID:       l.ID,
			Name:           l.Name,
			Season:         l.Season,
			EntryFee:       l.EntryFee,
			PayoutPercents: l.PayoutPercents,
		}, "ON CONFLICT (public_id) DO NOTHING")
		if err := exec("league "+l.ID, query, args, err); err != nil {
			return err
		}
	}

	for _, p := range memory.SeedPlayers() {
		query, args, err := qb.InsertModel("players", playerInsertModel{
			PublicID: p.ID,
			TeamID:   p.TeamID,
			Name:     p.Name,
			Position: string(p.Position),
		}, "ON CONFLICT (public_id) DO NOTHING")
		if err := exec("player "+p.ID, query, args, err); err != nil {
			return err
		}
	}

	for _, g := range memory.SeedGames() {
		query, args, err := qb.InsertModel("games", gameInsertModel{
			PublicID:   g.ID,
			Season:     g.Season,
			Week:       g.Week,
			HomeTeamID: g.HomeTeamID,
			AwayTeamID: g.AwayTeamID,
			KickoffAt:  g.KickoffAt.UTC(),
			Status:     string(g.Status),
			UpdatedAt:  updatedAtOrNow(g.UpdatedAt),
		}, "ON CONFLICT (public_id) DO NOTHING")
		if err := exec("game "+g.ID, query, args, err); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
