package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pickem-league/internal/domain/leaguestanding"
	qb "github.com/riskibarqy/pickem-league/internal/platform/querybuilder"
)

var seasonStandingSelectColumns = []string{
	"id",
	"league_public_id",
	"participant_id",
	"season_total_points",
	"weeks_played",
	"best_week_points",
	"best_week",
	"rank",
	"payout::float8 AS payout",
	"computed_at",
}

type LeagueStandingRepository struct {
	db *sqlx.DB
}

func NewLeagueStandingRepository(db *sqlx.DB) *LeagueStandingRepository {
	return &LeagueStandingRepository{db: db}
}

func (r *LeagueStandingRepository) ListByLeague(ctx context.Context, leagueID string) ([]leaguestanding.SeasonStanding, error) {
	query, args, err := qb.Select(seasonStandingSelectColumns...).From("season_standings").
		Where(qb.Eq("league_public_id", leagueID)).
		OrderBy("rank", "season_total_points DESC", "participant_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list season standings query: %w", err)
	}

	var rows []seasonStandingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list season standings: %w", err)
	}

	out := make([]leaguestanding.SeasonStanding, 0, len(rows))
	for _, row := range rows {
		out = append(out, leaguestanding.SeasonStanding{
			LeagueID:          row.LeagueID,
			ParticipantID:     row.ParticipantID,
			SeasonTotalPoints: row.SeasonTotalPoints,
			WeeksPlayed:       row.WeeksPlayed,
			BestWeekPoints:    row.BestWeekPoints,
			BestWeek:          row.BestWeek,
			Rank:              row.Rank,
			Payout:            row.Payout,
			ComputedAt:        row.ComputedAt.UTC(),
		})
	}

	return out, nil
}

// ReplaceByLeague deletes and rewrites the league's rows in one transaction so readers
// never see a mix of two recomputes.
func (r *LeagueStandingRepository) ReplaceByLeague(ctx context.Context, leagueID string, items []leaguestanding.SeasonStanding) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace season standings: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	clearQuery, clearArgs, err := qb.DeleteFrom("season_standings").
		Where(qb.Eq("league_public_id", leagueID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear season standings query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clear season standings: %w", err)
	}

	for _, item := range items {
		query, args, err := qb.InsertModel("season_standings", seasonStandingInsertModel{
			LeagueID:          leagueID,
			ParticipantID:     item.ParticipantID,
			SeasonTotalPoints: item.SeasonTotalPoints,
			WeeksPlayed:       item.WeeksPlayed,
			BestWeekPoints:    item.BestWeekPoints,
			BestWeek:          item.BestWeek,
			Rank:              item.Rank,
			Payout:            item.Payout,
			ComputedAt:        item.ComputedAt.UTC(),
		}, "")
		if err != nil {
			return fmt.Errorf("build insert season standing query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert season standing participant=%s: %w", item.ParticipantID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace season standings tx: %w", err)
	}
	return nil
}
