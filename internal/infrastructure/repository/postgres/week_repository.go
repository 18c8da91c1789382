package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pickem-league/internal/domain/week"
	qb "github.com/riskibarqy/pickem-league/internal/platform/querybuilder"
)

type WeekRepository struct {
	db *sqlx.DB
}

func NewWeekRepository(db *sqlx.DB) *WeekRepository {
	return &WeekRepository{db: db}
}

func (r *WeekRepository) Get(ctx context.Context, leagueID string, weekNo int) (week.Record, bool, error) {
	query, args, err := qb.Select("*").From("league_weeks").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("week", weekNo),
		).
		ToSQL()
	if err != nil {
		return week.Record{}, false, fmt.Errorf("build get week query: %w", err)
	}

	var row leagueWeekTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return week.Record{}, false, nil
		}
		return week.Record{}, false, fmt.Errorf("get week: %w", err)
	}
	return weekFromRow(row), true, nil
}

func (r *WeekRepository) ListByLeague(ctx context.Context, leagueID string) ([]week.Record, error) {
	query, args, err := qb.Select("*").From("league_weeks").
		Where(qb.Eq("league_public_id", leagueID)).
		OrderBy("week").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list weeks query: %w", err)
	}

	var rows []leagueWeekTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list weeks: %w", err)
	}

	out := make([]week.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, weekFromRow(row))
	}
	return out, nil
}

func (r *WeekRepository) Upsert(ctx context.Context, item week.Record) error {
	query, args, err := qb.InsertModel("league_weeks", leagueWeekInsertModel{
		LeagueID:  item.LeagueID,
		Week:      item.Week,
		Status:    string(item.Status),
		UpdatedAt: updatedAtOrNow(item.UpdatedAt),
	}, `ON CONFLICT (league_public_id, week) DO UPDATE SET
    status = EXCLUDED.status,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert week query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert week league=%s week=%d: %w", item.LeagueID, item.Week, err)
	}
	return nil
}

func weekFromRow(row leagueWeekTableModel) week.Record {
	return week.Record{
		LeagueID:  row.LeagueID,
		Week:      row.Week,
		Status:    week.Status(row.Status),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}
