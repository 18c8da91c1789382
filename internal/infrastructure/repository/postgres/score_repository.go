package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/pickem-league/internal/domain/pick"
	"github.com/riskibarqy/pickem-league/internal/domain/scoring"
	qb "github.com/riskibarqy/pickem-league/internal/platform/querybuilder"
)

type ScoreRepository struct {
	db *sqlx.DB
}

func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

func (r *ScoreRepository) Get(ctx context.Context, leagueID string, week int, participantID string) (scoring.Score, bool, error) {
	query, args, err := qb.Select("*").From("weekly_scores").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("week", week),
			qb.Eq("participant_id", participantID),
		).
		ToSQL()
	if err != nil {
		return scoring.Score{}, false, fmt.Errorf("build get score query: %w", err)
	}

	var row weeklyScoreTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return scoring.Score{}, false, nil
		}
		return scoring.Score{}, false, fmt.Errorf("get score: %w", err)
	}
	return weeklyScoreFromRow(row), true, nil
}

func (r *ScoreRepository) ListByWeek(ctx context.Context, leagueID string, week int) ([]scoring.Score, error) {
	return r.selectScores(ctx, "list scores by week",
		qb.Eq("league_public_id", leagueID),
		qb.Eq("week", week),
	)
}

func (r *ScoreRepository) ListByLeague(ctx context.Context, leagueID string) ([]scoring.Score, error) {
	return r.selectScores(ctx, "list scores by league", qb.Eq("league_public_id", leagueID))
}

func (r *ScoreRepository) Upsert(ctx context.Context, item scoring.Score) error {
	query, args, err := qb.InsertModel("weekly_scores", weeklyScoreInsertModel{
		LeagueID:        item.LeagueID,
		Week:            item.Week,
		ParticipantID:   item.ParticipantID,
		QBPoints:        slotPointColumn(item, pick.SlotQB),
		RBPoints:        slotPointColumn(item, pick.SlotRB),
		WRPoints:        slotPointColumn(item, pick.SlotWR),
		TotalPoints:     item.Total,
		DoublePickSlots: slotsToArray(item.DoublePickSlots),
		UnscoredSlots:   slotsToArray(item.UnscoredSlots),
		Source:          string(item.Source),
		ScoredAt:        item.ScoredAt.UTC(),
	}, `ON CONFLICT (league_public_id, week, participant_id)
DO UPDATE SET
    qb_points = EXCLUDED.qb_points,
    rb_points = EXCLUDED.rb_points,
    wr_points = EXCLUDED.wr_points,
    total_points = EXCLUDED.total_points,
    double_pick_slots = EXCLUDED.double_pick_slots,
    unscored_slots = EXCLUDED.unscored_slots,
    source = EXCLUDED.source,
    scored_at = EXCLUDED.scored_at`)
	if err != nil {
		return fmt.Errorf("build upsert score query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert score participant=%s week=%d: %w", item.ParticipantID, item.Week, err)
	}
	return nil
}

func (r *ScoreRepository) selectScores(ctx context.Context, op string, conditions ...qb.Condition) ([]scoring.Score, error) {
	query, args, err := qb.Select("*").From("weekly_scores").
		Where(conditions...).
		OrderBy("week", "participant_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []weeklyScoreTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]scoring.Score, 0, len(rows))
	for _, row := range rows {
		out = append(out, weeklyScoreFromRow(row))
	}
	return out, nil
}

func slotPointColumn(item scoring.Score, slot pick.Slot) sql.NullFloat64 {
	points, ok := item.SlotPoints[slot]
	if !ok {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: points, Valid: true}
}

func slotsToArray(slots []pick.Slot) pq.StringArray {
	out := make(pq.StringArray, 0, len(slots))
	for _, slot := range slots {
		out = append(out, string(slot))
	}
	return out
}

func weeklyScoreFromRow(row weeklyScoreTableModel) scoring.Score {
	out := scoring.NewScore(row.LeagueID, row.Week, row.ParticipantID, scoring.Source(row.Source))
	columns := map[pick.Slot]sql.NullFloat64{
		pick.SlotQB: row.QBPoints,
		pick.SlotRB: row.RBPoints,
		pick.SlotWR: row.WRPoints,
	}
	for slot, column := range columns {
		if points := nullFloat64ToPtr(column); points != nil {
			out.SlotPoints[slot] = *points
		}
	}
	// Stored total is authoritative; slot sums were rounded on write.
	out.Total = row.TotalPoints
	for _, slot := range row.DoublePickSlots {
		out.DoublePickSlots = append(out.DoublePickSlots, pick.Slot(slot))
	}
	for _, slot := range row.UnscoredSlots {
		out.UnscoredSlots = append(out.UnscoredSlots, pick.Slot(slot))
	}
	out.ScoredAt = row.ScoredAt.UTC()
	return out
}
