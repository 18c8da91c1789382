package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pickem-league/internal/domain/usage"
	qb "github.com/riskibarqy/pickem-league/internal/platform/querybuilder"
)

type UsageRepository struct {
	db *sqlx.DB
}

func NewUsageRepository(db *sqlx.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

func (r *UsageRepository) Get(ctx context.Context, key usage.Key) (usage.Record, bool, error) {
	query, args, err := qb.Select("*").From("player_usages").
		Where(
			qb.Eq("league_public_id", key.LeagueID),
			qb.Eq("season", key.Season),
			qb.Eq("participant_id", key.ParticipantID),
			qb.Eq("player_public_id", key.PlayerID),
		).
		ToSQL()
	if err != nil {
		return usage.Record{}, false, fmt.Errorf("build get usage query: %w", err)
	}

	var row playerUsageTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return usage.Record{}, false, nil
		}
		return usage.Record{}, false, fmt.Errorf("get usage: %w", err)
	}
	return usageFromRow(row), true, nil
}

// CreateIfAbsent relies on the unique key: a losing concurrent insert reads back the winner.
func (r *UsageRepository) CreateIfAbsent(ctx context.Context, record usage.Record) (usage.Record, bool, error) {
	query, args, err := qb.InsertModel("player_usages", playerUsageInsertModel{
		LeagueID:      record.LeagueID,
		Season:        record.Season,
		ParticipantID: record.ParticipantID,
		PlayerID:      record.PlayerID,
		FirstUsedWeek: record.FirstUsedWeek,
		RecordedAt:    record.RecordedAt.UTC(),
	}, "RETURNING *")
	if err != nil {
		return usage.Record{}, false, fmt.Errorf("build insert usage query: %w", err)
	}

	var row playerUsageTableModel
	err = r.db.GetContext(ctx, &row, query, args...)
	if err == nil {
		return usageFromRow(row), true, nil
	}
	if !isUniqueViolation(err) {
		return usage.Record{}, false, fmt.Errorf("insert usage %s: %w", record.Key, err)
	}

	existing, exists, getErr := r.Get(ctx, record.Key)
	if getErr != nil {
		return usage.Record{}, false, getErr
	}
	if !exists {
		return usage.Record{}, false, fmt.Errorf("usage %s conflicted but is missing", record.Key)
	}
	return existing, false, nil
}

func (r *UsageRepository) ListByParticipant(ctx context.Context, leagueID string, season int, participantID string) ([]usage.Record, error) {
	query, args, err := qb.Select("*").From("player_usages").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("season", season),
			qb.Eq("participant_id", participantID),
		).
		OrderBy("first_used_week", "player_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list usage query: %w", err)
	}

	var rows []playerUsageTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list usage: %w", err)
	}

	out := make([]usage.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, usageFromRow(row))
	}
	return out, nil
}

func usageFromRow(row playerUsageTableModel) usage.Record {
	return usage.Record{
		Key: usage.Key{
			LeagueID:      row.LeagueID,
			Season:        row.Season,
			ParticipantID: row.ParticipantID,
			PlayerID:      row.PlayerID,
		},
		FirstUsedWeek: row.FirstUsedWeek,
		RecordedAt:    row.RecordedAt.UTC(),
	}
}
