package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/pickem-league/internal/domain/pick"
	qb "github.com/riskibarqy/pickem-league/internal/platform/querybuilder"
)

type PickRepository struct {
	db *sqlx.DB
}

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

func (r *PickRepository) Get(ctx context.Context, leagueID string, week int, participantID string) (pick.Pick, bool, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("week", week),
			qb.Eq("participant_id", participantID),
		).
		OrderBy("slot").
		ToSQL()
	if err != nil {
		return pick.Pick{}, false, fmt.Errorf("build get pick query: %w", err)
	}

	var rows []pickSlotTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return pick.Pick{}, false, fmt.Errorf("get pick: %w", err)
	}
	if len(rows) == 0 {
		return pick.Pick{}, false, nil
	}

	return picksFromRows(rows)[0], true, nil
}

func (r *PickRepository) ListByWeek(ctx context.Context, leagueID string, week int) ([]pick.Pick, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("week", week),
		).
		OrderBy("participant_id", "slot").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list picks by week query: %w", err)
	}

	var rows []pickSlotTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list picks by week: %w", err)
	}
	return picksFromRows(rows), nil
}

// Upsert replaces the open slots of a pick. Locked rows are never rewritten or removed.
func (r *PickRepository) Upsert(ctx context.Context, item pick.Pick) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert pick: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	keep := make([]string, 0, len(item.Slots))
	for slot, sp := range item.Slots {
		if sp.IsSet() {
			keep = append(keep, string(slot))
		}
	}

	conditions := []qb.Condition{
		qb.Eq("league_public_id", item.LeagueID),
		qb.Eq("week", item.Week),
		qb.Eq("participant_id", item.ParticipantID),
		qb.Eq("locked", false),
	}
	if len(keep) > 0 {
		conditions = append(conditions, qb.Expr("NOT (slot = ANY(?))", pq.StringArray(keep)))
	}
	clearQuery, clearArgs, err := qb.DeleteFrom("picks").Where(conditions...).ToSQL()
	if err != nil {
		return fmt.Errorf("build clear pick slots query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clear pick slots: %w", err)
	}

	updatedAt := updatedAtOrNow(item.UpdatedAt)
	for _, slot := range pick.AllSlots {
		sp, ok := item.Slots[slot]
		if !ok || !sp.IsSet() {
			continue
		}
		query, args, err := qb.InsertModel("picks", pickSlotInsertModel{
			LeagueID:      item.LeagueID,
			Week:          item.Week,
			ParticipantID: item.ParticipantID,
			Slot:          string(slot),
			PlayerID:      sp.PlayerID,
			GameID:        sp.GameID,
			Locked:        sp.Locked,
			LockedAt:      timePtrToNullTime(sp.LockedAt),
			UpdatedAt:     updatedAt,
		}, `ON CONFLICT (league_public_id, week, participant_id, slot)
DO UPDATE SET
    player_public_id = EXCLUDED.player_public_id,
    game_public_id = EXCLUDED.game_public_id,
    locked = EXCLUDED.locked,
    locked_at = EXCLUDED.locked_at,
    updated_at = EXCLUDED.updated_at
WHERE picks.locked = FALSE`)
		if err != nil {
			return fmt.Errorf("build upsert pick slot query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert pick slot participant=%s slot=%s: %w", item.ParticipantID, slot, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert pick tx: %w", err)
	}
	return nil
}

// LockSlotsForGames flips open slots in one statement; RETURNING yields only rows this call changed.
func (r *PickRepository) LockSlotsForGames(ctx context.Context, gameIDs []string, lockedAt time.Time) ([]pick.LockedSlot, error) {
	if len(gameIDs) == 0 {
		return nil, nil
	}

	query, args, err := qb.Update("picks").
		Set("locked", true).
		Set("locked_at", lockedAt.UTC()).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.InStrings("game_public_id", gameIDs),
			qb.Eq("locked", false),
		).
		Suffix("RETURNING league_public_id, week, participant_id, slot, game_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build lock pick slots query: %w", err)
	}

	var rows []lockedSlotRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("lock pick slots: %w", err)
	}

	out := make([]pick.LockedSlot, 0, len(rows))
	for _, row := range rows {
		out = append(out, pick.LockedSlot{
			LeagueID:      row.LeagueID,
			Week:          row.Week,
			ParticipantID: row.ParticipantID,
			Slot:          pick.Slot(row.Slot),
			GameID:        row.GameID,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.LeagueID != b.LeagueID {
			return a.LeagueID < b.LeagueID
		}
		if a.Week != b.Week {
			return a.Week < b.Week
		}
		if a.ParticipantID != b.ParticipantID {
			return a.ParticipantID < b.ParticipantID
		}
		return a.Slot < b.Slot
	})
	return out, nil
}

// picksFromRows groups slot rows, which must be ordered by participant.
func picksFromRows(rows []pickSlotTableModel) []pick.Pick {
	out := make([]pick.Pick, 0)
	index := make(map[string]int)
	for _, row := range rows {
		key := row.ParticipantID
		pos, ok := index[key]
		if !ok {
			out = append(out, pick.New(row.LeagueID, row.Week, row.ParticipantID))
			pos = len(out) - 1
			index[key] = pos
		}
		out[pos].Slots[pick.Slot(row.Slot)] = pick.SlotPick{
			PlayerID: row.PlayerID,
			GameID:   row.GameID,
			Locked:   row.Locked,
			LockedAt: nullTimeToTimePtr(row.LockedAt),
		}
		if row.UpdatedAt.After(out[pos].UpdatedAt) {
			out[pos].UpdatedAt = row.UpdatedAt.UTC()
		}
	}
	return out
}
