package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/pick"
)

type PickRepository struct {
	mu    sync.RWMutex
	items map[string]pick.Pick
}

func NewPickRepository() *PickRepository {
	return &PickRepository{items: make(map[string]pick.Pick)}
}

func (r *PickRepository) Get(_ context.Context, leagueID string, week int, participantID string) (pick.Pick, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[weekParticipantKey(leagueID, week, participantID)]
	if !ok {
		return pick.Pick{}, false, nil
	}

	return item.Clone(), true, nil
}

func (r *PickRepository) ListByWeek(_ context.Context, leagueID string, week int) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0)
	for _, item := range r.items {
		if item.LeagueID == leagueID && item.Week == week {
			out = append(out, item.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ParticipantID < out[j].ParticipantID })
	return out, nil
}

// Upsert never unlocks: a stored locked slot wins over the incoming one.
func (r *PickRepository) Upsert(_ context.Context, item pick.Pick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := weekParticipantKey(item.LeagueID, item.Week, item.ParticipantID)
	next := item.Clone()
	if existing, ok := r.items[key]; ok {
		for slot, stored := range existing.Slots {
			if stored.Locked {
				next.Slots[slot] = stored
			}
		}
	}
	r.items[key] = next
	return nil
}

func (r *PickRepository) LockSlotsForGames(_ context.Context, gameIDs []string, lockedAt time.Time) ([]pick.LockedSlot, error) {
	if len(gameIDs) == 0 {
		return nil, nil
	}
	targets := make(map[string]struct{}, len(gameIDs))
	for _, id := range gameIDs {
		targets[id] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]pick.LockedSlot, 0)
	for key, item := range r.items {
		changed := false
		for _, slot := range pick.AllSlots {
			current, ok := item.Slots[slot]
			if !ok || current.Locked || !current.IsSet() {
				continue
			}
			if _, hit := targets[current.GameID]; !hit {
				continue
			}
			at := lockedAt
			current.Locked = true
			current.LockedAt = &at
			item.Slots[slot] = current
			changed = true
			out = append(out, pick.LockedSlot{
				LeagueID:      item.LeagueID,
				Week:          item.Week,
				ParticipantID: item.ParticipantID,
				Slot:          slot,
				GameID:        current.GameID,
			})
		}
		if changed {
			r.items[key] = item
		}
	}
	sortLockedSlots(out)
	return out, nil
}

func sortLockedSlots(items []pick.LockedSlot) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
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
}

func weekParticipantKey(leagueID string, week int, participantID string) string {
	return leagueID + "::" + strconv.Itoa(week) + "::" + participantID
}
