package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/pickem-league/internal/domain/week"
)

type WeekRepository struct {
	mu    sync.RWMutex
	items map[string]week.Record
}

func NewWeekRepository() *WeekRepository {
	return &WeekRepository{items: make(map[string]week.Record)}
}

func (r *WeekRepository) Get(_ context.Context, leagueID string, weekNo int) (week.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[weekParticipantKey(leagueID, weekNo, "")]
	return item, ok, nil
}

func (r *WeekRepository) ListByLeague(_ context.Context, leagueID string) ([]week.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]week.Record, 0)
	for _, item := range r.items {
		if item.LeagueID == leagueID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out, nil
}

func (r *WeekRepository) Upsert(_ context.Context, item week.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[weekParticipantKey(item.LeagueID, item.Week, "")] = item
	return nil
}
