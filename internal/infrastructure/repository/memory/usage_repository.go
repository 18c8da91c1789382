package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/pickem-league/internal/domain/usage"
)

type UsageRepository struct {
	mu    sync.RWMutex
	items map[string]usage.Record
}

func NewUsageRepository() *UsageRepository {
	return &UsageRepository{items: make(map[string]usage.Record)}
}

func (r *UsageRepository) Get(_ context.Context, key usage.Key) (usage.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[key.String()]
	return item, ok, nil
}

// CreateIfAbsent checks and writes under one lock, so the first caller wins.
func (r *UsageRepository) CreateIfAbsent(_ context.Context, record usage.Record) (usage.Record, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := record.Key.String()
	if existing, ok := r.items[key]; ok {
		return existing, false, nil
	}
	r.items[key] = record
	return record, true, nil
}

func (r *UsageRepository) ListByParticipant(_ context.Context, leagueID string, season int, participantID string) ([]usage.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]usage.Record, 0)
	for _, item := range r.items {
		if item.LeagueID == leagueID && item.Season == season && item.ParticipantID == participantID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstUsedWeek != out[j].FirstUsedWeek {
			return out[i].FirstUsedWeek < out[j].FirstUsedWeek
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}
