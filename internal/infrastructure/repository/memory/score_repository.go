package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/pickem-league/internal/domain/scoring"
)

type ScoreRepository struct {
	mu    sync.RWMutex
	items map[string]scoring.Score
}

func NewScoreRepository() *ScoreRepository {
	return &ScoreRepository{items: make(map[string]scoring.Score)}
}

func (r *ScoreRepository) Get(_ context.Context, leagueID string, week int, participantID string) (scoring.Score, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[weekParticipantKey(leagueID, week, participantID)]
	if !ok {
		return scoring.Score{}, false, nil
	}
	return item.Clone(), true, nil
}

func (r *ScoreRepository) ListByWeek(_ context.Context, leagueID string, week int) ([]scoring.Score, error) {
	return r.filter(func(item scoring.Score) bool {
		return item.LeagueID == leagueID && item.Week == week
	}), nil
}

func (r *ScoreRepository) ListByLeague(_ context.Context, leagueID string) ([]scoring.Score, error) {
	return r.filter(func(item scoring.Score) bool {
		return item.LeagueID == leagueID
	}), nil
}

func (r *ScoreRepository) Upsert(_ context.Context, item scoring.Score) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[weekParticipantKey(item.LeagueID, item.Week, item.ParticipantID)] = item.Clone()
	return nil
}

func (r *ScoreRepository) filter(keep func(scoring.Score) bool) []scoring.Score {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]scoring.Score, 0)
	for _, item := range r.items {
		if keep(item) {
			out = append(out, item.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Week != out[j].Week {
			return out[i].Week < out[j].Week
		}
		return out[i].ParticipantID < out[j].ParticipantID
	})
	return out
}
