package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/game"
)

type GameRepository struct {
	mu    sync.RWMutex
	items map[string]game.Game
}

func NewGameRepository(games []game.Game) *GameRepository {
	items := make(map[string]game.Game, len(games))
	for _, item := range games {
		items[item.ID] = item
	}

	return &GameRepository{items: items}
}

func (r *GameRepository) GetByID(_ context.Context, gameID string) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[gameID]
	return item, ok, nil
}

func (r *GameRepository) ListByIDs(_ context.Context, gameIDs []string) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0, len(gameIDs))
	for _, id := range gameIDs {
		item, ok := r.items[id]
		if !ok {
			continue
		}
		out = append(out, item)
	}
	sortGames(out)
	return out, nil
}

func (r *GameRepository) ListByWeek(_ context.Context, season, week int) ([]game.Game, error) {
	return r.filter(func(item game.Game) bool {
		return item.Season == season && item.Week == week
	}), nil
}

// ListKickoffBetween is inclusive on both ends.
func (r *GameRepository) ListKickoffBetween(_ context.Context, from, to time.Time) ([]game.Game, error) {
	return r.filter(func(item game.Game) bool {
		return !item.KickoffAt.Before(from) && !item.KickoffAt.After(to)
	}), nil
}

func (r *GameRepository) Upsert(_ context.Context, item game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item
	return nil
}

func (r *GameRepository) filter(keep func(game.Game) bool) []game.Game {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0)
	for _, item := range r.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	sortGames(out)
	return out
}

func sortGames(items []game.Game) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].KickoffAt.Equal(items[j].KickoffAt) {
			return items[i].KickoffAt.Before(items[j].KickoffAt)
		}
		return items[i].ID < items[j].ID
	})
}
