package cache

import (
	"context"

	"github.com/riskibarqy/pickem-league/internal/domain/league"
	"github.com/riskibarqy/pickem-league/internal/domain/player"
	basecache "github.com/riskibarqy/pickem-league/internal/platform/cache"
)

type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store
}

func NewLeagueRepository(next league.Repository, cache *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, cache: cache}
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	v, err := r.cache.GetOrLoad(ctx, "league:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return cloneLeagues(items), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]league.League)
	return cloneLeagues(items), nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	key := "league:id:" + leagueID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return cachedLeagueByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}

	cached, _ := v.(cachedLeagueByID)
	out := cached.value
	out.PayoutPercents = append([]float64(nil), cached.value.PayoutPercents...)
	return out, cached.exists, nil
}

type cachedLeagueByID struct {
	value  league.League
	exists bool
}

func cloneLeagues(items []league.League) []league.League {
	out := make([]league.League, 0, len(items))
	for _, item := range items {
		item.PayoutPercents = append([]float64(nil), item.PayoutPercents...)
		out = append(out, item)
	}
	return out
}

// PlayerRepository caches roster reads. Upsert drops every cached player entry.
type PlayerRepository struct {
	next  player.Repository
	cache *basecache.Store
}

func NewPlayerRepository(next player.Repository, cache *basecache.Store) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache}
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	cached, err := basecache.Load(ctx, r.cache, "player:id:"+playerID, func(ctx context.Context) (cachedPlayerByID, error) {
		item, exists, err := r.next.GetByID(ctx, playerID)
		if err != nil {
			return cachedPlayerByID{}, err
		}
		return cachedPlayerByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return player.Player{}, false, err
	}
	return cached.value, cached.exists, nil
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	items, err := basecache.Load(ctx, r.cache, "player:list", func(ctx context.Context) ([]player.Player, error) {
		return r.next.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	return append([]player.Player(nil), items...), nil
}

func (r *PlayerRepository) Upsert(ctx context.Context, item player.Player) error {
	if err := r.next.Upsert(ctx, item); err != nil {
		return err
	}
	if r.cache != nil {
		r.cache.DeletePrefix(ctx, "player:")
	}
	return nil
}

type cachedPlayerByID struct {
	value  player.Player
	exists bool
}
