package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/league"
	"github.com/riskibarqy/pickem-league/internal/domain/player"
	"github.com/riskibarqy/pickem-league/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/pickem-league/internal/platform/cache"
)

type countingLeagueRepo struct {
	league.Repository
	gets atomic.Int32
}

func (r *countingLeagueRepo) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	r.gets.Add(1)
	return r.Repository.GetByID(ctx, leagueID)
}

type countingPlayerRepo struct {
	player.Repository
	lists atomic.Int32
}

func (r *countingPlayerRepo) List(ctx context.Context) ([]player.Player, error) {
	r.lists.Add(1)
	return r.Repository.List(ctx)
}

func TestLeagueRepository_CachesLookups(t *testing.T) {
	t.Parallel()

	next := &countingLeagueRepo{Repository: memory.NewLeagueRepository(memory.SeedLeagues())}
	repo := NewLeagueRepository(next, basecache.NewStore(time.Minute))
	ctx := context.Background()

	first, exists, err := repo.GetByID(ctx, memory.LeagueIDSundaySix)
	if err != nil || !exists {
		t.Fatalf("get league: exists=%v err=%v", exists, err)
	}
	first.PayoutPercents[0] = 0

	second, _, _ := repo.GetByID(ctx, memory.LeagueIDSundaySix)
	if second.PayoutPercents[0] != 60 {
		t.Fatalf("cached league must not share slices with callers, got %+v", second.PayoutPercents)
	}
	if _, exists, _ := repo.GetByID(ctx, "missing"); exists {
		t.Fatalf("expected missing league")
	}
	if _, _, _ = repo.GetByID(ctx, "missing"); next.gets.Load() != 2 {
		t.Fatalf("expected one load per key, got %d", next.gets.Load())
	}
}

func TestPlayerRepository_UpsertInvalidates(t *testing.T) {
	t.Parallel()

	next := &countingPlayerRepo{Repository: memory.NewPlayerRepository(memory.SeedPlayers())}
	repo := NewPlayerRepository(next, basecache.NewStore(time.Minute))
	ctx := context.Background()

	before, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if _, err := repo.List(ctx); err != nil || next.lists.Load() != 1 {
		t.Fatalf("expected cached list, loads=%d err=%v", next.lists.Load(), err)
	}

	rookie := player.Player{ID: "kc-wr-2", Name: "Xavier Worthy", TeamID: "KC", Position: player.PositionWideReceiver}
	if err := repo.Upsert(ctx, rookie); err != nil {
		t.Fatalf("upsert player: %v", err)
	}

	after, _ := repo.List(ctx)
	if len(after) != len(before)+1 || next.lists.Load() != 2 {
		t.Fatalf("expected reload after upsert, before=%d after=%d loads=%d", len(before), len(after), next.lists.Load())
	}
	if got, exists, _ := repo.GetByID(ctx, "kc-wr-2"); !exists || got.Name != rookie.Name {
		t.Fatalf("unexpected player: %+v", got)
	}
}
