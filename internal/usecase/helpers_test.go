package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/game"
	"github.com/riskibarqy/pickem-league/internal/domain/pick"
	"github.com/riskibarqy/pickem-league/internal/domain/scoring"
	"github.com/riskibarqy/pickem-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
)

func seedPick(t *testing.T, repo *memory.PickRepository, leagueID string, week int, participantID string, slots map[pick.Slot]pick.SlotPick) {
	t.Helper()

	item := pick.New(leagueID, week, participantID)
	for slot, sp := range slots {
		item.Slots[slot] = sp
	}
	if err := repo.Upsert(context.Background(), item); err != nil {
		t.Fatalf("seed pick: %v", err)
	}
}

// stubStatsProvider serves canned box scores and counts fetches per game.
type stubStatsProvider struct {
	mu       sync.Mutex
	stats    map[string]GameStats
	errs     map[string]error
	schedule map[int][]ScheduledGame
	calls    map[string]int
	total    atomic.Int32
}

func newStubStatsProvider() *stubStatsProvider {
	return &stubStatsProvider{
		stats:    make(map[string]GameStats),
		errs:     make(map[string]error),
		schedule: make(map[int][]ScheduledGame),
		calls:    make(map[string]int),
	}
}

func (p *stubStatsProvider) setLine(gameID string, status game.Status, playerID string, line scoring.StatLine) {
	p.mu.Lock()
	defer p.mu.Unlock()

	item := p.stats[gameID]
	item.GameID = gameID
	if status != "" {
		item.Status = status
	}
	lines := make([]PlayerStatLine, 0, len(item.Lines)+1)
	for _, existing := range item.Lines {
		if existing.PlayerID != playerID {
			lines = append(lines, existing)
		}
	}
	item.Lines = append(lines, PlayerStatLine{PlayerID: playerID, Line: line})
	p.stats[gameID] = item
}

func (p *stubStatsProvider) setError(gameID string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs[gameID] = err
}

func (p *stubStatsProvider) callsFor(gameID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[gameID]
}

func (p *stubStatsProvider) FetchGameStats(_ context.Context, gameID string) (GameStats, error) {
	p.total.Add(1)
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls[gameID]++
	if err := p.errs[gameID]; err != nil {
		return GameStats{}, err
	}
	item, ok := p.stats[gameID]
	if !ok {
		return GameStats{GameID: gameID}, nil
	}
	out := item
	out.Lines = append([]PlayerStatLine(nil), item.Lines...)
	return out, nil
}

func (p *stubStatsProvider) FetchWeekSchedule(_ context.Context, _ int, week int) ([]ScheduledGame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ScheduledGame(nil), p.schedule[week]...), nil
}

// pickemFixture wires every service over fresh memory repositories with a shared clock.
type pickemFixture struct {
	now func() time.Time

	leagues   *memory.LeagueRepository
	players   *memory.PlayerRepository
	games     *memory.GameRepository
	picks     *memory.PickRepository
	usages    *memory.UsageRepository
	scores    *memory.ScoreRepository
	standings *memory.LeagueStandingRepository
	weeks     *memory.WeekRepository
	provider  *stubStatsProvider
	locks     *KeyedMutex

	ledger      *UsageLedger
	pickSvc     *PickService
	sweepSvc    *LockSweepService
	standingSvc *LeagueStandingService
	scoringSvc  *ScoringService
	scheduleSvc *ScheduleSyncService
	backfillSvc *BackfillService
}

func newPickemFixture(t *testing.T, now *time.Time) *pickemFixture {
	t.Helper()

	clock := func() time.Time { return *now }
	logger := logging.NewNop()
	f := &pickemFixture{
		now:       clock,
		leagues:   memory.NewLeagueRepository(memory.SeedLeagues()),
		players:   memory.NewPlayerRepository(memory.SeedPlayers()),
		games:     memory.NewGameRepository(memory.SeedGames()),
		picks:     memory.NewPickRepository(),
		usages:    memory.NewUsageRepository(),
		scores:    memory.NewScoreRepository(),
		standings: memory.NewLeagueStandingRepository(),
		weeks:     memory.NewWeekRepository(),
		provider:  newStubStatsProvider(),
		locks:     NewKeyedMutex(),
	}

	f.ledger = NewUsageLedger(f.usages, logger)
	f.ledger.now = clock

	f.pickSvc = NewPickService(f.leagues, f.players, f.games, f.picks, f.ledger, f.locks, PickServiceConfig{LockLead: time.Hour}, logger)
	f.pickSvc.now = clock

	f.sweepSvc = NewLockSweepService(f.games, f.picks, LockSweepConfig{LockLead: time.Hour}, logger)
	f.sweepSvc.now = clock

	f.standingSvc = NewLeagueStandingService(f.leagues, f.scores, f.standings, logger)
	f.standingSvc.now = clock

	f.scoringSvc = NewScoringService(f.leagues, f.games, f.picks, f.scores, f.weeks, f.ledger, f.standingSvc, f.provider, f.locks, ScoringServiceConfig{MaxWorkers: 2}, logger)
	f.scoringSvc.now = clock

	f.scheduleSvc = NewScheduleSyncService(f.games, f.provider, logger)
	f.scheduleSvc.now = clock

	f.backfillSvc = NewBackfillService(f.leagues, f.players, f.games, f.picks, f.scores, f.weeks, f.ledger, f.standingSvc, f.provider, f.scheduleSvc, nil, f.locks, BackfillServiceConfig{MaxWorkers: 2, StatsMaxWorkers: 2}, logger)
	f.backfillSvc.now = clock

	return f
}
