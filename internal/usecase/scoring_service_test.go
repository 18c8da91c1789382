package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/game"
	"github.com/riskibarqy/pickem-league/internal/domain/pick"
	"github.com/riskibarqy/pickem-league/internal/domain/scoring"
	"github.com/riskibarqy/pickem-league/internal/domain/usage"
	"github.com/riskibarqy/pickem-league/internal/domain/week"
	"github.com/riskibarqy/pickem-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
)

func TestScoringService_EndToEndLockScoreAggregate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.September, 13, 14, 0, 0, 0, time.UTC)
	f := newPickemFixture(t, &now)
	ctx := context.Background()

	submitted, err := f.pickSvc.SubmitPick(ctx, SubmitPickInput{
		LeagueID: testLeague, Week: 1, ParticipantID: "alice",
		Picks: []SlotSelection{{Slot: "QB", PlayerID: "kc-qb-1"}},
	})
	if err != nil {
		t.Fatalf("submit pick: %v", err)
	}
	if sp, _ := submitted.Pick.Slot(pick.SlotQB); sp.Locked {
		t.Fatalf("expected open slot after submit")
	}

	now = now.Add(2 * time.Hour)
	if _, err := f.sweepSvc.SweepLocks(ctx); err != nil {
		t.Fatalf("sweep locks: %v", err)
	}
	stored, err := f.pickSvc.GetPick(ctx, testLeague, 1, "alice")
	if err != nil {
		t.Fatalf("get pick: %v", err)
	}
	if sp, _ := stored.Slot(pick.SlotQB); !sp.Locked {
		t.Fatalf("expected slot locked after sweep, got %+v", sp)
	}

	now = time.Date(2026, time.September, 13, 21, 30, 0, 0, time.UTC)
	f.provider.setLine(memory.SeedGameID(1, 1), game.StatusFinal, "kc-qb-1", scoring.StatLine{
		PassingYards:  310,
		PassingTD:     2,
		Interceptions: 1,
	})

	result, err := f.scoringSvc.ScoreWeek(ctx, testLeague, 1)
	if err != nil {
		t.Fatalf("score week: %v", err)
	}
	if result.Written != 1 || !result.Finalized || !result.StandingsRecomputed {
		t.Fatalf("unexpected score result: %+v", result)
	}

	score, exists, err := f.scores.Get(ctx, testLeague, 1, "alice")
	if err != nil || !exists {
		t.Fatalf("get score: exists=%v err=%v", exists, err)
	}
	if score.Total != 22.4 || score.SlotPoints[pick.SlotQB] != 22.4 {
		t.Fatalf("unexpected score: %+v", score)
	}

	standings, err := f.standingSvc.ListByLeague(ctx, testLeague)
	if err != nil {
		t.Fatalf("list standings: %v", err)
	}
	if len(standings) != 1 {
		t.Fatalf("expected one standing row, got %d", len(standings))
	}
	if row := standings[0]; row.WeeksPlayed != 1 || row.SeasonTotalPoints != 22.4 || row.BestWeek != 1 {
		t.Fatalf("unexpected standing: %+v", row)
	}

	record, _, err := f.weeks.Get(ctx, testLeague, 1)
	if err != nil || record.Status != week.StatusFinal {
		t.Fatalf("expected week final, got %+v err=%v", record, err)
	}
	g, _, _ := f.games.GetByID(ctx, memory.SeedGameID(1, 1))
	if !g.IsFinal() {
		t.Fatalf("expected provider status correction to mark game final")
	}
}

func TestScoringService_ScoreWeek_IsIdempotent(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.September, 14, 9, 0, 0, 0, time.UTC)
	f := newPickemFixture(t, &now)
	ctx := context.Background()

	seedPick(t, f.picks, testLeague, 1, "alice", map[pick.Slot]pick.SlotPick{
		pick.SlotQB: {PlayerID: "kc-qb-1", GameID: memory.SeedGameID(1, 1), Locked: true},
		pick.SlotRB: {PlayerID: "phi-rb-1", GameID: memory.SeedGameID(1, 2), Locked: true},
	})
	seedPick(t, f.picks, testLeague, 1, "bob", map[pick.Slot]pick.SlotPick{
		pick.SlotQB: {PlayerID: "buf-qb-1", GameID: memory.SeedGameID(1, 1), Locked: true},
	})
	f.provider.setLine(memory.SeedGameID(1, 1), game.StatusFinal, "kc-qb-1", scoring.StatLine{PassingYards: 325, PassingTD: 3, Interceptions: 1, RushingYards: 25})
	f.provider.setLine(memory.SeedGameID(1, 1), "", "buf-qb-1", scoring.StatLine{PassingYards: 200, PassingTD: 1})
	f.provider.setLine(memory.SeedGameID(1, 2), game.StatusFinal, "phi-rb-1", scoring.StatLine{RushingYards: 145, RushingTD: 2, ReceivingYards: 22, Receptions: 3})

	first, err := f.scoringSvc.ScoreWeek(ctx, testLeague, 1)
	if err != nil {
		t.Fatalf("first score week: %v", err)
	}
	if first.Written != 2 {
		t.Fatalf("expected two written scores, got %+v", first)
	}
	before, err := f.scores.ListByWeek(ctx, testLeague, 1)
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}

	now = now.Add(time.Hour)
	second, err := f.scoringSvc.ScoreWeek(ctx, testLeague, 1)
	if err != nil {
		t.Fatalf("second score week: %v", err)
	}
	if second.Written != 0 || second.Unchanged != 2 || second.StandingsRecomputed {
		t.Fatalf("expected unchanged rerun, got %+v", second)
	}
	after, err := f.scores.ListByWeek(ctx, testLeague, 1)
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	if len(before) != len(after) {
		t.Fatalf("score count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if !before[i].SameResult(after[i]) || !before[i].ScoredAt.Equal(after[i].ScoredAt) {
			t.Fatalf("score changed on rerun: %+v -> %+v", before[i], after[i])
		}
	}

	alice, _, _ := f.scores.Get(ctx, testLeague, 1, "alice")
	if alice.SlotPoints[pick.SlotQB] != 29.5 || alice.SlotPoints[pick.SlotRB] != 34.7 || alice.Total != 64.2 {
		t.Fatalf("unexpected alice score: %+v", alice)
	}

	// Both participants share game 1; it is fetched once per run.
	if got := f.provider.callsFor(memory.SeedGameID(1, 1)); got != 2 {
		t.Fatalf("expected one fetch per run for shared game, got %d over two runs", got)
	}
}

func TestScoringService_ScoreWeek_DoublePickScoresZero(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.September, 28, 9, 0, 0, 0, time.UTC)
	f := newPickemFixture(t, &now)
	ctx := context.Background()

	key := usage.Key{LeagueID: testLeague, Season: memory.SeedSeason, ParticipantID: "alice", PlayerID: "kc-qb-1"}
	if _, err := f.ledger.RecordFirstUse(ctx, key, 1); err != nil {
		t.Fatalf("record first use: %v", err)
	}
	seedPick(t, f.picks, testLeague, 3, "alice", map[pick.Slot]pick.SlotPick{
		pick.SlotQB: {PlayerID: "kc-qb-1", GameID: memory.SeedGameID(3, 1), Locked: true},
		pick.SlotWR: {PlayerID: "buf-wr-1", GameID: memory.SeedGameID(3, 2), Locked: true},
	})
	f.provider.setLine(memory.SeedGameID(3, 1), game.StatusFinal, "kc-qb-1", scoring.StatLine{PassingYards: 400, PassingTD: 4})
	f.provider.setLine(memory.SeedGameID(3, 2), game.StatusFinal, "buf-wr-1", scoring.StatLine{ReceivingYards: 50, Receptions: 5})

	result, err := f.scoringSvc.ScoreWeek(ctx, testLeague, 3)
	if err != nil {
		t.Fatalf("score week: %v", err)
	}
	if result.DoublePicks != 1 {
		t.Fatalf("expected one double pick, got %+v", result)
	}

	score, _, _ := f.scores.Get(ctx, testLeague, 3, "alice")
	if score.SlotPoints[pick.SlotQB] != 0 {
		t.Fatalf("expected zero for double pick, got %v", score.SlotPoints[pick.SlotQB])
	}
	if len(score.DoublePickSlots) != 1 || score.DoublePickSlots[0] != pick.SlotQB {
		t.Fatalf("expected QB flagged, got %+v", score.DoublePickSlots)
	}
	if score.Total != 10 {
		t.Fatalf("expected total from WR only, got %v", score.Total)
	}

	rec, _, _ := f.usages.Get(ctx, key)
	if rec.FirstUsedWeek != 1 {
		t.Fatalf("usage record must not be overwritten, got %+v", rec)
	}
}

func TestScoringService_ScoreWeek_TransientFailureKeepsPriorPoints(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.September, 14, 9, 0, 0, 0, time.UTC)
	f := newPickemFixture(t, &now)
	ctx := context.Background()

	seedPick(t, f.picks, testLeague, 1, "alice", map[pick.Slot]pick.SlotPick{
		pick.SlotQB: {PlayerID: "kc-qb-1", GameID: memory.SeedGameID(1, 1), Locked: true},
		pick.SlotRB: {PlayerID: "phi-rb-1", GameID: memory.SeedGameID(1, 2), Locked: true},
	})
	f.provider.setLine(memory.SeedGameID(1, 1), game.StatusInProgress, "kc-qb-1", scoring.StatLine{PassingYards: 100})
	f.provider.setLine(memory.SeedGameID(1, 2), game.StatusInProgress, "phi-rb-1", scoring.StatLine{RushingYards: 50})

	if _, err := f.scoringSvc.ScoreWeek(ctx, testLeague, 1); err != nil {
		t.Fatalf("first score week: %v", err)
	}

	f.provider.setError(memory.SeedGameID(1, 2), errors.Join(ErrTransientProvider, errors.New("503")))
	f.provider.setLine(memory.SeedGameID(1, 1), game.StatusFinal, "kc-qb-1", scoring.StatLine{PassingYards: 150})

	result, err := f.scoringSvc.ScoreWeek(ctx, testLeague, 1)
	if err != nil {
		t.Fatalf("score week with transient failure: %v", err)
	}
	if result.UnscoredSlots != 1 || result.Finalized {
		t.Fatalf("unexpected result: %+v", result)
	}

	score, _, _ := f.scores.Get(ctx, testLeague, 1, "alice")
	if score.SlotPoints[pick.SlotRB] != 5 {
		t.Fatalf("expected prior RB points kept, got %v", score.SlotPoints[pick.SlotRB])
	}
	if score.SlotPoints[pick.SlotQB] != 6 {
		t.Fatalf("expected refreshed QB points, got %v", score.SlotPoints[pick.SlotQB])
	}
	if len(score.UnscoredSlots) != 1 || score.UnscoredSlots[0] != pick.SlotRB {
		t.Fatalf("expected RB unscored, got %+v", score.UnscoredSlots)
	}
}

func TestScoringService_ScoreWeek_MissingStatsScoreZero(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.September, 13, 18, 0, 0, 0, time.UTC)
	f := newPickemFixture(t, &now)

	seedPick(t, f.picks, testLeague, 1, "alice", map[pick.Slot]pick.SlotPick{
		pick.SlotWR: {PlayerID: "kc-wr-1", GameID: memory.SeedGameID(1, 1), Locked: true},
	})

	result, err := f.scoringSvc.ScoreWeek(context.Background(), testLeague, 1)
	if err != nil {
		t.Fatalf("score week: %v", err)
	}
	if result.Written != 1 || result.UnscoredSlots != 0 || result.Finalized {
		t.Fatalf("unexpected result: %+v", result)
	}
	score, _, _ := f.scores.Get(context.Background(), testLeague, 1, "alice")
	if score.Total != 0 {
		t.Fatalf("expected zero total, got %v", score.Total)
	}
}

func TestScoringService_ScoreWeek_ConcurrentRunConflicts(t *testing.T) {
	t.Parallel()

	now := weekOneMorning()
	f := newPickemFixture(t, &now)

	unlock, ok := f.locks.TryLock(scoreWeekLockKey(testLeague, 1))
	if !ok {
		t.Fatalf("expected to take scoring lock")
	}
	defer unlock()

	if _, err := f.scoringSvc.ScoreWeek(context.Background(), testLeague, 1); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := f.scoringSvc.ScoreWeek(context.Background(), testLeague, 2); err != nil {
		t.Fatalf("other week should score independently: %v", err)
	}
}

func TestScoringService_ScoreWeek_RejectsBackfilledWeek(t *testing.T) {
	t.Parallel()

	now := weekOneMorning()
	f := newPickemFixture(t, &now)
	if err := f.weeks.Upsert(context.Background(), week.Record{LeagueID: testLeague, Week: 1, Status: week.StatusBackfilled}); err != nil {
		t.Fatalf("seed week record: %v", err)
	}

	if _, err := f.scoringSvc.ScoreWeek(context.Background(), testLeague, 1); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for backfilled week, got %v", err)
	}
}

// flakyScoreRepository fails Upsert for one participant and delegates everything else.
type flakyScoreRepository struct {
	scoring.Repository
	failFor string
}

func (r flakyScoreRepository) Upsert(ctx context.Context, item scoring.Score) error {
	if item.ParticipantID == r.failFor {
		return errors.New("db timeout")
	}
	return r.Repository.Upsert(ctx, item)
}

func TestScoringService_ScoreWeek_ParticipantWriteFailureDoesNotStopBatch(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.September, 13, 21, 30, 0, 0, time.UTC)
	f := newPickemFixture(t, &now)
	ctx := context.Background()

	svc := NewScoringService(
		f.leagues, f.games, f.picks,
		flakyScoreRepository{Repository: f.scores, failFor: "alice"},
		f.weeks, f.ledger, f.standingSvc, f.provider, f.locks,
		ScoringServiceConfig{MaxWorkers: 2}, logging.NewNop(),
	)
	svc.now = f.now

	seedPick(t, f.picks, testLeague, 1, "alice", map[pick.Slot]pick.SlotPick{
		pick.SlotQB: {PlayerID: "kc-qb-1", GameID: memory.SeedGameID(1, 1), Locked: true},
	})
	seedPick(t, f.picks, testLeague, 1, "bob", map[pick.Slot]pick.SlotPick{
		pick.SlotRB: {PlayerID: "phi-rb-1", GameID: memory.SeedGameID(1, 2), Locked: true},
	})
	f.provider.setLine(memory.SeedGameID(1, 1), game.StatusFinal, "kc-qb-1", scoring.StatLine{PassingYards: 100})
	f.provider.setLine(memory.SeedGameID(1, 2), game.StatusFinal, "phi-rb-1", scoring.StatLine{RushingYards: 50})

	result, err := svc.ScoreWeek(ctx, testLeague, 1)
	if err != nil {
		t.Fatalf("score week: %v", err)
	}
	if result.Written != 1 || result.Errored != 1 || len(result.Entries) != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Finalized {
		t.Fatalf("week must stay open while a participant errored")
	}
	if !result.StandingsRecomputed {
		t.Fatalf("expected standings recomputed for written scores")
	}

	statuses := make(map[string]ScoreEntryResult, len(result.Entries))
	for _, entry := range result.Entries {
		statuses[entry.ParticipantID] = entry
	}
	if got := statuses["alice"]; got.Status != EntryStatusErrored || got.Error == "" {
		t.Fatalf("expected alice errored with reason, got %+v", got)
	}
	if got := statuses["bob"]; got.Status != EntryStatusScored {
		t.Fatalf("expected bob scored, got %+v", got)
	}

	if _, exists, _ := f.scores.Get(ctx, testLeague, 1, "bob"); !exists {
		t.Fatalf("expected bob's score written")
	}
	standings, err := f.standingSvc.ListByLeague(ctx, testLeague)
	if err != nil {
		t.Fatalf("list standings: %v", err)
	}
	if len(standings) != 1 || standings[0].ParticipantID != "bob" {
		t.Fatalf("unexpected standings: %+v", standings)
	}
}

func TestScoringService_ScoreWeek_EmptyPickWritesZeroScore(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.September, 13, 21, 30, 0, 0, time.UTC)
	f := newPickemFixture(t, &now)
	ctx := context.Background()

	seedPick(t, f.picks, testLeague, 1, "carol", nil)

	result, err := f.scoringSvc.ScoreWeek(ctx, testLeague, 1)
	if err != nil {
		t.Fatalf("score week: %v", err)
	}
	if result.Written != 1 || len(result.Entries) != 1 || result.Entries[0].Status != EntryStatusScored {
		t.Fatalf("unexpected result: %+v", result)
	}
	score, exists, err := f.scores.Get(ctx, testLeague, 1, "carol")
	if err != nil || !exists {
		t.Fatalf("get score: exists=%v err=%v", exists, err)
	}
	if score.Total != 0 || len(score.SlotPoints) != 0 {
		t.Fatalf("expected empty zero score, got %+v", score)
	}

	again, err := f.scoringSvc.ScoreWeek(ctx, testLeague, 1)
	if err != nil {
		t.Fatalf("rescore week: %v", err)
	}
	if again.Unchanged != 1 || again.Written != 0 {
		t.Fatalf("expected unchanged rescore, got %+v", again)
	}
}
