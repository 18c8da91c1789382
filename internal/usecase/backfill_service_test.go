package usecase

import (
	"context"
	"errors"
	"strings"
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

func afterSeason() time.Time {
	return time.Date(2026, time.December, 1, 12, 0, 0, 0, time.UTC)
}

func entryFor(t *testing.T, result BackfillWeekResult, participantID string) BackfillEntryResult {
	t.Helper()
	for _, item := range result.Entries {
		if item.ParticipantID == participantID {
			return item
		}
	}
	t.Fatalf("no entry for %s", participantID)
	return BackfillEntryResult{}
}

func TestBackfillService_EnableBackfill(t *testing.T) {
	t.Parallel()

	now := afterSeason()
	f := newPickemFixture(t, &now)
	ctx := context.Background()

	if err := f.weeks.Upsert(ctx, week.Record{LeagueID: testLeague, Week: 2, Status: week.StatusFinal}); err != nil {
		t.Fatalf("seed final week: %v", err)
	}

	result, err := f.backfillSvc.EnableBackfill(ctx, testLeague, 1, 3)
	if err != nil {
		t.Fatalf("enable backfill: %v", err)
	}
	if len(result.Enabled) != 2 || result.Enabled[0] != 1 || result.Enabled[1] != 3 {
		t.Fatalf("unexpected enabled weeks: %+v", result.Enabled)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != 2 {
		t.Fatalf("unexpected skipped weeks: %+v", result.Skipped)
	}

	record, _, _ := f.weeks.Get(ctx, testLeague, 3)
	if record.Status != week.StatusPendingBackfill {
		t.Fatalf("expected pending_backfill, got %s", record.Status)
	}
	final, _, _ := f.weeks.Get(ctx, testLeague, 2)
	if final.Status != week.StatusFinal {
		t.Fatalf("final week must not be downgraded, got %s", final.Status)
	}

	for _, tc := range []struct{ from, to int }{{0, 2}, {3, 2}, {1, 19}} {
		if _, err := f.backfillSvc.EnableBackfill(ctx, testLeague, tc.from, tc.to); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("range %d..%d: expected ErrInvalidInput, got %v", tc.from, tc.to, err)
		}
	}
}

func TestBackfillService_BackfillWeek_RequiresEnabledWeek(t *testing.T) {
	t.Parallel()

	now := afterSeason()
	f := newPickemFixture(t, &now)

	_, err := f.backfillSvc.BackfillWeek(context.Background(), BackfillWeekInput{
		LeagueID: testLeague,
		Week:     1,
		Members:  []BackfillMemberPicks{{ParticipantID: "alice", Slots: []BackfillSlotEntry{{Slot: "QB", PlayerID: "kc-qb-1"}}}},
	})
	if !errors.Is(err, ErrBackfillNotEnabled) {
		t.Fatalf("expected ErrBackfillNotEnabled, got %v", err)
	}
}

func TestBackfillService_BackfillWeek_ReconcilesMembers(t *testing.T) {
	t.Parallel()

	now := afterSeason()
	f := newPickemFixture(t, &now)
	ctx := context.Background()

	if _, err := f.backfillSvc.EnableBackfill(ctx, testLeague, 1, 2); err != nil {
		t.Fatalf("enable backfill: %v", err)
	}

	f.provider.setLine(memory.SeedGameID(1, 1), game.StatusFinal, "kc-qb-1", scoring.StatLine{PassingYards: 310, PassingTD: 2, Interceptions: 1})
	weekOne, err := f.backfillSvc.BackfillWeek(ctx, BackfillWeekInput{
		LeagueID: testLeague,
		Week:     1,
		Members: []BackfillMemberPicks{
			{ParticipantID: "alice", Slots: []BackfillSlotEntry{{Slot: "QB", PlayerID: "kc-qb-1"}}},
		},
	})
	if err != nil {
		t.Fatalf("backfill week 1: %v", err)
	}
	if alice := entryFor(t, weekOne, "alice"); alice.Status != backfillStatusSuccess || alice.Total != 22.4 {
		t.Fatalf("unexpected week 1 entry: %+v", alice)
	}

	override := 12.34
	f.provider.setLine(memory.SeedGameID(2, 2), game.StatusFinal, "kc-qb-1", scoring.StatLine{PassingYards: 300})
	weekTwo, err := f.backfillSvc.BackfillWeek(ctx, BackfillWeekInput{
		LeagueID: testLeague,
		Week:     2,
		Members: []BackfillMemberPicks{
			{ParticipantID: "alice", Slots: []BackfillSlotEntry{
				{Slot: "QB", PlayerID: "kc-qb-1"},
				{Slot: "RB", PlayerName: "james cook"},
			}},
			{ParticipantID: "bob", Slots: []BackfillSlotEntry{
				{Slot: "QB", PlayerName: "Nobody Atall"},
			}},
			{ParticipantID: "carol", Slots: []BackfillSlotEntry{
				{Slot: "QB", PlayerName: "Josh Alen", PointsOverride: &override},
				{Slot: "TE", PlayerID: "kc-te-1"},
			}},
		},
	})
	if err != nil {
		t.Fatalf("backfill week 2: %v", err)
	}
	if weekTwo.RunID == "" || weekTwo.Processed != 3 || !weekTwo.StandingsRecomputed {
		t.Fatalf("unexpected batch result: %+v", weekTwo)
	}
	if weekTwo.SuccessCount != 1 || weekTwo.PartialCount != 1 || weekTwo.FailedCount != 1 {
		t.Fatalf("unexpected status counts: %+v", weekTwo)
	}

	alice := entryFor(t, weekTwo, "alice")
	if alice.Status != backfillStatusSuccess || len(alice.DoublePickSlots) != 1 || alice.DoublePickSlots[0] != "QB" {
		t.Fatalf("expected QB double pick for alice, got %+v", alice)
	}
	if len(alice.Warnings) != 2 || !strings.Contains(strings.Join(alice.Warnings, "|"), "already used in week 1") {
		t.Fatalf("expected reuse and missing-stats warnings, got %+v", alice.Warnings)
	}

	bob := entryFor(t, weekTwo, "bob")
	if bob.Status != backfillStatusFailed || len(bob.Errors) != 1 {
		t.Fatalf("expected bob to fail with one error, got %+v", bob)
	}

	carol := entryFor(t, weekTwo, "carol")
	if carol.Status != backfillStatusPartial || carol.Total != 12.3 || carol.SlotsWritten != 1 {
		t.Fatalf("unexpected carol entry: %+v", carol)
	}

	key := usage.Key{LeagueID: testLeague, Season: memory.SeedSeason, ParticipantID: "alice", PlayerID: "kc-qb-1"}
	rec, _, _ := f.usages.Get(ctx, key)
	if rec.FirstUsedWeek != 1 {
		t.Fatalf("backfill must not rewrite usage, got %+v", rec)
	}
	records, _ := f.usages.ListByParticipant(ctx, testLeague, memory.SeedSeason, "alice")
	if len(records) != 2 {
		t.Fatalf("expected no duplicate usage records, got %+v", records)
	}

	stored, _, _ := f.picks.Get(ctx, testLeague, 2, "alice")
	for _, slot := range []pick.Slot{pick.SlotQB, pick.SlotRB} {
		sp, ok := stored.Slot(slot)
		if !ok || !sp.Locked {
			t.Fatalf("expected locked backfilled slot %s, got %+v", slot, sp)
		}
	}

	score, _, _ := f.scores.Get(ctx, testLeague, 2, "alice")
	if score.Source != scoring.SourceBackfill || score.Total != 0 {
		t.Fatalf("unexpected backfilled score: %+v", score)
	}

	record, _, _ := f.weeks.Get(ctx, testLeague, 2)
	if record.Status != week.StatusBackfilled {
		t.Fatalf("expected week backfilled, got %s", record.Status)
	}

	standings, _ := f.standingSvc.ListByLeague(ctx, testLeague)
	if len(standings) != 2 || standings[0].ParticipantID != "alice" || standings[0].SeasonTotalPoints != 22.4 {
		t.Fatalf("unexpected standings: %+v", standings)
	}
}

func TestBackfillService_BackfillWeek_SyncsMissingSchedule(t *testing.T) {
	t.Parallel()

	now := afterSeason()
	f := newPickemFixture(t, &now)
	ctx := context.Background()

	kickoff := time.Date(2026, time.October, 4, 17, 0, 0, 0, time.UTC)
	f.provider.schedule[4] = []ScheduledGame{
		{GameID: "2026-w04-g1", HomeTeamID: "PHI", AwayTeamID: "KC", KickoffAt: kickoff, Status: game.StatusFinal},
	}
	f.provider.setLine("2026-w04-g1", game.StatusFinal, "phi-wr-1", scoring.StatLine{ReceivingYards: 120, ReceivingTD: 1, Receptions: 8})

	if _, err := f.backfillSvc.EnableBackfill(ctx, testLeague, 4, 4); err != nil {
		t.Fatalf("enable backfill: %v", err)
	}
	result, err := f.backfillSvc.BackfillWeek(ctx, BackfillWeekInput{
		LeagueID: testLeague,
		Week:     4,
		Members:  []BackfillMemberPicks{{ParticipantID: "dave", Slots: []BackfillSlotEntry{{Slot: "WR", PlayerID: "phi-wr-1"}}}},
	})
	if err != nil {
		t.Fatalf("backfill week 4: %v", err)
	}

	dave := entryFor(t, result, "dave")
	if dave.Status != backfillStatusSuccess || dave.Total != 29 {
		t.Fatalf("unexpected entry: %+v", dave)
	}
	if _, exists, _ := f.games.GetByID(ctx, "2026-w04-g1"); !exists {
		t.Fatalf("expected schedule sync to store the game")
	}
}

func TestBackfillService_BackfillWeek_ValidatesInput(t *testing.T) {
	t.Parallel()

	now := afterSeason()
	f := newPickemFixture(t, &now)

	tests := []BackfillWeekInput{
		{LeagueID: testLeague, Week: 1},
		{LeagueID: testLeague, Week: 1, Members: []BackfillMemberPicks{{ParticipantID: " "}}},
		{LeagueID: testLeague, Week: 1, Members: []BackfillMemberPicks{{ParticipantID: "a"}, {ParticipantID: "a"}}},
	}
	for i, input := range tests {
		if _, err := f.backfillSvc.BackfillWeek(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestBackfillService_BackfillWeek_RerunKeepsStoredSlots(t *testing.T) {
	t.Parallel()

	now := afterSeason()
	f := newPickemFixture(t, &now)
	ctx := context.Background()

	if _, err := f.backfillSvc.EnableBackfill(ctx, testLeague, 1, 1); err != nil {
		t.Fatalf("enable backfill: %v", err)
	}

	qb, rb := 10.0, 5.0
	if _, err := f.backfillSvc.BackfillWeek(ctx, BackfillWeekInput{
		LeagueID: testLeague,
		Week:     1,
		Members: []BackfillMemberPicks{{ParticipantID: "alice", Slots: []BackfillSlotEntry{
			{Slot: "QB", PlayerID: "kc-qb-1", PointsOverride: &qb},
			{Slot: "RB", PlayerID: "phi-rb-1", PointsOverride: &rb},
		}}},
	}); err != nil {
		t.Fatalf("first backfill: %v", err)
	}

	corrected := 12.0
	result, err := f.backfillSvc.BackfillWeek(ctx, BackfillWeekInput{
		LeagueID: testLeague,
		Week:     1,
		Members: []BackfillMemberPicks{{ParticipantID: "alice", Slots: []BackfillSlotEntry{
			{Slot: "QB", PlayerID: "kc-qb-1", PointsOverride: &corrected},
		}}},
	})
	if err != nil {
		t.Fatalf("second backfill: %v", err)
	}
	if alice := entryFor(t, result, "alice"); alice.Status != backfillStatusSuccess || alice.Total != 17 {
		t.Fatalf("unexpected rerun entry: %+v", alice)
	}

	stored, _, _ := f.picks.Get(ctx, testLeague, 1, "alice")
	score, _, _ := f.scores.Get(ctx, testLeague, 1, "alice")
	for _, slot := range []pick.Slot{pick.SlotQB, pick.SlotRB} {
		if _, ok := stored.Slot(slot); !ok {
			t.Fatalf("expected %s on stored pick", slot)
		}
		if _, ok := score.SlotPoints[slot]; !ok {
			t.Fatalf("expected %s on score, got %+v", slot, score.SlotPoints)
		}
	}
	if score.SlotPoints[pick.SlotQB] != 12 || score.SlotPoints[pick.SlotRB] != 5 || score.Total != 17 {
		t.Fatalf("unexpected score: %+v", score)
	}
	if f.provider.total.Load() != 0 {
		t.Fatalf("overrides and prior points must not hit the provider, got %d calls", f.provider.total.Load())
	}
}

func TestBackfillService_BackfillWeek_LockedSlotConflictStillScored(t *testing.T) {
	t.Parallel()

	now := afterSeason()
	f := newPickemFixture(t, &now)
	ctx := context.Background()

	lockedAt := memory.SeedWeekOneKickoff.Add(-time.Hour)
	seedPick(t, f.picks, testLeague, 1, "alice", map[pick.Slot]pick.SlotPick{
		pick.SlotQB: {PlayerID: "kc-qb-1", GameID: memory.SeedGameID(1, 1), Locked: true, LockedAt: &lockedAt},
	})
	f.provider.setLine(memory.SeedGameID(1, 1), game.StatusFinal, "kc-qb-1", scoring.StatLine{PassingYards: 100})
	if _, err := f.backfillSvc.EnableBackfill(ctx, testLeague, 1, 1); err != nil {
		t.Fatalf("enable backfill: %v", err)
	}

	rb := 5.0
	result, err := f.backfillSvc.BackfillWeek(ctx, BackfillWeekInput{
		LeagueID: testLeague,
		Week:     1,
		Members: []BackfillMemberPicks{{ParticipantID: "alice", Slots: []BackfillSlotEntry{
			{Slot: "QB", PlayerID: "buf-qb-1"},
			{Slot: "RB", PlayerID: "phi-rb-1", PointsOverride: &rb},
		}}},
	})
	if err != nil {
		t.Fatalf("backfill week: %v", err)
	}

	alice := entryFor(t, result, "alice")
	if alice.Status != backfillStatusPartial || alice.SlotsWritten != 1 || len(alice.Errors) != 1 {
		t.Fatalf("unexpected entry: %+v", alice)
	}
	if !strings.Contains(alice.Errors[0], "already locked with player kc-qb-1") {
		t.Fatalf("unexpected error: %v", alice.Errors)
	}

	stored, _, _ := f.picks.Get(ctx, testLeague, 1, "alice")
	if sp, _ := stored.Slot(pick.SlotQB); sp.PlayerID != "kc-qb-1" {
		t.Fatalf("locked QB must be kept, got %+v", sp)
	}
	score, _, _ := f.scores.Get(ctx, testLeague, 1, "alice")
	if score.SlotPoints[pick.SlotQB] != 4 || score.SlotPoints[pick.SlotRB] != 5 || score.Total != 9 {
		t.Fatalf("expected score over both stored slots, got %+v", score)
	}

	key := usage.Key{LeagueID: testLeague, Season: memory.SeedSeason, ParticipantID: "alice", PlayerID: "buf-qb-1"}
	if _, exists, _ := f.usages.Get(ctx, key); exists {
		t.Fatalf("rejected slot must not claim usage")
	}
}

// failingPickRepository rejects every write.
type failingPickRepository struct {
	pick.Repository
}

func (failingPickRepository) Upsert(context.Context, pick.Pick) error {
	return errors.New("db unavailable")
}

func TestBackfillService_BackfillWeek_PickWriteFailureLeavesNoUsage(t *testing.T) {
	t.Parallel()

	now := afterSeason()
	f := newPickemFixture(t, &now)
	ctx := context.Background()

	svc := NewBackfillService(
		f.leagues, f.players, f.games, failingPickRepository{Repository: f.picks}, f.scores, f.weeks,
		f.ledger, f.standingSvc, f.provider, f.scheduleSvc, nil, f.locks,
		BackfillServiceConfig{MaxWorkers: 1, StatsMaxWorkers: 1}, logging.NewNop(),
	)
	svc.now = f.now
	if _, err := svc.EnableBackfill(ctx, testLeague, 1, 1); err != nil {
		t.Fatalf("enable backfill: %v", err)
	}

	points := 8.0
	result, err := svc.BackfillWeek(ctx, BackfillWeekInput{
		LeagueID: testLeague,
		Week:     1,
		Members: []BackfillMemberPicks{{ParticipantID: "alice", Slots: []BackfillSlotEntry{
			{Slot: "QB", PlayerID: "kc-qb-1", PointsOverride: &points},
		}}},
	})
	if err != nil {
		t.Fatalf("backfill week: %v", err)
	}
	if alice := entryFor(t, result, "alice"); alice.Status != backfillStatusFailed {
		t.Fatalf("expected failed entry, got %+v", alice)
	}

	key := usage.Key{LeagueID: testLeague, Season: memory.SeedSeason, ParticipantID: "alice", PlayerID: "kc-qb-1"}
	if _, exists, _ := f.usages.Get(ctx, key); exists {
		t.Fatalf("usage must not be recorded when the pick was not stored")
	}
	if _, exists, _ := f.scores.Get(ctx, testLeague, 1, "alice"); exists {
		t.Fatalf("score must not be written when the pick was not stored")
	}
}
