package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/usage"
	usagemock "github.com/riskibarqy/pickem-league/internal/mocks/domain/usage"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func ledgerKey() usage.Key {
	return usage.Key{LeagueID: "sunday-six-2026", Season: 2026, ParticipantID: "alice", PlayerID: "kc-qb-1"}
}

func TestUsageLedger_RecordFirstUse_CreatesRecordUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := usagemock.NewRepository(t)
	ledger := NewUsageLedger(repo, logging.NewNop())
	recordedAt := time.Date(2026, time.September, 12, 9, 0, 0, 0, time.UTC)
	ledger.now = func() time.Time { return recordedAt }

	want := usage.Record{Key: ledgerKey(), FirstUsedWeek: 1, RecordedAt: recordedAt}
	repo.
		On("CreateIfAbsent", mock.Anything, want).
		Return(want, true, nil).
		Once()

	got, err := ledger.RecordFirstUse(ctx, ledgerKey(), 1)
	if err != nil {
		t.Fatalf("record first use: %v", err)
	}
	if got.FirstUsedWeek != 1 {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestUsageLedger_RecordFirstUse_KeepsExistingRecordUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := usagemock.NewRepository(t)
	ledger := NewUsageLedger(repo, logging.NewNop())

	existing := usage.Record{Key: ledgerKey(), FirstUsedWeek: 2}
	repo.
		On("CreateIfAbsent", mock.Anything, mock.MatchedBy(func(r usage.Record) bool { return r.FirstUsedWeek == 4 })).
		Return(existing, false, nil).
		Once()

	got, err := ledger.RecordFirstUse(ctx, ledgerKey(), 4)
	if !errors.Is(err, ErrUsageAlreadyRecorded) {
		t.Fatalf("expected ErrUsageAlreadyRecorded, got %v", err)
	}
	if got.FirstUsedWeek != 2 {
		t.Fatalf("expected first write to win, got %+v", got)
	}
}

func TestUsageLedger_HasUsedUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := usagemock.NewRepository(t)
	ledger := NewUsageLedger(repo, logging.NewNop())

	repo.
		On("Get", mock.Anything, ledgerKey()).
		Return(usage.Record{Key: ledgerKey(), FirstUsedWeek: 3}, true, nil).
		Once()

	week, used, err := ledger.HasUsed(ctx, ledgerKey())
	if err != nil {
		t.Fatalf("has used: %v", err)
	}
	if !used || week != 3 {
		t.Fatalf("unexpected result: used=%v week=%d", used, week)
	}
}

func TestUsageLedger_RepositoryErrorUsingMockery(t *testing.T) {
	t.Parallel()

	repo := usagemock.NewRepository(t)
	ledger := NewUsageLedger(repo, logging.NewNop())
	boom := errors.New("connection reset")

	repo.
		On("CreateIfAbsent", mock.Anything, mock.Anything).
		Return(usage.Record{}, false, boom).
		Once()

	if _, _, err := ledger.Claim(context.Background(), ledgerKey(), 1); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped repository error, got %v", err)
	}
}

func TestUsageLedger_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	repo := usagemock.NewRepository(t)
	ledger := NewUsageLedger(repo, logging.NewNop())
	ctx := context.Background()

	missingPlayer := ledgerKey()
	missingPlayer.PlayerID = " "
	if _, _, err := ledger.HasUsed(ctx, missingPlayer); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for key, got %v", err)
	}
	if _, err := ledger.RecordFirstUse(ctx, ledgerKey(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for week, got %v", err)
	}
	if _, err := ledger.ListByParticipant(ctx, "", 2026, "alice"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for list, got %v", err)
	}
}
