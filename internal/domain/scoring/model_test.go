package scoring

import (
	"testing"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/pick"
)

func TestScore_TotalIsSumOfSlots(t *testing.T) {
	t.Parallel()

	s := NewScore("league-1", 3, "user-1", SourceLive)
	s.SetSlot(pick.SlotQB, 22.4)
	s.SetSlot(pick.SlotRB, 34.7)
	s.SetSlot(pick.SlotWR, 0.1)
	if s.Total != 57.2 {
		t.Fatalf("unexpected total: got=%v want=57.2", s.Total)
	}

	s.FlagDoublePick(pick.SlotRB)
	if s.Total != 22.5 {
		t.Fatalf("unexpected total after double pick: got=%v want=22.5", s.Total)
	}
	if len(s.DoublePickSlots) != 1 || s.DoublePickSlots[0] != pick.SlotRB {
		t.Fatalf("unexpected double pick slots: %+v", s.DoublePickSlots)
	}
}

func TestScore_SameResultIgnoresTimestamp(t *testing.T) {
	t.Parallel()

	a := NewScore("league-1", 3, "user-1", SourceLive)
	a.SetSlot(pick.SlotQB, 10)
	a.MarkUnscored(pick.SlotWR)
	a.MarkUnscored(pick.SlotQB)
	a.ScoredAt = time.Now()

	b := a.Clone()
	b.ScoredAt = a.ScoredAt.Add(time.Hour)
	if !a.SameResult(b) {
		t.Fatalf("expected scores to match")
	}
	if a.UnscoredSlots[0] != pick.SlotQB {
		t.Fatalf("expected slots sorted in slot order, got %+v", a.UnscoredSlots)
	}

	b.SetSlot(pick.SlotRB, 0)
	if a.SameResult(b) {
		t.Fatalf("expected extra slot entry to change the result")
	}
}
