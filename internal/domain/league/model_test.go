package league

import "testing"

func TestLeague_Validate(t *testing.T) {
	t.Parallel()

	valid := League{ID: "l1", Name: "Office", Season: 2026, EntryFee: 50, PayoutPercents: []float64{60, 30, 10}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	over := valid
	over.PayoutPercents = []float64{80, 30}
	if err := over.Validate(); err == nil {
		t.Fatalf("expected error for payouts over 100")
	}

	noSeason := valid
	noSeason.Season = 0
	if err := noSeason.Validate(); err == nil {
		t.Fatalf("expected error for missing season")
	}
}

func TestLeague_Pot(t *testing.T) {
	t.Parallel()

	l := League{EntryFee: 25}
	if got := l.Pot(12); got != 300 {
		t.Fatalf("unexpected pot: got=%v want=300", got)
	}
	if got := l.Pot(0); got != 0 {
		t.Fatalf("unexpected pot for no participants: got=%v", got)
	}
}
