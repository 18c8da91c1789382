package usecase

import (
	"strings"
	"testing"

	"github.com/riskibarqy/pickem-league/internal/domain/player"
)

func TestPlayerResolver_Resolve(t *testing.T) {
	t.Parallel()

	resolver := newPlayerResolver([]player.Player{
		{ID: "kc-qb-1", Name: "Patrick Mahomes", TeamID: "KC", Position: player.PositionQuarterback},
		{ID: "buf-qb-1", Name: "Josh Allen", TeamID: "BUF", Position: player.PositionQuarterback},
		{ID: "phi-wr-1", Name: "A.J. Brown", TeamID: "PHI", Position: player.PositionWideReceiver},
	})

	tests := []struct {
		name      string
		playerID  string
		player    string
		wantID    string
		wantError string
	}{
		{name: "by id", playerID: "buf-qb-1", wantID: "buf-qb-1"},
		{name: "unknown id", playerID: "nope", wantError: "unknown player id"},
		{name: "exact name case insensitive", player: "  patrick   MAHOMES ", wantID: "kc-qb-1"},
		{name: "typo within threshold", player: "Patrick Mahomees", wantID: "kc-qb-1"},
		{name: "too far", player: "Lamar Jackson", wantError: "closest"},
		{name: "empty", wantError: "required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolver.Resolve(tc.playerID, tc.player)
			if tc.wantError != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantError) {
					t.Fatalf("expected error containing %q, got %v", tc.wantError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got.ID != tc.wantID {
				t.Fatalf("unexpected player: got=%s want=%s", got.ID, tc.wantID)
			}
		})
	}
}

func TestNameSimilarity(t *testing.T) {
	t.Parallel()

	if got := nameSimilarity("josh allen", "josh allen"); got != 1 {
		t.Fatalf("expected identical names to score 1, got %v", got)
	}
	if got := nameSimilarity("josh allen", "josh alen"); got < minNameSimilarity {
		t.Fatalf("expected one-letter typo above threshold, got %v", got)
	}
}
