package pick

import (
	"context"
	"time"
)

type Repository interface {
	Get(ctx context.Context, leagueID string, week int, participantID string) (Pick, bool, error)
	ListByWeek(ctx context.Context, leagueID string, week int) ([]Pick, error)
	Upsert(ctx context.Context, item Pick) error
	// LockSlotsForGames locks every open slot referencing one of gameIDs and returns only
	// the slots that changed. Already locked slots are left untouched.
	LockSlotsForGames(ctx context.Context, gameIDs []string, lockedAt time.Time) ([]LockedSlot, error)
}
