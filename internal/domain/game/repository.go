package game

import (
	"context"
	"time"
)

// Repository exposes game reads for locking and scoring, plus the upsert used by schedule sync.
type Repository interface {
	GetByID(ctx context.Context, gameID string) (Game, bool, error)
	ListByIDs(ctx context.Context, gameIDs []string) ([]Game, error)
	ListByWeek(ctx context.Context, season, week int) ([]Game, error)
	ListKickoffBetween(ctx context.Context, from, to time.Time) ([]Game, error)
	Upsert(ctx context.Context, item Game) error
}
