package player

import "context"

// Repository describes player reads needed by pick intake and backfill.
type Repository interface {
	GetByID(ctx context.Context, playerID string) (Player, bool, error)
	List(ctx context.Context) ([]Player, error)
	Upsert(ctx context.Context, item Player) error
}
