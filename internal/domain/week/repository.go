package week

import "context"

type Repository interface {
	Get(ctx context.Context, leagueID string, week int) (Record, bool, error)
	ListByLeague(ctx context.Context, leagueID string) ([]Record, error)
	Upsert(ctx context.Context, item Record) error
}
