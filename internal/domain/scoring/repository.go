package scoring

import "context"

type Repository interface {
	Get(ctx context.Context, leagueID string, week int, participantID string) (Score, bool, error)
	ListByWeek(ctx context.Context, leagueID string, week int) ([]Score, error)
	ListByLeague(ctx context.Context, leagueID string) ([]Score, error)
	Upsert(ctx context.Context, item Score) error
}
