package leaguestanding

import "context"

type Repository interface {
	ListByLeague(ctx context.Context, leagueID string) ([]SeasonStanding, error)
	// ReplaceByLeague swaps the league's full standings set in one step.
	ReplaceByLeague(ctx context.Context, leagueID string, items []SeasonStanding) error
}
