package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/pickem-league/internal/domain/leaguestanding"
)

type LeagueStandingRepository struct {
	mu       sync.RWMutex
	byLeague map[string][]leaguestanding.SeasonStanding
}

func NewLeagueStandingRepository() *LeagueStandingRepository {
	return &LeagueStandingRepository{byLeague: make(map[string][]leaguestanding.SeasonStanding)}
}

func (r *LeagueStandingRepository) ListByLeague(_ context.Context, leagueID string) ([]leaguestanding.SeasonStanding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]leaguestanding.SeasonStanding(nil), r.byLeague[leagueID]...), nil
}

func (r *LeagueStandingRepository) ReplaceByLeague(_ context.Context, leagueID string, items []leaguestanding.SeasonStanding) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byLeague[leagueID] = append([]leaguestanding.SeasonStanding(nil), items...)
	return nil
}
