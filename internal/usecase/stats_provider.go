package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/game"
	"github.com/riskibarqy/pickem-league/internal/domain/scoring"
	"github.com/sourcegraph/conc/pool"
)

type PlayerStatLine struct {
	PlayerID string
	Line     scoring.StatLine
}

// GameStats is the provider's box score for one game. Lines may be partial or empty
// until the game is final.
type GameStats struct {
	GameID string
	Status game.Status
	Lines  []PlayerStatLine
}

func (g GameStats) LineFor(playerID string) (scoring.StatLine, bool) {
	for _, item := range g.Lines {
		if item.PlayerID == playerID {
			return item.Line, true
		}
	}
	return scoring.StatLine{}, false
}

type ScheduledGame struct {
	GameID     string
	HomeTeamID string
	AwayTeamID string
	KickoffAt  time.Time
	Status     game.Status
}

// StatsProvider is the external box-score source. Implementations retry internally and
// wrap ErrTransientProvider once retries are exhausted.
type StatsProvider interface {
	FetchGameStats(ctx context.Context, gameID string) (GameStats, error)
	FetchWeekSchedule(ctx context.Context, season, week int) ([]ScheduledGame, error)
}

type gameStatsFetch struct {
	gameID string
	stats  GameStats
	err    error
}

// fetchStatsByGame fetches each distinct game once, at most maxWorkers at a time.
func fetchStatsByGame(ctx context.Context, provider StatsProvider, gameIDs []string, maxWorkers int) map[string]gameStatsFetch {
	out := make(map[string]gameStatsFetch, len(gameIDs))
	if len(gameIDs) == 0 {
		return out
	}
	if provider == nil {
		for _, gameID := range uniqueStrings(gameIDs) {
			out[gameID] = gameStatsFetch{gameID: gameID, err: fmt.Errorf("%w: stats provider is not configured", ErrDependencyUnavailable)}
		}
		return out
	}
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	p := pool.NewWithResults[gameStatsFetch]().WithMaxGoroutines(maxWorkers)
	for _, gameID := range uniqueStrings(gameIDs) {
		p.Go(func() gameStatsFetch {
			stats, err := provider.FetchGameStats(ctx, gameID)
			return gameStatsFetch{gameID: gameID, stats: stats, err: err}
		})
	}
	for _, item := range p.Wait() {
		out[item.gameID] = item
	}
	return out
}

func uniqueStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
