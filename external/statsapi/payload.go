package statsapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/game"
	"github.com/riskibarqy/pickem-league/internal/domain/scoring"
	"github.com/riskibarqy/pickem-league/internal/usecase"
)

type boxScoreEnvelope struct {
	GameID  string          `json:"game_id"`
	Status  string          `json:"status"`
	Players []boxScoreEntry `json:"players"`
}

type boxScoreEntry struct {
	PlayerID string           `json:"player_id"`
	Stats    scoring.StatLine `json:"stats"`
}

func (e boxScoreEnvelope) toGameStats(requestedID string) usecase.GameStats {
	gameID := strings.TrimSpace(e.GameID)
	if gameID == "" {
		gameID = requestedID
	}

	out := usecase.GameStats{
		GameID: gameID,
		Status: game.NormalizeStatus(e.Status),
		Lines:  make([]usecase.PlayerStatLine, 0, len(e.Players)),
	}
	for _, entry := range e.Players {
		playerID := strings.TrimSpace(entry.PlayerID)
		if playerID == "" {
			continue
		}
		out.Lines = append(out.Lines, usecase.PlayerStatLine{PlayerID: playerID, Line: entry.Stats})
	}
	return out
}

type scheduleEnvelope struct {
	Games []scheduleEntry `json:"games"`
}

type scheduleEntry struct {
	GameID     string `json:"game_id"`
	HomeTeamID string `json:"home_team"`
	AwayTeamID string `json:"away_team"`
	KickoffAt  string `json:"kickoff_at"`
	Status     string `json:"status"`
}

func (e scheduleEntry) toScheduledGame() (usecase.ScheduledGame, error) {
	gameID := strings.TrimSpace(e.GameID)
	if gameID == "" {
		return usecase.ScheduledGame{}, fmt.Errorf("game id is empty")
	}
	kickoff, err := time.Parse(time.RFC3339, strings.TrimSpace(e.KickoffAt))
	if err != nil {
		return usecase.ScheduledGame{}, fmt.Errorf("parse kickoff %q: %w", e.KickoffAt, err)
	}
	return usecase.ScheduledGame{
		GameID:     gameID,
		HomeTeamID: strings.ToUpper(strings.TrimSpace(e.HomeTeamID)),
		AwayTeamID: strings.ToUpper(strings.TrimSpace(e.AwayTeamID)),
		KickoffAt:  kickoff.UTC(),
		Status:     game.NormalizeStatus(e.Status),
	}, nil
}
