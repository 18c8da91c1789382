package game

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusFinal      Status = "final"
)

// Game is one scheduled NFL game. Only status and kickoff change after creation.
type Game struct {
	ID         string
	Season     int
	Week       int
	HomeTeamID string
	AwayTeamID string
	KickoffAt  time.Time
	Status     Status
	UpdatedAt  time.Time
}

func (g Game) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return fmt.Errorf("game id is required")
	}
	if g.Season <= 0 {
		return fmt.Errorf("game season must be > 0")
	}
	if g.Week <= 0 {
		return fmt.Errorf("game week must be > 0")
	}
	if strings.TrimSpace(g.HomeTeamID) == "" || strings.TrimSpace(g.AwayTeamID) == "" {
		return fmt.Errorf("game teams are required")
	}
	if g.HomeTeamID == g.AwayTeamID {
		return fmt.Errorf("game home and away teams must differ")
	}
	if g.KickoffAt.IsZero() {
		return fmt.Errorf("game kickoff is required")
	}
	return nil
}

// HasTeam reports whether teamID plays in this game.
func (g Game) HasTeam(teamID string) bool {
	teamID = strings.TrimSpace(teamID)
	return teamID != "" && (g.HomeTeamID == teamID || g.AwayTeamID == teamID)
}

// LockAt is the instant after which picks on this game can no longer change.
func (g Game) LockAt(lead time.Duration) time.Time {
	return g.KickoffAt.Add(-lead)
}

func (g Game) IsLocked(now time.Time, lead time.Duration) bool {
	return now.After(g.LockAt(lead))
}

func (g Game) IsFinal() bool {
	return g.Status == StatusFinal
}

func NormalizeStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "final", "final_ot", "finished", "post", "closed", "complete":
		return StatusFinal
	case "in_progress", "inprogress", "live", "in", "halftime":
		return StatusInProgress
	default:
		return StatusScheduled
	}
}
