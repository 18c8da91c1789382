package usage

import (
	"fmt"
	"strings"
	"time"
)

// Key identifies one usage fact: a participant's use of a player within a league season.
type Key struct {
	LeagueID      string
	Season        int
	ParticipantID string
	PlayerID      string
}

func (k Key) Validate() error {
	if strings.TrimSpace(k.LeagueID) == "" {
		return fmt.Errorf("league id is required")
	}
	if k.Season <= 0 {
		return fmt.Errorf("season must be > 0")
	}
	if strings.TrimSpace(k.ParticipantID) == "" {
		return fmt.Errorf("participant id is required")
	}
	if strings.TrimSpace(k.PlayerID) == "" {
		return fmt.Errorf("player id is required")
	}
	return nil
}

func (k Key) String() string {
	return fmt.Sprintf("%s::%d::%s::%s", k.LeagueID, k.Season, k.ParticipantID, k.PlayerID)
}

// Record is write-once: the first week a player was used. It is never updated.
type Record struct {
	Key
	FirstUsedWeek int
	RecordedAt    time.Time
}
