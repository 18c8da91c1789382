package pick

import (
	"strings"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/player"
)

// Slot is one of the three weekly position assignments.
type Slot string

const (
	SlotQB Slot = "QB"
	SlotRB Slot = "RB"
	SlotWR Slot = "WR"
)

// AllSlots is the fixed slot order used for output and scoring.
var AllSlots = []Slot{SlotQB, SlotRB, SlotWR}

func ParseSlot(raw string) (Slot, bool) {
	switch Slot(strings.ToUpper(strings.TrimSpace(raw))) {
	case SlotQB:
		return SlotQB, true
	case SlotRB:
		return SlotRB, true
	case SlotWR:
		return SlotWR, true
	default:
		return "", false
	}
}

// CanFill reports whether a player at position may occupy slot. Tight ends fill nothing.
func CanFill(slot Slot, position player.Position) bool {
	switch slot {
	case SlotQB:
		return position == player.PositionQuarterback
	case SlotRB:
		return position == player.PositionRunningBack
	case SlotWR:
		return position == player.PositionWideReceiver
	default:
		return false
	}
}

// SlotPick is a single slot selection. Once Locked is true the selection never changes.
type SlotPick struct {
	PlayerID string
	GameID   string
	Locked   bool
	LockedAt *time.Time
}

func (s SlotPick) IsSet() bool {
	return s.PlayerID != "" && s.GameID != ""
}

// Pick is a participant's selections for one league week.
type Pick struct {
	LeagueID      string
	Week          int
	ParticipantID string
	Slots         map[Slot]SlotPick
	UpdatedAt     time.Time
}

func New(leagueID string, week int, participantID string) Pick {
	return Pick{
		LeagueID:      leagueID,
		Week:          week,
		ParticipantID: participantID,
		Slots:         make(map[Slot]SlotPick, len(AllSlots)),
	}
}

func (p Pick) Slot(slot Slot) (SlotPick, bool) {
	item, ok := p.Slots[slot]
	return item, ok && item.IsSet()
}

func (p Pick) Clone() Pick {
	out := p
	out.Slots = make(map[Slot]SlotPick, len(p.Slots))
	for slot, item := range p.Slots {
		if item.LockedAt != nil {
			lockedAt := *item.LockedAt
			item.LockedAt = &lockedAt
		}
		out.Slots[slot] = item
	}
	return out
}

// LockedSlot identifies a slot flipped to locked by the sweep.
type LockedSlot struct {
	LeagueID      string
	Week          int
	ParticipantID string
	Slot          Slot
	GameID        string
}
