package scoring

import (
	"slices"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/pick"
)

type Source string

const (
	SourceLive     Source = "live"
	SourceBackfill Source = "backfill"
)

// Score is one participant's result for a league week. Total is always the sum of SlotPoints.
type Score struct {
	LeagueID        string
	Week            int
	ParticipantID   string
	SlotPoints      map[pick.Slot]float64
	Total           float64
	DoublePickSlots []pick.Slot
	UnscoredSlots   []pick.Slot
	Source          Source
	ScoredAt        time.Time
}

func NewScore(leagueID string, week int, participantID string, source Source) Score {
	return Score{
		LeagueID:      leagueID,
		Week:          week,
		ParticipantID: participantID,
		SlotPoints:    make(map[pick.Slot]float64, len(pick.AllSlots)),
		Source:        source,
	}
}

// SetSlot records points for a slot and keeps Total in sync.
func (s *Score) SetSlot(slot pick.Slot, points float64) {
	if s.SlotPoints == nil {
		s.SlotPoints = make(map[pick.Slot]float64, len(pick.AllSlots))
	}
	s.SlotPoints[slot] = points
	s.recomputeTotal()
}

func (s *Score) FlagDoublePick(slot pick.Slot) {
	s.SetSlot(slot, 0)
	if !slices.Contains(s.DoublePickSlots, slot) {
		s.DoublePickSlots = append(s.DoublePickSlots, slot)
	}
	sortSlots(s.DoublePickSlots)
}

func (s *Score) MarkUnscored(slot pick.Slot) {
	if !slices.Contains(s.UnscoredSlots, slot) {
		s.UnscoredSlots = append(s.UnscoredSlots, slot)
	}
	sortSlots(s.UnscoredSlots)
}

func (s *Score) recomputeTotal() {
	var total float64
	for _, slot := range pick.AllSlots {
		total += s.SlotPoints[slot]
	}
	s.Total = Round1(total)
}

// SameResult compares everything except the scoring timestamp.
func (s Score) SameResult(other Score) bool {
	if s.LeagueID != other.LeagueID || s.Week != other.Week || s.ParticipantID != other.ParticipantID {
		return false
	}
	if s.Total != other.Total || s.Source != other.Source {
		return false
	}
	for _, slot := range pick.AllSlots {
		left, lok := s.SlotPoints[slot]
		right, rok := other.SlotPoints[slot]
		if lok != rok || left != right {
			return false
		}
	}
	return slices.Equal(s.DoublePickSlots, other.DoublePickSlots) &&
		slices.Equal(s.UnscoredSlots, other.UnscoredSlots)
}

func (s Score) Clone() Score {
	out := s
	out.SlotPoints = make(map[pick.Slot]float64, len(s.SlotPoints))
	for slot, points := range s.SlotPoints {
		out.SlotPoints[slot] = points
	}
	out.DoublePickSlots = append([]pick.Slot(nil), s.DoublePickSlots...)
	out.UnscoredSlots = append([]pick.Slot(nil), s.UnscoredSlots...)
	return out
}

func sortSlots(items []pick.Slot) {
	order := make(map[pick.Slot]int, len(pick.AllSlots))
	for i, slot := range pick.AllSlots {
		order[slot] = i
	}
	slices.SortFunc(items, func(a, b pick.Slot) int {
		return order[a] - order[b]
	})
}
