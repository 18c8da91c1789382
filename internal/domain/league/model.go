package league

import (
	"fmt"
	"math"
)

// League is a pick'em league. Membership lives outside this service; the core only
// needs the season and the prize structure.
type League struct {
	ID             string
	Name           string
	Season         int
	EntryFee       float64
	PayoutPercents []float64
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.Season <= 0 {
		return fmt.Errorf("league season must be > 0")
	}
	if l.EntryFee < 0 {
		return fmt.Errorf("league entry fee cannot be negative")
	}

	var sum float64
	for _, pct := range l.PayoutPercents {
		if pct < 0 {
			return fmt.Errorf("payout percent cannot be negative")
		}
		sum += pct
	}
	if sum > 100+1e-9 {
		return fmt.Errorf("payout percents exceed 100")
	}

	return nil
}

// Pot is the prize pool for the given number of paying participants.
func (l League) Pot(participants int) float64 {
	if participants <= 0 || l.EntryFee <= 0 {
		return 0
	}
	return math.Round(l.EntryFee*float64(participants)*100) / 100
}
