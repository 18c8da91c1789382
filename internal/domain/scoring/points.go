package scoring

import "math"

const (
	passingBonusYards   = 300
	rushingBonusYards   = 100
	receivingBonusYards = 100
)

// Points converts a stat line to fantasy points rounded to one decimal place.
// Accumulation happens in hundredths of a point so results are exact before rounding.
func Points(s StatLine) float64 {
	var hundredths int64

	hundredths += int64(s.PassingYards) * 4
	hundredths += int64(s.PassingTD) * 400
	hundredths -= int64(s.Interceptions) * 100
	if s.PassingYards >= passingBonusYards {
		hundredths += 300
	}

	hundredths += int64(s.RushingYards) * 10
	hundredths += int64(s.RushingTD) * 600
	if s.RushingYards >= rushingBonusYards {
		hundredths += 300
	}

	hundredths += int64(s.ReceivingYards) * 10
	hundredths += int64(s.ReceivingTD) * 600
	hundredths += int64(s.Receptions) * 100
	if s.ReceivingYards >= receivingBonusYards {
		hundredths += 300
	}

	hundredths -= int64(s.FumblesLost) * 100
	hundredths += int64(s.TwoPointConversions) * 200
	hundredths += int64(s.OffensiveFumbleRecoveryTD) * 600

	return math.Round(float64(hundredths)/10) / 10
}

// Round1 rounds v to one decimal place. Used for totals built from already rounded slot points.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
