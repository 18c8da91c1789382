package leaguestanding

import "time"

// SeasonStanding is a participant's season row. It is derived from Score records only.
type SeasonStanding struct {
	LeagueID          string
	ParticipantID     string
	SeasonTotalPoints float64
	WeeksPlayed       int
	BestWeekPoints    float64
	BestWeek          int
	Rank              int
	Payout            float64
	ComputedAt        time.Time
}
