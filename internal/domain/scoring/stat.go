package scoring

// StatLine is a normalized box-score line for one player in one game.
// Missing counts are zero.
type StatLine struct {
	PassingYards              int `json:"passing_yards"`
	PassingTD                 int `json:"passing_td"`
	Interceptions             int `json:"interceptions"`
	RushingYards              int `json:"rushing_yards"`
	RushingTD                 int `json:"rushing_td"`
	ReceivingYards            int `json:"receiving_yards"`
	ReceivingTD               int `json:"receiving_td"`
	Receptions                int `json:"receptions"`
	FumblesLost               int `json:"fumbles_lost"`
	TwoPointConversions       int `json:"two_point_conversions"`
	OffensiveFumbleRecoveryTD int `json:"offensive_fumble_recovery_td"`
}

func (s StatLine) IsZero() bool {
	return s == StatLine{}
}
