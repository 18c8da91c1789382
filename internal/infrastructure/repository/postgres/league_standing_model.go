package postgres

import "time"

type seasonStandingTableModel struct {
	ID                int64     `db:"id"`
	LeagueID          string    `db:"league_public_id"`
	ParticipantID     string    `db:"participant_id"`
	SeasonTotalPoints float64   `db:"season_total_points"`
	WeeksPlayed       int       `db:"weeks_played"`
	BestWeekPoints    float64   `db:"best_week_points"`
	BestWeek          int       `db:"best_week"`
	Rank              int       `db:"rank"`
	Payout            float64   `db:"payout"`
	ComputedAt        time.Time `db:"computed_at"`
}

type seasonStandingInsertModel struct {
	LeagueID          string    `db:"league_public_id"`
	ParticipantID     string    `db:"participant_id"`
	SeasonTotalPoints float64   `db:"season_total_points"`
	WeeksPlayed       int       `db:"weeks_played"`
	BestWeekPoints    float64   `db:"best_week_points"`
	BestWeek          int       `db:"best_week"`
	Rank              int       `db:"rank"`
	Payout            float64   `db:"payout"`
	ComputedAt        time.Time `db:"computed_at"`
}
