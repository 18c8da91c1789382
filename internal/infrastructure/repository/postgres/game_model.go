package postgres

import "time"

type gameTableModel struct {
	ID         int64     `db:"id"`
	PublicID   string    `db:"public_id"`
	Season     int       `db:"season"`
	Week       int       `db:"week"`
	HomeTeamID string    `db:"home_team_public_id"`
	AwayTeamID string    `db:"away_team_public_id"`
	KickoffAt  time.Time `db:"kickoff_at"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type gameInsertModel struct {
	PublicID   string    `db:"public_id"`
	Season     int       `db:"season"`
	Week       int       `db:"week"`
	HomeTeamID string    `db:"home_team_public_id"`
	AwayTeamID string    `db:"away_team_public_id"`
	KickoffAt  time.Time `db:"kickoff_at"`
	Status     string    `db:"status"`
	UpdatedAt  time.Time `db:"updated_at"`
}
