package postgres

import "time"

type leagueWeekTableModel struct {
	ID        int64     `db:"id"`
	LeagueID  string    `db:"league_public_id"`
	Week      int       `db:"week"`
	Status    string    `db:"status"`
	UpdatedAt time.Time `db:"updated_at"`
}

type leagueWeekInsertModel struct {
	LeagueID  string    `db:"league_public_id"`
	Week      int       `db:"week"`
	Status    string    `db:"status"`
	UpdatedAt time.Time `db:"updated_at"`
}
