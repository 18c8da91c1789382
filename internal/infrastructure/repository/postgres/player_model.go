package postgres

import "time"

type playerTableModel struct {
	ID        int64      `db:"id"`
	PublicID  string     `db:"public_id"`
	TeamID    string     `db:"team_public_id"`
	Name      string     `db:"name"`
	Position  string     `db:"position"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type playerInsertModel struct {
	PublicID string `db:"public_id"`
	TeamID   string `db:"team_public_id"`
	Name     string `db:"name"`
	Position string `db:"position"`
}
