package postgres

import (
	"database/sql"
	"time"
)

// pickSlotTableModel is one slot of a participant's week pick. A pick is the set of its
// slot rows.
type pickSlotTableModel struct {
	ID            int64        `db:"id"`
	LeagueID      string       `db:"league_public_id"`
	Week          int          `db:"week"`
	ParticipantID string       `db:"participant_id"`
	Slot          string       `db:"slot"`
	PlayerID      string       `db:"player_public_id"`
	GameID        string       `db:"game_public_id"`
	Locked        bool         `db:"locked"`
	LockedAt      sql.NullTime `db:"locked_at"`
	CreatedAt     time.Time    `db:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at"`
}

type pickSlotInsertModel struct {
	LeagueID      string       `db:"league_public_id"`
	Week          int          `db:"week"`
	ParticipantID string       `db:"participant_id"`
	Slot          string       `db:"slot"`
	PlayerID      string       `db:"player_public_id"`
	GameID        string       `db:"game_public_id"`
	Locked        bool         `db:"locked"`
	LockedAt      sql.NullTime `db:"locked_at"`
	UpdatedAt     time.Time    `db:"updated_at"`
}

type lockedSlotRow struct {
	LeagueID      string `db:"league_public_id"`
	Week          int    `db:"week"`
	ParticipantID string `db:"participant_id"`
	Slot          string `db:"slot"`
	GameID        string `db:"game_public_id"`
}
