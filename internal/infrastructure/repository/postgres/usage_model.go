package postgres

import "time"

type playerUsageTableModel struct {
	ID            int64     `db:"id"`
	LeagueID      string    `db:"league_public_id"`
	Season        int       `db:"season"`
	ParticipantID string    `db:"participant_id"`
	PlayerID      string    `db:"player_public_id"`
	FirstUsedWeek int       `db:"first_used_week"`
	RecordedAt    time.Time `db:"recorded_at"`
}

type playerUsageInsertModel struct {
	LeagueID      string    `db:"league_public_id"`
	Season        int       `db:"season"`
	ParticipantID string    `db:"participant_id"`
	PlayerID      string    `db:"player_public_id"`
	FirstUsedWeek int       `db:"first_used_week"`
	RecordedAt    time.Time `db:"recorded_at"`
}
