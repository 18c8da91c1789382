package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type weeklyScoreTableModel struct {
	ID              int64           `db:"id"`
	LeagueID        string          `db:"league_public_id"`
	Week            int             `db:"week"`
	ParticipantID   string          `db:"participant_id"`
	QBPoints        sql.NullFloat64 `db:"qb_points"`
	RBPoints        sql.NullFloat64 `db:"rb_points"`
	WRPoints        sql.NullFloat64 `db:"wr_points"`
	TotalPoints     float64         `db:"total_points"`
	DoublePickSlots pq.StringArray  `db:"double_pick_slots"`
	UnscoredSlots   pq.StringArray  `db:"unscored_slots"`
	Source          string          `db:"source"`
	ScoredAt        time.Time       `db:"scored_at"`
}

type weeklyScoreInsertModel struct {
	LeagueID        string          `db:"league_public_id"`
	Week            int             `db:"week"`
	ParticipantID   string          `db:"participant_id"`
	QBPoints        sql.NullFloat64 `db:"qb_points"`
	RBPoints        sql.NullFloat64 `db:"rb_points"`
	WRPoints        sql.NullFloat64 `db:"wr_points"`
	TotalPoints     float64         `db:"total_points"`
	DoublePickSlots pq.StringArray  `db:"double_pick_slots"`
	UnscoredSlots   pq.StringArray  `db:"unscored_slots"`
	Source          string          `db:"source"`
	ScoredAt        time.Time       `db:"scored_at"`
}
