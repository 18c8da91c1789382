package postgres

import (
	"time"

	"github.com/lib/pq"
)

type leagueTableModel struct {
	ID             int64           `db:"id"`
	PublicID       string          `db:"public_id"`
	Name           string          `db:"name"`
	Season         int             `db:"season"`
	EntryFee       float64         `db:"entry_fee"`
	PayoutPercents pq.Float64Array `db:"payout_percents"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
	DeletedAt      *time.Time      `db:"deleted_at"`
}

type leagueInsertModel struct {
	PublicID       string          `db:"public_id"`
	Name           string          `db:"name"`
	Season         int             `db:"season"`
	EntryFee       float64         `db:"entry_fee"`
	PayoutPercents pq.Float64Array `db:"payout_percents"`
}
