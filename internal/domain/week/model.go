package week

import "time"

type Status string

const (
	StatusOpen            Status = "open"
	StatusPendingBackfill Status = "pending_backfill"
	StatusBackfilled      Status = "backfilled"
	StatusFinal           Status = "final"
)

// Record tracks the lifecycle of one league week.
type Record struct {
	LeagueID  string
	Week      int
	Status    Status
	UpdatedAt time.Time
}

// AcceptsBackfill reports whether operator backfill may write into this week.
func (r Record) AcceptsBackfill() bool {
	return r.Status == StatusPendingBackfill || r.Status == StatusBackfilled
}

func (r Record) IsClosed() bool {
	return r.Status == StatusFinal || r.Status == StatusBackfilled
}
