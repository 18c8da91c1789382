package usage

import "context"

type Repository interface {
	Get(ctx context.Context, key Key) (Record, bool, error)
	// CreateIfAbsent stores record unless its key exists. It returns the stored record
	// (the new one or the pre-existing one) and whether this call created it.
	CreateIfAbsent(ctx context.Context, record Record) (Record, bool, error)
	ListByParticipant(ctx context.Context, leagueID string, season int, participantID string) ([]Record, error)
}
