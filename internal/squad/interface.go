package squad

import "context"

// Store is the squad membership capability the resolver needs. It is usually
// backed by a transaction-scoped storage handle.
type Store interface {
	// SquadsWithAnyMember returns every squad that has at least one of the
	// given players as a member, with its aggregate membership counts.
	SquadsWithAnyMember(ctx context.Context, playerIDs []int64) ([]Candidate, error)
	// CreateSquad inserts a squad with the given rating and membership rows.
	CreateSquad(ctx context.Context, rating int, playerIDs []int64) (int64, error)
}
