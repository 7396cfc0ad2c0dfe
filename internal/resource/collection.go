package resource

import "context"

// Collection is the storage collaborator contract the controller consumes.
// Implementations interpret the Query predicate tree; mutations must be
// atomic. GetByKey returns ErrNotFound (possibly wrapped) when no record
// exists at the key.
type Collection interface {
	// List returns the records selected by q plus the total count matching
	// its predicates (ignoring the offset/limit window).
	List(ctx context.Context, q Query) ([]Record, int, error)
	GetByKey(ctx context.Context, pk any) (Record, error)
	Insert(ctx context.Context, rec Record) (Record, error)
	Update(ctx context.Context, pk any, changes Record) (Record, error)
	Delete(ctx context.Context, pk any) error
}
