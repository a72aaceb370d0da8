package audit

import "context"

// Store persists audit documents in bulk. InsertMany must continue past
// individual document failures: a partial-failure response is reported
// through the counts with a nil error, while a nil-error-impossible
// condition (store unreachable, batch rejected wholesale) is returned as an
// error and treated as fatal by the owning consumer loop.
type Store interface {
	InsertMany(ctx context.Context, docs []Document) (inserted, failed int, err error)
	// EnsureIndexes creates the collection indexes. Idempotent; called on
	// every process start.
	EnsureIndexes(ctx context.Context) error
}
