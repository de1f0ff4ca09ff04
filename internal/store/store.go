// Package store defines the item store contract: namespaced hash records
// plus a per-namespace set of item ids, with atomic batch writes.
package store

import "context"

// Write is one record destined for the store. Applying a write also adds
// the id to the namespace index, so a record and its index entry always
// land together.
type Write struct {
	Namespace string
	ID        string
	Fields    map[string][]byte
}

// Batch is a group of writes applied as a single atomic unit. A reader
// never observes a partially applied batch.
type Batch struct {
	Writes []Write
}

// Store is a byte-oriented key/value map keyed by (namespace, id) with a
// per-namespace id set. Implementations must make Apply atomic at batch
// granularity; no further isolation is assumed.
type Store interface {
	// Apply writes all records in the batch and their index entries
	// atomically.
	Apply(ctx context.Context, batch Batch) error
	// GetItem returns the record fields for (namespace, id), or an empty
	// map if no record exists.
	GetItem(ctx context.Context, namespace, id string) (map[string][]byte, error)
	// ListIDs enumerates the namespace index. Order is unspecified.
	ListIDs(ctx context.Context, namespace string) ([]string, error)
	// Ping checks connectivity.
	Ping(ctx context.Context) error
	// Close releases resources.
	Close() error
}

// Key layout is fixed for interoperability with other readers of the
// same store: one hash per item, one set per namespace index.

func itemKey(namespace, id string) string {
	return "rag:" + namespace + ":" + id
}

func indexKey(namespace string) string {
	return "rag:" + namespace + ":index"
}
