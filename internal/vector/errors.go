package vector

import "errors"

// ErrEmptyBatch is returned by Upsert when the caller provides no items
// at all. A batch whose items are all blank is not an error; it writes
// nothing and reports zero.
var ErrEmptyBatch = errors.New("empty item batch")

// EmbedError marks a failure of the embedding provider on the query
// path, where it aborts the whole operation. (On the upsert path,
// per-item embedding failures only skip the affected item.)
type EmbedError struct {
	Err error
}

func (e *EmbedError) Error() string { return "embedding: " + e.Err.Error() }

func (e *EmbedError) Unwrap() error { return e.Err }
