// Package vector implements the namespace-scoped dense-vector store:
// identifier assignment, record encoding, upsert orchestration, and
// similarity-ranked queries.
package vector

import "context"

// Metadata is an opaque string-keyed mapping attached to an item. The
// engine serializes it but never interprets it.
type Metadata map[string]any

// Item is a single unit of text to ingest. ID is optional; when empty
// it is derived from the text (see DeriveID).
type Item struct {
	ID       string   `json:"id,omitempty"`
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// Result is a single match from a similarity query, ranked by score
// descending. Score is the dot product of unit vectors, i.e. cosine
// similarity in [-1, 1].
type Result struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Score    float32  `json:"score"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// Searcher is the engine's boundary, consumed by the service shell.
// The exact-scan Engine is the reference implementation; alternate
// ranking strategies (e.g. the Qdrant backend) sit behind the same
// contract.
type Searcher interface {
	// Upsert writes the items into the namespace and returns how many
	// were actually written. Items with empty text are dropped silently;
	// items whose embedding fails are skipped and logged.
	Upsert(ctx context.Context, namespace string, items []Item) (int, error)
	// Query returns up to topK records ranked by similarity to text.
	// topK <= 0 yields an empty result without computing an embedding.
	Query(ctx context.Context, namespace, text string, topK int) ([]Result, error)
}
