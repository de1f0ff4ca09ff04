// Package embedding abstracts the embedding model behind a single
// capability interface so the engine can be exercised with a
// deterministic provider.
package embedding

import "context"

// Provider maps text to a fixed-dimension, L2-normalized float vector.
// Deterministic for a given model version.
type Provider interface {
	// Embed returns the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// Dimensions returns the provider's output vector length.
	Dimensions() int
	// Name returns the provider identifier (e.g. "openai", "hash").
	Name() string
}
