package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
)

// HashProvider produces deterministic pseudo-embeddings without any
// model. Each whitespace token hashes to a signed bucket, so texts that
// share tokens score higher than texts that do not. Good enough for
// tests and offline smoke runs; not a substitute for a real model.
type HashProvider struct {
	dims int
}

// DefaultHashDimensions is the vector length used when none is configured.
const DefaultHashDimensions = 256

// NewHash creates a hash-based provider with the given dimensionality.
func NewHash(dims int) *HashProvider {
	if dims <= 0 {
		dims = DefaultHashDimensions
	}
	return &HashProvider{dims: dims}
}

func (p *HashProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, p.dims)

	for _, token := range strings.Fields(strings.ToLower(text)) {
		sum := sha256.Sum256([]byte(token))
		bucket := int(binary.LittleEndian.Uint32(sum[:4])) % p.dims
		if bucket < 0 {
			bucket = -bucket
		}
		sign := float32(1)
		if sum[4]&1 == 1 {
			sign = -1
		}
		vec[bucket] += sign
	}

	normalize(vec)
	return vec, nil
}

func (p *HashProvider) Dimensions() int { return p.dims }

func (p *HashProvider) Name() string { return "hash" }

// normalize scales vec to unit L2 norm in place. A zero vector gets a
// fixed unit component so downstream dot products stay defined.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		if len(vec) > 0 {
			vec[0] = 1
		}
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}
