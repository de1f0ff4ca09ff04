package embedding

import (
	"context"
	"sync"
	"time"
)

// RateLimitConfig configures rate limiting for embedding providers.
type RateLimitConfig struct {
	// RequestsPerMinute limits the number of API calls per minute (0 = unlimited)
	RequestsPerMinute int
	// BurstSize allows temporary burst above the rate limit
	BurstSize int
}

// DefaultRateLimitConfig returns sensible defaults for hosted APIs.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerMinute: 300,
		BurstSize:         5,
	}
}

// RateLimitProvider wraps a provider with a token-bucket request limiter.
type RateLimitProvider struct {
	inner  Provider
	config *RateLimitConfig

	mu            sync.Mutex
	requestTokens float64
	lastRefill    time.Time
}

// NewRateLimitProvider creates a rate-limited provider wrapper.
func NewRateLimitProvider(inner Provider, config *RateLimitConfig) *RateLimitProvider {
	if config == nil {
		config = DefaultRateLimitConfig()
	}

	burst := config.BurstSize
	if burst <= 0 {
		burst = 1
	}

	return &RateLimitProvider{
		inner:         inner,
		config:        config,
		requestTokens: float64(burst),
		lastRefill:    time.Now(),
	}
}

func (r *RateLimitProvider) Dimensions() int { return r.inner.Dimensions() }

// Name returns the underlying provider name.
func (r *RateLimitProvider) Name() string { return r.inner.Name() }

// Embed waits for capacity, then delegates to the inner provider.
func (r *RateLimitProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.waitForCapacity(ctx); err != nil {
		return nil, err
	}
	return r.inner.Embed(ctx, text)
}

// waitForCapacity blocks until the bucket has a token or ctx is done.
func (r *RateLimitProvider) waitForCapacity(ctx context.Context) error {
	if r.config.RequestsPerMinute <= 0 {
		return nil
	}

	for {
		r.mu.Lock()
		r.refill()
		if r.requestTokens >= 1 {
			r.requestTokens--
			r.mu.Unlock()
			return nil
		}
		// Time until one token is available.
		wait := time.Duration(float64(time.Minute) / float64(r.config.RequestsPerMinute))
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// refill adds tokens accrued since the last refill, capped at burst size.
// Caller must hold r.mu.
func (r *RateLimitProvider) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastRefill)
	r.lastRefill = now

	burst := float64(r.config.BurstSize)
	if burst < 1 {
		burst = 1
	}

	r.requestTokens += elapsed.Minutes() * float64(r.config.RequestsPerMinute)
	if r.requestTokens > burst {
		r.requestTokens = burst
	}
}
