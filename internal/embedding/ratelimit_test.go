package embedding

import (
	"context"
	"testing"
	"time"
)

func TestRateLimitProvider_Unlimited(t *testing.T) {
	inner := &mockProvider{name: "test", dims: 4}
	rl := NewRateLimitProvider(inner, &RateLimitConfig{RequestsPerMinute: 0})

	for i := 0; i < 10; i++ {
		if _, err := rl.Embed(context.Background(), "hello"); err != nil {
			t.Fatalf("Embed: %v", err)
		}
	}
	if inner.calls != 10 {
		t.Errorf("expected 10 calls, got %d", inner.calls)
	}
}

func TestRateLimitProvider_BurstThenBlocks(t *testing.T) {
	inner := &mockProvider{name: "test", dims: 4}
	rl := NewRateLimitProvider(inner, &RateLimitConfig{
		RequestsPerMinute: 60, // one token per second
		BurstSize:         2,
	})

	// Burst tokens are available immediately.
	for i := 0; i < 2; i++ {
		if _, err := rl.Embed(context.Background(), "hello"); err != nil {
			t.Fatalf("Embed: %v", err)
		}
	}

	// Third request has no token; a short deadline must trip before one accrues.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := rl.Embed(ctx, "hello"); err == nil {
		t.Fatal("expected deadline error when bucket is empty")
	}
	if inner.calls != 2 {
		t.Errorf("expected 2 calls, got %d", inner.calls)
	}
}

func TestRateLimitProvider_Refills(t *testing.T) {
	inner := &mockProvider{name: "test", dims: 4}
	rl := NewRateLimitProvider(inner, &RateLimitConfig{
		RequestsPerMinute: 6000, // 100/s, refill is fast enough to test
		BurstSize:         1,
	})

	if _, err := rl.Embed(context.Background(), "a"); err != nil {
		t.Fatalf("Embed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := rl.Embed(ctx, "b"); err != nil {
		t.Fatalf("expected refill within deadline: %v", err)
	}
}

func TestRateLimitProvider_Name(t *testing.T) {
	rl := NewRateLimitProvider(&mockProvider{name: "inner"}, nil)
	if rl.Name() != "inner" {
		t.Errorf("Name() = %q, want %q", rl.Name(), "inner")
	}
}
