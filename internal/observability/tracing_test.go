package observability

import (
	"context"
	"errors"
	"testing"
)

var errTest = errors.New("test error")

func TestInitTracing_NoEndpoint(t *testing.T) {
	tp, err := InitTracing(context.Background(), &TracingConfig{})
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	if tp.Tracer() == nil {
		t.Fatal("expected a no-op tracer")
	}
	if err := tp.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestInitTracing_NilConfig(t *testing.T) {
	tp, err := InitTracing(context.Background(), nil)
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	if tp == nil {
		t.Fatal("expected provider")
	}
}

func TestDefaultTracingConfig(t *testing.T) {
	cfg := DefaultTracingConfig()

	if cfg.ServiceName != "ragstore" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("SampleRate = %v", cfg.SampleRate)
	}
}

func TestSpanHelpers(t *testing.T) {
	ctx := context.Background()

	ctx, span := StartUpsertSpan(ctx, "docs", 3)
	RecordUpsertResult(span, 2, 1)
	RecordError(span, errTest)
	span.End()

	_, span = StartQuerySpan(ctx, "docs", 5)
	RecordQueryResult(span, 10, 1, 5)
	span.End()

	_, span = StartEmbedSpan(ctx, "hash")
	span.End()

	_, span = StartStoreSpan(ctx, "apply")
	span.End()
}
