package vector

import (
	"bytes"
	"context"
	"log/slog"
	"regexp"
	"strings"
	"testing"

	"github.com/embercloud/ragstore/internal/embedding"
)

func TestQdrantUpsert_EmbedFailureLoggedAndSkipped(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	// No points client: every item fails embedding, so the searcher
	// must return before touching Qdrant at all.
	s := &QdrantSearcher{
		provider:   &flakyProvider{inner: embedding.NewHash(64), marker: "FAIL"},
		collection: "test",
		logger:     logger,
	}

	n, err := s.Upsert(context.Background(), "docs", []Item{
		{Text: "FAIL one"},
		{Text: "FAIL two"},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if n != 0 {
		t.Errorf("upserted = %d, want 0", n)
	}
	if !strings.Contains(buf.String(), "embedding failed") {
		t.Errorf("skipped items not logged, log output: %q", buf.String())
	}
}

func TestPointUUID_Deterministic(t *testing.T) {
	a := pointUUID("docs", "abc123")
	b := pointUUID("docs", "abc123")
	if a != b {
		t.Errorf("same (namespace, id) produced different uuids: %q vs %q", a, b)
	}
	if a == pointUUID("other", "abc123") {
		t.Error("different namespaces produced the same uuid")
	}
}

func TestPointUUID_Format(t *testing.T) {
	uuidRe := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	got := pointUUID("docs", "abc123")
	if !uuidRe.MatchString(got) {
		t.Errorf("pointUUID = %q, not a v4-layout uuid", got)
	}
}

func TestToValue(t *testing.T) {
	if toValue("s").GetStringValue() != "s" {
		t.Error("string conversion failed")
	}
	if toValue(true).GetBoolValue() != true {
		t.Error("bool conversion failed")
	}
	if toValue(3.5).GetDoubleValue() != 3.5 {
		t.Error("float conversion failed")
	}
	if toValue(7).GetIntegerValue() != 7 {
		t.Error("int conversion failed")
	}
	if toValue([]int{1}).GetStringValue() == "" {
		t.Error("fallback conversion failed")
	}
}
