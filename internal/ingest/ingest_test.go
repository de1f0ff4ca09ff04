package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/embercloud/ragstore/internal/server"
)

func TestClient_Upsert(t *testing.T) {
	var got server.UpsertRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upsert" {
			t.Errorf("path = %s, want /upsert", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		json.NewEncoder(w).Encode(server.UpsertResponse{Upserted: len(got.Items)})
	}))
	defer srv.Close()

	// Trailing slash must not produce a double-slash path.
	client := NewClient(srv.URL + "/")
	n, err := client.Upsert(context.Background(), "videos", []string{"first transcript", "  ", "second transcript"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if n != 2 {
		t.Errorf("upserted = %d, want 2 (blank text dropped)", n)
	}
	if got.Namespace != "videos" {
		t.Errorf("namespace = %s, want videos", got.Namespace)
	}
	if len(got.Items) != 2 {
		t.Errorf("sent %d items, want 2", len(got.Items))
	}
}

func TestClient_UpsertAllBlank(t *testing.T) {
	client := NewClient("http://localhost:0")
	if _, err := client.Upsert(context.Background(), "ns", []string{"", "   "}); err == nil {
		t.Error("expected error for all-blank batch")
	}
}

func TestClient_UpsertServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"store unavailable"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.Upsert(context.Background(), "ns", []string{"text"}); err == nil {
		t.Error("expected error for 503 response")
	}
}

func TestReadTexts(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	os.WriteFile(a, []byte("first"), 0o644)
	os.WriteFile(b, []byte("second"), 0o644)

	texts, err := ReadTexts([]string{a, b})
	if err != nil {
		t.Fatalf("ReadTexts: %v", err)
	}
	if len(texts) != 2 || texts[0] != "first" || texts[1] != "second" {
		t.Errorf("texts = %v", texts)
	}
}

func TestReadTexts_MissingFile(t *testing.T) {
	if _, err := ReadTexts([]string{"/nonexistent/file.txt"}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ"},
	}
	for _, tt := range tests {
		if got := ExtractVideoID(tt.url); got != tt.want {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
