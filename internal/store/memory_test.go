package store

import (
	"context"
	"sort"
	"testing"
)

func TestMemoryStore_ApplyAndGet(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	batch := Batch{Writes: []Write{
		{Namespace: "docs", ID: "a", Fields: map[string][]byte{"text": []byte("hello"), "vector": {1, 2, 3, 4}}},
		{Namespace: "docs", ID: "b", Fields: map[string][]byte{"text": []byte("world")}},
	}}
	if err := s.Apply(ctx, batch); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	fields, err := s.GetItem(ctx, "docs", "a")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got := string(fields["text"]); got != "hello" {
		t.Errorf("text = %q, want %q", got, "hello")
	}

	ids, err := s.ListIDs(ctx, "docs")
	if err != nil {
		t.Fatalf("ListIDs: %v", err)
	}
	sort.Strings(ids)
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("ids = %v, want [a b]", ids)
	}
}

func TestMemoryStore_Overwrite(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	for _, text := range []string{"first", "second"} {
		batch := Batch{Writes: []Write{
			{Namespace: "docs", ID: "a", Fields: map[string][]byte{"text": []byte(text)}},
		}}
		if err := s.Apply(ctx, batch); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}

	ids, _ := s.ListIDs(ctx, "docs")
	if len(ids) != 1 {
		t.Errorf("index has %d entries after re-upsert, want 1", len(ids))
	}
	fields, _ := s.GetItem(ctx, "docs", "a")
	if got := string(fields["text"]); got != "second" {
		t.Errorf("text = %q, want %q", got, "second")
	}
}

func TestMemoryStore_MissingItem(t *testing.T) {
	s := NewMemory()
	fields, err := s.GetItem(context.Background(), "docs", "nope")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if len(fields) != 0 {
		t.Errorf("missing item returned fields: %v", fields)
	}
}

func TestMemoryStore_NamespaceIsolation(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	batch := Batch{Writes: []Write{
		{Namespace: "alpha", ID: "x", Fields: map[string][]byte{"text": []byte("in alpha")}},
	}}
	if err := s.Apply(ctx, batch); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	ids, _ := s.ListIDs(ctx, "beta")
	if len(ids) != 0 {
		t.Errorf("beta index = %v, want empty", ids)
	}
	fields, _ := s.GetItem(ctx, "beta", "x")
	if len(fields) != 0 {
		t.Errorf("same id in another namespace resolved: %v", fields)
	}
}

func TestMemoryStore_GetCopies(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	batch := Batch{Writes: []Write{
		{Namespace: "docs", ID: "a", Fields: map[string][]byte{"vector": {9, 9, 9, 9}}},
	}}
	if err := s.Apply(ctx, batch); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	fields, _ := s.GetItem(ctx, "docs", "a")
	fields["vector"][0] = 0

	again, _ := s.GetItem(ctx, "docs", "a")
	if again["vector"][0] != 9 {
		t.Error("mutating a returned field leaked into the store")
	}
}
