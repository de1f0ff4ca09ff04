package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests and single-node
// development. It mirrors the Redis layout: field maps per (namespace,
// id) and an id set per namespace.
type MemoryStore struct {
	mtx   sync.RWMutex
	items map[string]map[string][]byte // itemKey -> fields
	index map[string]map[string]struct{}
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		items: map[string]map[string][]byte{},
		index: map[string]map[string]struct{}{},
	}
}

func (s *MemoryStore) Apply(ctx context.Context, batch Batch) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, w := range batch.Writes {
		fields := make(map[string][]byte, len(w.Fields))
		for k, v := range w.Fields {
			cpy := make([]byte, len(v))
			copy(cpy, v)
			fields[k] = cpy
		}
		s.items[itemKey(w.Namespace, w.ID)] = fields

		idx, ok := s.index[w.Namespace]
		if !ok {
			idx = map[string]struct{}{}
			s.index[w.Namespace] = idx
		}
		idx[w.ID] = struct{}{}
	}
	return nil
}

func (s *MemoryStore) GetItem(ctx context.Context, namespace, id string) (map[string][]byte, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	stored, ok := s.items[itemKey(namespace, id)]
	if !ok {
		return map[string][]byte{}, nil
	}
	fields := make(map[string][]byte, len(stored))
	for k, v := range stored {
		cpy := make([]byte, len(v))
		copy(cpy, v)
		fields[k] = cpy
	}
	return fields, nil
}

func (s *MemoryStore) ListIDs(ctx context.Context, namespace string) ([]string, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	ids := make([]string, 0, len(s.index[namespace]))
	for id := range s.index[namespace] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// DropItem removes a record without touching the index. Test hook for
// simulating a stale index entry.
func (s *MemoryStore) DropItem(namespace, id string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	delete(s.items, itemKey(namespace, id))
}

// CorruptVector overwrites a record field in place. Test hook for
// simulating a malformed record.
func (s *MemoryStore) CorruptVector(namespace, id string, raw []byte) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if fields, ok := s.items[itemKey(namespace, id)]; ok {
		fields["vector"] = raw
	}
}
