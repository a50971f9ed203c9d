// Package storetest provides an in-memory object backend for tests that
// exercise object-graph logic without needing filesystem round-tripping.
// It satisfies spec.md §4.2's allowance for an uncompressed test-mode store.
package storetest

import (
	"fmt"
	"sync"

	"github.com/knotvcs/knot/internal/object"
)

// MemoryStore is a content-addressed store backed by an in-process map. It
// is not safe to share across goroutines without external synchronization
// beyond what the embedded mutex already provides for single calls.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[object.Hash]entry
}

type entry struct {
	typ     object.Type
	payload []byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[object.Hash]entry)}
}

func (m *MemoryStore) Has(h object.Hash) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[h]
	return ok
}

func (m *MemoryStore) Put(obj any) (object.Hash, error) {
	typ, payload, err := object.Serialize(obj)
	if err != nil {
		return "", err
	}
	return m.PutRaw(typ, payload)
}

func (m *MemoryStore) PutRaw(typ object.Type, payload []byte) (object.Hash, error) {
	digest := object.DigestOf(typ, payload)
	h := object.HashHex(digest)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[h]; !ok {
		stored := make([]byte, len(payload))
		copy(stored, payload)
		m.objects[h] = entry{typ: typ, payload: stored}
	}
	return h, nil
}

func (m *MemoryStore) Get(h object.Hash) (object.Type, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.objects[h]
	if !ok {
		return "", nil, fmt.Errorf("storetest: get %s: %w", h, object.ErrNotFound)
	}
	out := make([]byte, len(e.payload))
	copy(out, e.payload)
	return e.typ, out, nil
}

func (m *MemoryStore) GetParsed(h object.Hash, want object.Type) (any, error) {
	typ, payload, err := m.Get(h)
	if err != nil {
		return nil, err
	}
	if typ != want {
		return nil, fmt.Errorf("storetest: %s: type mismatch: got %q, want %q", h, typ, want)
	}
	return object.Parse(typ, payload)
}
