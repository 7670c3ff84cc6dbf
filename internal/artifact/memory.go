package artifact

import (
	"context"
	"sync"
)

// MemoryStore keeps artifacts in memory. Intended for tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	// Error injection
	SaveError   error
	ReadError   error
	RemoveError error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Save stores a copy of data; the reference is the name itself.
func (m *MemoryStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	if m.SaveError != nil {
		return "", m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[name] = append([]byte(nil), data...)
	return name, nil
}

// Read returns a copy of the stored bytes, or nil when ref is unknown.
func (m *MemoryStore) Read(ctx context.Context, ref string) ([]byte, error) {
	if m.ReadError != nil {
		return nil, m.ReadError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[ref]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

// Remove forgets ref.
func (m *MemoryStore) Remove(ctx context.Context, ref string) error {
	if m.RemoveError != nil {
		return m.RemoveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, ref)
	return nil
}

// Has reports whether ref is stored.
func (m *MemoryStore) Has(ref string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blobs[ref]
	return ok
}

// Len returns the number of stored artifacts.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
