// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kozaktomas/face-gallery/internal/database"
)

// MockIdentityStore is an in-memory implementation of database.IdentityWriter
type MockIdentityStore struct {
	mu         sync.RWMutex
	identities map[int64]*database.StoredIdentity
	nextID     int64

	// Error injection
	GetError    error
	AllError    error
	CountError  error
	CreateError error
	UpdateError error
	DeleteError error
}

// NewMockIdentityStore creates a new empty mock identity store
func NewMockIdentityStore() *MockIdentityStore {
	return &MockIdentityStore{
		identities: make(map[int64]*database.StoredIdentity),
	}
}

// AddIdentity stores rec as-is, keeping its ID when set.
// Useful for seeding malformed records that Create callers would never write.
func (m *MockIdentityStore) AddIdentity(rec database.StoredIdentity) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == 0 {
		m.nextID++
		rec.ID = m.nextID
	} else if rec.ID > m.nextID {
		m.nextID = rec.ID
	}
	m.identities[rec.ID] = &rec
	return rec.ID
}

// Get retrieves an identity by ID
func (m *MockIdentityStore) Get(ctx context.Context, id int64) (*database.StoredIdentity, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.identities[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// All returns every identity ordered by ID
func (m *MockIdentityStore) All(ctx context.Context) ([]database.StoredIdentity, error) {
	if m.AllError != nil {
		return nil, m.AllError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]database.StoredIdentity, 0, len(m.identities))
	for _, rec := range m.identities {
		result = append(result, *rec)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Count returns the number of stored identities
func (m *MockIdentityStore) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.identities), nil
}

// Create stores a new identity
func (m *MockIdentityStore) Create(ctx context.Context, rec *database.StoredIdentity) (int64, error) {
	if m.CreateError != nil {
		return 0, m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cp := *rec
	cp.ID = m.nextID
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	m.identities[cp.ID] = &cp
	return cp.ID, nil
}

// Update overwrites an existing identity
func (m *MockIdentityStore) Update(ctx context.Context, id int64, rec *database.StoredIdentity) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.identities[id]
	if !ok {
		return fmt.Errorf("identity %d: %w", id, database.ErrNotFound)
	}
	cp := *rec
	cp.ID = id
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = time.Now().UTC()
	m.identities[id] = &cp
	return nil
}

// Delete removes an identity
func (m *MockIdentityStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.identities[id]; !ok {
		return fmt.Errorf("identity %d: %w", id, database.ErrNotFound)
	}
	delete(m.identities, id)
	return nil
}

// Verify interface compliance
var _ database.IdentityWriter = (*MockIdentityStore)(nil)
