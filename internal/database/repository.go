package database

import (
	"context"
	"errors"
)

// ErrNotFound is returned by writers when the referenced identity does not exist.
var ErrNotFound = errors.New("identity not found")

// IdentityReader provides read-only access to the identity gallery
type IdentityReader interface {
	// Get retrieves an identity by ID, returns nil if not found
	Get(ctx context.Context, id int64) (*StoredIdentity, error)
	// All returns a snapshot of every stored identity ordered by ID
	All(ctx context.Context) ([]StoredIdentity, error)
	// Count returns the total number of identities stored
	Count(ctx context.Context) (int, error)
}

// IdentityWriter provides write access to the identity gallery.
// The store assigns IDs and is the sole owner of record existence.
type IdentityWriter interface {
	IdentityReader

	// Create stores a new identity and returns the assigned ID. The ID field of rec is ignored.
	Create(ctx context.Context, rec *StoredIdentity) (int64, error)
	// Update replaces every mutable field of an existing identity. Returns ErrNotFound if absent.
	Update(ctx context.Context, id int64, rec *StoredIdentity) error
	// Delete removes an identity. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id int64) error
}

// Migrator is implemented by backends with a versioned schema.
type Migrator interface {
	Migrate(ctx context.Context) error
	MigrationsApplied(ctx context.Context) ([]string, error)
}
