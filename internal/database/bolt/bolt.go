// Package bolt stores the identity gallery in a single-file bbolt database.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/face-gallery/internal/database"
	"go.etcd.io/bbolt"
)

// SchemaVersion is the on-disk record layout version.
const SchemaVersion = 1

var (
	bucketIdentities = []byte("identities")
	bucketMeta       = []byte("meta")
	keySchemaVersion = []byte("schema_version")
)

// Store is a bbolt-backed identity repository.
// Keys are big-endian IDs so cursor order equals ID order.
type Store struct {
	db *bbolt.DB
}

type identityRecord struct {
	GivenName  string    `json:"given_name"`
	FamilyName string    `json:"family_name"`
	Code       string    `json:"code"`
	Email      string    `json:"email"`
	Flagged    bool      `json:"flagged"`
	ImageRef   string    `json:"image_ref"`
	Embedding  *string   `json:"embedding"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Open opens (creating if needed) the database file at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	s := &Store{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the buckets and records the schema version.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketIdentities, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		meta := tx.Bucket(bucketMeta)
		if meta.Get(keySchemaVersion) != nil {
			return nil
		}
		data, err := json.Marshal(SchemaVersion)
		if err != nil {
			return err
		}
		return meta.Put(keySchemaVersion, data)
	})
}

// MigrationsApplied reports the schema version as a single migration entry.
func (s *Store) MigrationsApplied(ctx context.Context) ([]string, error) {
	var versions []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if meta == nil {
			return nil
		}
		data := meta.Get(keySchemaVersion)
		if data == nil {
			return nil
		}
		var v int
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("decode schema version: %w", err)
		}
		versions = append(versions, fmt.Sprintf("bolt_schema_v%d", v))
		return nil
	})
	return versions, err
}

// Get retrieves an identity by ID, returns nil if not found.
func (s *Store) Get(ctx context.Context, id int64) (*database.StoredIdentity, error) {
	var result *database.StoredIdentity
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketIdentities).Get(itob(id))
		if data == nil {
			return nil
		}
		rec, err := decode(id, data)
		if err != nil {
			return err
		}
		result = rec
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get identity %d: %w", id, err)
	}
	return result, nil
}

// All returns every identity ordered by ID.
func (s *Store) All(ctx context.Context) ([]database.StoredIdentity, error) {
	var result []database.StoredIdentity
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketIdentities).ForEach(func(k, v []byte) error {
			rec, err := decode(btoi(k), v)
			if err != nil {
				return err
			}
			result = append(result, *rec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	return result, nil
}

// Count returns the total number of identities stored.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketIdentities).Stats().KeyN
		return nil
	})
	return n, err
}

// Create inserts a new identity and returns its generated ID.
func (s *Store) Create(ctx context.Context, rec *database.StoredIdentity) (int64, error) {
	var id int64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketIdentities)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		id = int64(seq)
		now := time.Now().UTC()
		data, err := encode(rec, now, now)
		if err != nil {
			return err
		}
		return b.Put(itob(id), data)
	})
	if err != nil {
		return 0, fmt.Errorf("insert identity: %w", err)
	}
	return id, nil
}

// Update overwrites all mutable fields of an identity.
func (s *Store) Update(ctx context.Context, id int64, rec *database.StoredIdentity) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketIdentities)
		existing := b.Get(itob(id))
		if existing == nil {
			return database.ErrNotFound
		}
		var old identityRecord
		if err := json.Unmarshal(existing, &old); err != nil {
			return fmt.Errorf("decode identity %d: %w", id, err)
		}
		data, err := encode(rec, old.CreatedAt, time.Now().UTC())
		if err != nil {
			return err
		}
		return b.Put(itob(id), data)
	})
	if err != nil {
		return fmt.Errorf("update identity %d: %w", id, err)
	}
	return nil
}

// Delete removes an identity.
func (s *Store) Delete(ctx context.Context, id int64) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketIdentities)
		if b.Get(itob(id)) == nil {
			return database.ErrNotFound
		}
		return b.Delete(itob(id))
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("identity %d: %w", id, err)
		}
		return fmt.Errorf("delete identity %d: %w", id, err)
	}
	return nil
}

func encode(rec *database.StoredIdentity, created, updated time.Time) ([]byte, error) {
	r := identityRecord{
		GivenName:  rec.GivenName,
		FamilyName: rec.FamilyName,
		Code:       rec.Code,
		Email:      rec.Email,
		Flagged:    rec.Flagged,
		ImageRef:   rec.ImageRef,
		CreatedAt:  created,
		UpdatedAt:  updated,
	}
	if rec.Embedding != "" {
		emb := rec.Embedding
		r.Embedding = &emb
	}
	return json.Marshal(r)
}

func decode(id int64, data []byte) (*database.StoredIdentity, error) {
	var r identityRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode identity %d: %w", id, err)
	}
	rec := &database.StoredIdentity{
		ID:         id,
		GivenName:  r.GivenName,
		FamilyName: r.FamilyName,
		Code:       r.Code,
		Email:      r.Email,
		Flagged:    r.Flagged,
		ImageRef:   r.ImageRef,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.Embedding != nil {
		rec.Embedding = *r.Embedding
	}
	return rec, nil
}

func itob(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

func btoi(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}

// Verify interface compliance
var (
	_ database.IdentityWriter = (*Store)(nil)
	_ database.Migrator       = (*Store)(nil)
)
