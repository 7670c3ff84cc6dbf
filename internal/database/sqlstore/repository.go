package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/face-gallery/internal/database"
)

const identityColumns = `id, given_name, family_name, code, email, flagged, image_ref, embedding, created_at, updated_at`

// Repository provides database/sql-backed identity storage.
type Repository struct {
	db      *sql.DB
	dialect Dialect
}

// NewRepository creates a repository over an open connection pool.
func NewRepository(db *sql.DB, dialect Dialect) *Repository {
	return &Repository{db: db, dialect: dialect}
}

// Get retrieves an identity by ID, returns nil if not found.
func (r *Repository) Get(ctx context.Context, id int64) (*database.StoredIdentity, error) {
	query := r.dialect.Rebind(`SELECT ` + identityColumns + ` FROM identities WHERE id = ?`)

	rec, err := scanIdentity(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query identity: %w", err)
	}
	return rec, nil
}

// All returns every identity ordered by ID.
func (r *Repository) All(ctx context.Context) ([]database.StoredIdentity, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+identityColumns+` FROM identities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer rows.Close()

	var result []database.StoredIdentity
	for rows.Next() {
		rec, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return result, nil
}

// Count returns the total number of identities stored.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM identities").Scan(&count); err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return count, nil
}

// Create inserts a new identity and returns its generated ID.
func (r *Repository) Create(ctx context.Context, rec *database.StoredIdentity) (int64, error) {
	now := time.Now().UTC()
	query := `INSERT INTO identities (given_name, family_name, code, email, flagged, image_ref, embedding, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := []any{rec.GivenName, rec.FamilyName, rec.Code, rec.Email, rec.Flagged, rec.ImageRef, nullable(rec.Embedding), now, now}

	if r.dialect.Returning {
		var id int64
		if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query+` RETURNING id`), args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("insert identity: %w", err)
		}
		return id, nil
	}

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("insert identity: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted identity id: %w", err)
	}
	return id, nil
}

// Update overwrites all mutable fields of an identity.
func (r *Repository) Update(ctx context.Context, id int64, rec *database.StoredIdentity) error {
	query := r.dialect.Rebind(`UPDATE identities
		SET given_name = ?, family_name = ?, code = ?, email = ?, flagged = ?, image_ref = ?, embedding = ?, updated_at = ?
		WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query,
		rec.GivenName, rec.FamilyName, rec.Code, rec.Email, rec.Flagged, rec.ImageRef, nullable(rec.Embedding),
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
	}
	return requireAffected(res, id)
}

// Delete removes an identity.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM identities WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	return requireAffected(res, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanIdentity reads one row in identityColumns order.
// flagged is scanned into a bool so integer-backed columns (MySQL TINYINT) are normalized here.
func scanIdentity(row rowScanner) (*database.StoredIdentity, error) {
	var rec database.StoredIdentity
	var embedding sql.NullString
	err := row.Scan(
		&rec.ID,
		&rec.GivenName,
		&rec.FamilyName,
		&rec.Code,
		&rec.Email,
		&rec.Flagged,
		&rec.ImageRef,
		&embedding,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Embedding = embedding.String
	return &rec, nil
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("identity %d: %w", id, database.ErrNotFound)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
