package postgres

import (
	"context"
	"embed"
	"io/fs"

	"github.com/kozaktomas/face-gallery/internal/database/sqlstore"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func migrations() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		// The directory is embedded at build time.
		panic("postgres migrations not embedded: " + err.Error())
	}
	return sub
}

// Migrate applies all pending migrations automatically on startup
func (p *Pool) Migrate(ctx context.Context) error {
	_, err := sqlstore.Migrate(ctx, p.db, sqlstore.Postgres, migrations())
	return err
}

// MigrationsApplied returns the list of applied migrations
func (p *Pool) MigrationsApplied(ctx context.Context) ([]string, error) {
	return sqlstore.MigrationsApplied(ctx, p.db)
}
