// Package migrations embeds the SQL schema of the postgres and sqlite
// engines and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Result describes one applied migration.
type Result struct {
	Version  int64
	Source   string
	Duration string
}

func provider(db *sql.DB, dialect goose.Dialect, dir string) (*goose.Provider, error) {
	sub, err := fs.Sub(files, dir)
	if err != nil {
		return nil, fmt.Errorf("locate %s migrations: %w", dir, err)
	}
	p, err := goose.NewProvider(dialect, db, sub)
	if err != nil {
		return nil, fmt.Errorf("configure goose: %w", err)
	}
	return p, nil
}

// UpPostgres applies pending postgres migrations.
func UpPostgres(ctx context.Context, db *sql.DB) ([]Result, error) {
	return up(ctx, db, goose.DialectPostgres, "postgres")
}

// UpSQLite applies pending sqlite migrations.
func UpSQLite(ctx context.Context, db *sql.DB) ([]Result, error) {
	return up(ctx, db, goose.DialectSQLite3, "sqlite")
}

func up(ctx context.Context, db *sql.DB, dialect goose.Dialect, dir string) ([]Result, error) {
	p, err := provider(db, dialect, dir)
	if err != nil {
		return nil, err
	}
	applied, err := p.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	results := make([]Result, 0, len(applied))
	for _, r := range applied {
		results = append(results, Result{
			Version:  r.Source.Version,
			Source:   r.Source.Path,
			Duration: r.Duration.String(),
		})
	}
	return results, nil
}
