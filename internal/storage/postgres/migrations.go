package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

//go:embed migrations/*.up.sql
var migrationsFS embed.FS

type migration struct {
	version string
	sql     string
}

func loadMigrations() ([]migration, error) {
	entries, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(entries)

	out := make([]migration, 0, len(entries))
	for _, name := range entries {
		data, err := migrationsFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		version := strings.TrimSuffix(strings.TrimPrefix(name, "migrations/"), ".up.sql")
		out = append(out, migration{version: version, sql: string(data)})
	}
	return out, nil
}

// Migrate applies every embedded migration that is not recorded in
// schema_migrations yet, each in its own transaction. It returns the
// applied versions.
func (s *Storage) Migrate(ctx context.Context) ([]string, error) {
	s.logger.Debug().Msg("running migrations")

	const createMigrationsTableQuery = `
CREATE TABLE IF NOT EXISTS schema_migrations
(
    version    TEXT PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL
)
`
	_, err := s.pool.Exec(ctx, createMigrationsTableQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return nil, err
	}

	applied := make([]string, 0, len(migrations))
	for _, m := range migrations {
		ok, err := s.applyMigration(ctx, m)
		if err != nil {
			return applied, fmt.Errorf("failed to apply migration %s: %w", m.version, err)
		}
		if ok {
			s.logger.Info().
				Str("version", m.version).
				Msg("applied migration")
			applied = append(applied, m.version)
		}
	}

	s.logger.Debug().
		Int("applied", len(applied)).
		Msg("migrations finished")
	return applied, nil
}

func (s *Storage) applyMigration(ctx context.Context, m migration) (bool, error) {
	var applied bool
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		const selectVersionQuery = `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`
		var exists bool
		if err := tx.QueryRow(ctx, selectVersionQuery, m.version).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return nil
		}

		if _, err := tx.Exec(ctx, m.sql); err != nil {
			return err
		}

		const insertVersionQuery = `INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)`
		if _, err := tx.Exec(ctx, insertVersionQuery, m.version, time.Now()); err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}
