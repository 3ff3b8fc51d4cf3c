package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-taskboard/internal/services"
)

var _ services.Storage = (*Storage)(nil)

// Storage implements services.Storage on PostgreSQL. Writes and
// transactions go through the pgx pool, aggregate reads go through
// sqlx sharing the same pool.
type Storage struct {
	logger zerolog.Logger
	pool   *pgxpool.Pool
	db     *sqlx.DB
}

func New(logger zerolog.Logger, pool *pgxpool.Pool) *Storage {
	return &Storage{
		logger: logger,
		pool:   pool,
		db:     sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx"),
	}
}

// Close releases the sqlx handle. The pool is owned by the caller.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// inTx runs fn in a transaction committed when fn returns nil.
func (s *Storage) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
