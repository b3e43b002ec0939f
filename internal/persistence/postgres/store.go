// Package postgres is the canonical datastore. Repositories own the
// SQL; cross-table consistency is kept by running every sync mutation
// for one workout inside a single transaction.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cabell132/FitnessTracker/internal/linker"
)

// MatchFunc pairs item summaries from two sides. The store calls it
// inside the workout transaction so link writes commit atomically with
// the rows they reference.
type MatchFunc func(left, right []linker.Summary) []linker.Pair

// Store provides Postgres-backed persistence for the sync engine.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool exposes the underlying pool for lifecycle management.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Store) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Connect opens a pool against the given URL and ensures the schema.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return NewStore(pool), nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}
