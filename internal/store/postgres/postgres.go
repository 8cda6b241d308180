// Package postgres is the production Store implementation backed by
// PostgreSQL, using a shared pgxpool connection pool and an Executor
// abstraction so the same query methods run inside or outside a
// transaction.
package postgres

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"

	"github.com/orchestrator-core/controlplane/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Executor is satisfied by both pgx.Tx and *pgxpool.Pool, letting every
// per-entity method run unchanged whether or not it is inside a
// transaction.
type Executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the PostgreSQL-backed store.Store implementation.
type Store struct {
	pool *pgxpool.Pool
}

// New opens a connection pool against connString, runs pending goose
// migrations, and returns a ready Store.
func New(ctx context.Context, connString string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	cfg.MaxConns = 30
	cfg.MinConns = 5
	cfg.MaxConnIdleTime = 30 * time.Minute
	cfg.MaxConnLifetime = 2 * time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := migrate(connString); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{pool: pool}, nil
}

func migrate(connString string) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	db, err := goose.OpenDBWithDriver("pgx", connString)
	if err != nil {
		return fmt.Errorf("opening migration connection: %w", err)
	}
	defer db.Close()
	return goose.Up(db, "migrations")
}

// Close releases the pool's connections.
func (s *Store) Close() {
	s.pool.Close()
}

// Pool exposes the underlying connection pool so callers can share it with
// eventstream.NewPostgres rather than opening a second pool against the
// same database.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Store) exec(tx store.Tx) Executor {
	if pgtx, ok := tx.(pgx.Tx); ok {
		return pgtx
	}
	return s.pool
}

// WithTx opens a serializable-equivalent transaction (Postgres's default
// read-committed is raised to repeatable-read, matching the concurrency
// model's "repeatable-read isolation is sufficient if combined with SELECT
// ... FOR UPDATE") and runs fn inside it, committing on success.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func wrapNotFound(err error) error {
	if err == pgx.ErrNoRows {
		return store.ErrNotFound
	}
	return err
}
