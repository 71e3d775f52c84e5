// Package store is the relational system of record: identities,
// authored content, and votes live here, and every graph edge is a
// projection of these rows.
//
// Write paths open one transaction per row mutation and run the
// change-event router inside it, so a failed adapter call rolls the
// row change back with it. Read and scan paths feed the score view
// and the rebuild coordinator.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/reputel/repgraph/internal/ident"
	"github.com/reputel/repgraph/internal/router"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema (users, beacons, comments, three vote tables)
const currentSchemaVersion = 1

// Store provides durable storage for source rows.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db  *sql.DB
	rt  *router.Router
	gen ident.Generator
}

// Option configures a Store.
type Option func(*Store)

// WithGenerator overrides the content-ID generator. Tests use a
// FixedGenerator for deterministic IDs.
func WithGenerator(gen ident.Generator) Option {
	return func(s *Store) {
		s.gen = gen
	}
}

// Open creates or opens a SQLite database at the given path and binds
// the change-event router used by write paths. rt may be nil for
// schema-only maintenance (init); write paths then refuse to run.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string, rt *router.Router, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{db: db, rt: rt, gen: ident.UUIDv7Generator{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Router returns the bound change-event router, or nil.
func (s *Store) Router() *router.Router {
	return s.rt
}

// requireRouter guards write paths: a store opened without a router
// must not mutate source rows, or relational and graph state would
// skew by construction.
func (s *Store) requireRouter() error {
	if s.rt == nil {
		return fmt.Errorf("store has no change-event router bound")
	}
	return nil
}

// begin starts a write transaction with a rollback guard.
// The returned cleanup is a no-op after commit.
func (s *Store) begin(ctx context.Context) (*sql.Tx, func(), error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, func() { _ = tx.Rollback() }, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on
// user_version. The baseline schema is version 1; future migrations
// slot in sequentially before the final version bump.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported %d", version, currentSchemaVersion)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}
