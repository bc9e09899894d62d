// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // cgo SQLite driver, registered as "sqlite3"
	"modernc.org/sqlite"            // Pure Go SQLite driver (no CGO), registered as "sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mmynk/utang/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

const (
	// DriverPureGo selects modernc.org/sqlite.
	DriverPureGo = "sqlite"
	// DriverCgo selects github.com/mattn/go-sqlite3. Requires a cgo build.
	DriverCgo = "sqlite3"

	// busyTimeoutMillis is how long a process waits for another process's
	// write lock before giving up.
	busyTimeoutMillis = 5000
)

// dbtx is the subset of *sql.DB and *sql.Tx the queries need.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements storage.Ledger on top of either the database or an
// open transaction.
type queries struct {
	db dbtx
}

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	*queries
	db *sql.DB
}

// New opens the database at dbPath with the pure Go driver.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	return Open(context.Background(), DriverPureGo, dbPath)
}

// Open opens the database at dbPath with the named driver, creating the
// parent directory and the schema if needed. Reopening an existing, up to
// date database only opens the connection.
func Open(ctx context.Context, driver, dbPath string) (*SQLiteStore, error) {
	dsn, err := dataSourceName(driver, dbPath)
	if err != nil {
		return nil, err
	}

	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create database directory: %w", storage.ErrUnavailable, err)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", storage.ErrUnavailable, err)
	}

	// A CLI run needs a single connection; every statement, inside or outside
	// Atomic, goes through it.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to open database: %w", storage.ErrUnavailable, err)
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to run migrations: %w", storage.ErrUnavailable, err)
	}

	return NewWithDB(db), nil
}

// NewWithDB wraps an already opened and migrated database.
func NewWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{queries: &queries{db: db}, db: db}
}

// dataSourceName builds the DSN for driver. Both drivers get foreign keys,
// a busy timeout, WAL journaling and BEGIN IMMEDIATE transactions, so that
// a read-modify-write in one process cannot interleave with another's.
func dataSourceName(driver, dbPath string) (string, error) {
	switch driver {
	case DriverPureGo:
		return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_txlock=immediate",
			escapePath(dbPath), busyTimeoutMillis), nil
	case DriverCgo:
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=%d&_journal_mode=WAL&_txlock=immediate",
			escapePath(dbPath), busyTimeoutMillis), nil
	default:
		return "", fmt.Errorf("%w: unknown sqlite driver %q", storage.ErrUnavailable, driver)
	}
}

// escapePath percent-encodes each segment of path for a file: URI, so that
// '?', '#' and '%' in directory names reach SQLite literally.
func escapePath(path string) string {
	segments := strings.Split(filepath.ToSlash(path), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Atomic runs fn inside one SQLite transaction.
func (s *SQLiteStore) Atomic(ctx context.Context, fn func(l storage.Ledger) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", classify(err))
	}
	// Rolls back on error and on panic; a no-op after Commit.
	defer tx.Rollback()

	if err := fn(&queries{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", classify(err))
	}

	return nil
}

// classify tags driver errors with the matching storage sentinel while
// keeping the original error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()

	var se *sqlite.Error
	if errors.As(err, &se) {
		switch code := se.Code(); {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
			code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(msg, "UNIQUE constraint failed"):
			return fmt.Errorf("%w: %w", storage.ErrDuplicate, err)
		case code&0xff == sqlite3.SQLITE_CONSTRAINT:
			return fmt.Errorf("%w: %w", storage.ErrConstraint, err)
		case code&0xff == sqlite3.SQLITE_BUSY, code&0xff == sqlite3.SQLITE_LOCKED,
			code&0xff == sqlite3.SQLITE_CANTOPEN, code&0xff == sqlite3.SQLITE_READONLY:
			return fmt.Errorf("%w: %w", storage.ErrUnavailable, err)
		}
		return err
	}

	// The cgo driver's error codes are only available in cgo builds, so it
	// is matched on SQLite's canonical messages instead.
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %w", storage.ErrDuplicate, err)
	case strings.Contains(msg, "constraint failed"):
		return fmt.Errorf("%w: %w", storage.ErrConstraint, err)
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "unable to open database"):
		return fmt.Errorf("%w: %w", storage.ErrUnavailable, err)
	}
	return err
}
