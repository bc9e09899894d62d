// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/utang/internal/models"
)

var (
	// ErrUnavailable is returned when the store cannot be created, opened or locked.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned on a uniqueness constraint violation.
	ErrDuplicate = errors.New("duplicate")
	// ErrConstraint is returned on any other constraint violation.
	ErrConstraint = errors.New("constraint violation")
	// ErrMalformedTimestamp is returned when a stored date cannot be parsed.
	ErrMalformedTimestamp = errors.New("malformed timestamp")
)

// Ledger holds the raw read/write primitives of the ledger schema.
// It is implemented both by the store itself and by the handle passed to
// an Atomic callback, so the same code runs in and out of a transaction.
type Ledger interface {
	// InsertUser creates a user with a zero balance and returns its ID.
	// Returns ErrDuplicate if the username is taken.
	InsertUser(ctx context.Context, username string) (int64, error)

	// FindUser returns the user with the given username.
	// Returns ErrNotFound if there is none.
	FindUser(ctx context.Context, username string) (*models.User, error)

	// ListUsers returns every user ordered by username.
	ListUsers(ctx context.Context) ([]*models.User, error)

	// AdjustBalance adds delta to the user's balance in place.
	// Returns ErrNotFound if the user does not exist.
	AdjustBalance(ctx context.Context, userID int64, delta int64) error

	// InsertTransaction appends a transaction row and returns its ID.
	InsertTransaction(ctx context.Context, userID int64, kind models.Kind, amount int64, date time.Time, description string) (int64, error)

	// TransactionsForUser returns up to limit transactions of the user,
	// newest first. An unknown username yields an empty slice.
	TransactionsForUser(ctx context.Context, username string, limit int) ([]*models.Transaction, error)

	// RecentTransactions returns up to limit transactions across all users,
	// newest first.
	RecentTransactions(ctx context.Context, limit int) ([]*models.Transaction, error)

	// TransactionSums returns, per user ID, the sum of that user's
	// transaction amounts. Users without transactions are absent.
	TransactionSums(ctx context.Context) (map[int64]int64, error)
}

// Store defines the interface for ledger storage.
// This abstraction allows swapping storage backends without changing the
// service layer.
type Store interface {
	Ledger

	// Atomic runs fn inside a single store transaction. If fn returns an
	// error or panics, nothing fn wrote is kept.
	Atomic(ctx context.Context, fn func(l Ledger) error) error

	// Close releases any resources held by the store.
	Close() error
}
