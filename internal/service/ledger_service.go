// Package service implements the ledger operations on top of a storage.Store:
// LedgerService for writes and QueryService for read-only views.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/utang/internal/calculator"
	"github.com/mmynk/utang/internal/metrics"
	"github.com/mmynk/utang/internal/models"
	"github.com/mmynk/utang/internal/storage"
)

// Result is the outcome of a ledger write: the user as of the commit and the
// transaction written, if any.
type Result struct {
	User        *models.User
	Transaction *models.Transaction
}

// LedgerService performs every write that touches a balance. Each balance
// change is committed together with the transaction row that explains it.
type LedgerService struct {
	store   storage.Store
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewLedgerService creates a LedgerService with the given storage backend.
// m may be nil.
func NewLedgerService(store storage.Store, m *metrics.Metrics) *LedgerService {
	return &LedgerService{store: store, metrics: m, now: time.Now}
}

// CreateUser adds a counterparty. A non-zero magnitude is applied as the
// first transaction, in the same atomic unit and with the creation time.
func (s *LedgerService) CreateUser(ctx context.Context, username string, magnitude int64, kind models.Kind, description string) (res *Result, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("create_user", start, err) }()

	slog.Info("CreateUser request received",
		"username", username,
		"kind", kind,
		"magnitude", magnitude,
	)

	if err := validateEntry(username, description); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAmount, calculator.ErrUnknownKind)
	}
	if magnitude < 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAmount, calculator.ErrNegativeMagnitude)
	}

	err = s.store.Atomic(ctx, func(l storage.Ledger) error {
		id, err := l.InsertUser(ctx, username)
		if err != nil {
			return err
		}

		res = &Result{User: &models.User{ID: id, Username: username}}
		if magnitude == 0 {
			return nil
		}

		res.Transaction, err = s.apply(ctx, l, res.User, kind, magnitude, description)
		return err
	})
	if err != nil {
		err = translate(err)
		slog.Error("CreateUser failed", "username", username, "error", err)
		return nil, err
	}

	s.metrics.UserCreated()
	if res.Transaction != nil {
		s.metrics.TransactionWritten(kind, magnitude)
	}

	slog.Info("User created",
		"user_id", res.User.ID,
		"username", username,
		"balance", res.User.Balance,
	)

	return res, nil
}

// ApplyTransaction records a transaction of kind against an existing user.
// Returns ErrUserNotFound if the user does not exist; the caller decides
// whether to call CreateUser instead.
func (s *LedgerService) ApplyTransaction(ctx context.Context, username string, magnitude int64, kind models.Kind, description string) (res *Result, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("apply_transaction", start, err) }()

	slog.Info("ApplyTransaction request received",
		"username", username,
		"kind", kind,
		"magnitude", magnitude,
	)

	if err := validateEntry(username, description); err != nil {
		return nil, err
	}

	err = s.store.Atomic(ctx, func(l storage.Ledger) error {
		user, err := l.FindUser(ctx, username)
		if err != nil {
			return err
		}

		tx, err := s.apply(ctx, l, user, kind, magnitude, description)
		if err != nil {
			return err
		}

		res = &Result{User: user, Transaction: tx}
		return nil
	})
	if err != nil {
		err = translate(err)
		if errors.Is(err, ErrUserNotFound) {
			slog.Info("ApplyTransaction for unknown user", "username", username)
			return nil, err
		}
		slog.Error("ApplyTransaction failed", "username", username, "kind", kind, "error", err)
		return nil, err
	}

	s.metrics.TransactionWritten(kind, magnitude)

	slog.Info("Transaction applied",
		"transaction_id", res.Transaction.ID,
		"username", username,
		"amount", res.Transaction.Amount,
		"balance", res.User.Balance,
	)

	return res, nil
}

// apply adjusts user's balance and appends the matching transaction through
// l, which must be the handle of an open Atomic unit. user.Balance is
// updated to the new balance.
func (s *LedgerService) apply(ctx context.Context, l storage.Ledger, user *models.User, kind models.Kind, magnitude int64, description string) (*models.Transaction, error) {
	amount, err := calculator.SignedAmount(kind, magnitude)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}

	balance, err := calculator.AddBalance(user.Balance, amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}

	date := s.now().Local().Truncate(time.Second)

	if err := l.AdjustBalance(ctx, user.ID, amount); err != nil {
		return nil, err
	}

	id, err := l.InsertTransaction(ctx, user.ID, kind, amount, date, description)
	if err != nil {
		return nil, err
	}

	user.Balance = balance

	return &models.Transaction{
		ID:          id,
		UserID:      user.ID,
		Username:    user.Username,
		Kind:        kind,
		Amount:      amount,
		Date:        date,
		Description: description,
	}, nil
}
