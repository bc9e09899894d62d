package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmynk/utang/internal/calculator"
	"github.com/mmynk/utang/internal/metrics"
	"github.com/mmynk/utang/internal/models"
	"github.com/mmynk/utang/internal/storage"
)

// DefaultLimit is the number of transactions shown when the caller does
// not ask for a specific count.
const DefaultLimit = 5

// QueryService answers read-only questions about the ledger.
type QueryService struct {
	store        storage.Store
	metrics      *metrics.Metrics
	defaultLimit int
}

// NewQueryService creates a QueryService. A defaultLimit <= 0 means
// DefaultLimit. m may be nil.
func NewQueryService(store storage.Store, m *metrics.Metrics, defaultLimit int) *QueryService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	return &QueryService{store: store, metrics: m, defaultLimit: defaultLimit}
}

func (s *QueryService) limit(n int) int {
	if n <= 0 {
		return s.defaultLimit
	}
	return n
}

// Check returns the user's balance and up to limit of their most recent
// transactions, newest first. Both are read in one atomic unit so the
// balance matches the listed history.
func (s *QueryService) Check(ctx context.Context, username string, limit int) (stmt *models.Statement, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("check", start, err) }()

	slog.Info("Check request received", "username", username, "limit", limit)

	err = s.store.Atomic(ctx, func(l storage.Ledger) error {
		user, err := l.FindUser(ctx, username)
		if err != nil {
			return err
		}

		transactions, err := l.TransactionsForUser(ctx, username, s.limit(limit))
		if err != nil {
			return err
		}

		stmt = &models.Statement{User: user, Transactions: transactions}
		return nil
	})
	if err != nil {
		err = translate(err)
		if errors.Is(err, ErrUserNotFound) {
			slog.Info("Check for unknown user", "username", username)
			return nil, err
		}
		slog.Error("Check failed", "username", username, "error", err)
		return nil, err
	}

	slog.Info("Check successful",
		"username", username,
		"balance", stmt.User.Balance,
		"transactions_count", len(stmt.Transactions),
	)

	return stmt, nil
}

// History returns up to limit of the most recent transactions across all
// users, newest first.
func (s *QueryService) History(ctx context.Context, limit int) (transactions []*models.Transaction, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("history", start, err) }()

	slog.Info("History request received", "limit", limit)

	transactions, err = s.store.RecentTransactions(ctx, s.limit(limit))
	if err != nil {
		err = translate(err)
		slog.Error("History failed", "error", err)
		return nil, err
	}

	slog.Info("History successful", "transactions_count", len(transactions))

	return transactions, nil
}

// Balances lists every user with their balance, ordered by username, along
// with the totals across all of them.
func (s *QueryService) Balances(ctx context.Context) (users []*models.User, totals calculator.Totals, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("balances", start, err) }()

	users, err = s.store.ListUsers(ctx)
	if err != nil {
		err = translate(err)
		slog.Error("Balances failed", "error", err)
		return nil, calculator.Totals{}, err
	}

	return users, calculator.Summarize(users), nil
}

// Usernames lists every username, for shell completion.
func (s *QueryService) Usernames(ctx context.Context) ([]string, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, translate(err)
	}

	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Username
	}
	return names, nil
}

// Reconcile recomputes every balance from the transaction log and reports
// the users whose stored balance differs. An empty result means the ledger
// is consistent.
func (s *QueryService) Reconcile(ctx context.Context) (drifts []calculator.Drift, err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("reconcile", start, err) }()

	slog.Info("Reconcile request received")

	err = s.store.Atomic(ctx, func(l storage.Ledger) error {
		users, err := l.ListUsers(ctx)
		if err != nil {
			return err
		}

		sums, err := l.TransactionSums(ctx)
		if err != nil {
			return err
		}

		drifts = calculator.Reconcile(users, sums)
		return nil
	})
	if err != nil {
		err = translate(err)
		slog.Error("Reconcile failed", "error", err)
		return nil, err
	}

	for _, d := range drifts {
		slog.Warn("Balance drift detected",
			"user_id", d.UserID,
			"username", d.Username,
			"stored", d.Stored,
			"computed", d.Computed,
		)
	}

	return drifts, nil
}
