package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/utang/internal/models"
	"github.com/mmynk/utang/internal/storage"
)

// dateLayout is how dates are written. Rows carry their own UTC offset, so
// queries order by julianday(date), which SQLite normalizes to UTC for both
// layouts.
const dateLayout = time.RFC3339

// legacyDateLayout matches dates written by earlier versions of the tool,
// e.g. "2024-03-01 09:15:42.123456789 +07:00".
const legacyDateLayout = "2006-01-02 15:04:05.999999999 -07:00"

const selectTransactions = `
	SELECT t.id, t.user_id, u.username, t.transaction_type, t.amount, t.date, t.description
	FROM transactions t
	INNER JOIN users u ON u.id = t.user_id`

// InsertTransaction appends a transaction row. The date is stored in local
// time at second precision.
func (q *queries) InsertTransaction(ctx context.Context, userID int64, kind models.Kind, amount int64, date time.Time, description string) (int64, error) {
	var desc interface{} = nil
	if description != "" {
		desc = description
	}

	result, err := q.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, transaction_type, amount, date, description)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, string(kind), amount, formatDate(date), desc,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", classify(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read transaction id: %w", err)
	}

	return id, nil
}

// TransactionsForUser retrieves the newest transactions of one user.
func (q *queries) TransactionsForUser(ctx context.Context, username string, limit int) ([]*models.Transaction, error) {
	rows, err := q.db.QueryContext(ctx,
		selectTransactions+`
		WHERE u.username = ?
		ORDER BY julianday(t.date) DESC, t.id DESC
		LIMIT ?`,
		username, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for user: %w", classify(err))
	}
	return scanTransactions(rows)
}

// RecentTransactions retrieves the newest transactions across all users.
func (q *queries) RecentTransactions(ctx context.Context, limit int) ([]*models.Transaction, error) {
	rows, err := q.db.QueryContext(ctx,
		selectTransactions+`
		ORDER BY julianday(t.date) DESC, t.id DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent transactions: %w", classify(err))
	}
	return scanTransactions(rows)
}

// TransactionSums recomputes each user's balance from the transaction log.
func (q *queries) TransactionSums(ctx context.Context) (map[int64]int64, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT user_id, SUM(amount) FROM transactions GROUP BY user_id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sum transactions: %w", classify(err))
	}
	defer rows.Close()

	sums := make(map[int64]int64)
	for rows.Next() {
		var userID, sum int64
		if err := rows.Scan(&userID, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan transaction sum: %w", err)
		}
		sums[userID] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction sums: %w", err)
	}

	return sums, nil
}

func scanTransactions(rows *sql.Rows) ([]*models.Transaction, error) {
	defer rows.Close()

	transactions := []*models.Transaction{}
	for rows.Next() {
		t := &models.Transaction{}
		var kind, date string
		var description sql.NullString

		if err := rows.Scan(&t.ID, &t.UserID, &t.Username, &kind, &t.Amount, &date, &description); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		parsed, err := parseDate(date)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", t.ID, err)
		}
		t.Date = parsed
		t.Kind = models.Kind(kind)

		if description.Valid {
			t.Description = description.String
		}

		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}

func formatDate(t time.Time) string {
	return t.Local().Truncate(time.Second).Format(dateLayout)
}

// parseDate reads a stored date. It never falls back to the current time.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.Local(), nil
	}
	if t, err := time.Parse(legacyDateLayout, s); err == nil {
		return t.Local().Truncate(time.Second), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", storage.ErrMalformedTimestamp, s)
}
