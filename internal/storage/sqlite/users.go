package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/utang/internal/models"
	"github.com/mmynk/utang/internal/storage"
)

// InsertUser inserts a new user with a zero balance.
func (q *queries) InsertUser(ctx context.Context, username string) (int64, error) {
	result, err := q.db.ExecContext(ctx,
		"INSERT INTO users (username, balance) VALUES (?, 0)",
		username,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user %q: %w", username, classify(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read user id: %w", err)
	}

	return id, nil
}

// FindUser retrieves a user by username.
func (q *queries) FindUser(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	err := q.db.QueryRowContext(ctx,
		"SELECT id, username, balance FROM users WHERE username = ?",
		username,
	).Scan(&user.ID, &user.Username, &user.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", classify(err))
	}

	return user, nil
}

// ListUsers retrieves all users ordered by username.
func (q *queries) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, username, balance FROM users ORDER BY username",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", classify(err))
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Username, &user.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// AdjustBalance adds delta to the user's balance with a single UPDATE, so
// the read-modify-write happens inside SQLite.
func (q *queries) AdjustBalance(ctx context.Context, userID int64, delta int64) error {
	result, err := q.db.ExecContext(ctx,
		"UPDATE users SET balance = balance + ? WHERE id = ?",
		delta, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user balance: %w", classify(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user id %d: %w", userID, storage.ErrNotFound)
	}

	return nil
}
