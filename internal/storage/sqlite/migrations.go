package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations holds the schema steps in order. The schema version stored in
// PRAGMA user_version is the number of steps already applied, so a step
// must never be edited once released; append a new one instead.
var migrations = []string{
	// 1: users and their transaction log.
	`
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    balance INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    transaction_type TEXT NOT NULL,
    amount INTEGER NOT NULL,
    date TEXT NOT NULL,
    description TEXT,
    FOREIGN KEY (user_id) REFERENCES users(id)
);
`,
	// 2: indexes matching the display order.
	`
CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date DESC, id DESC);
`,
	// 3: order by instant rather than by text, which differs across UTC offsets.
	`
DROP INDEX IF EXISTS idx_transactions_user_date;
DROP INDEX IF EXISTS idx_transactions_date;
CREATE INDEX IF NOT EXISTS idx_transactions_user_instant ON transactions(user_id, julianday(date) DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_transactions_instant ON transactions(julianday(date) DESC, id DESC);
`,
}

// schemaVersion is the version a fully migrated database reports.
var schemaVersion = len(migrations)

// runMigrations brings the schema up to date. The version is read inside
// the same transaction that applies the pending steps, so two processes
// opening a fresh file at once apply each step only once.
func runMigrations(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback()

	var version int
	if err := tx.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, schemaVersion)
	}

	for i := version; i < schemaVersion; i++ {
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", i+1, err)
		}
	}

	if version != schemaVersion {
		// PRAGMA does not accept bound parameters.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	}

	return tx.Commit()
}
