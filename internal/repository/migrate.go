package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Statements are written in the SQL subset shared by SQLite and Postgres;
// timestamps are stored as RFC3339 strings so lexicographic order matches
// chronological order on both engines.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name          TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS purchase_records (
		user_id       TEXT NOT NULL,
		id            TEXT NOT NULL,
		date          TEXT NOT NULL,
		created_at    TEXT NOT NULL,
		vendor        TEXT NOT NULL DEFAULT '',
		receipt_image TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (user_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS purchase_items (
		user_id          TEXT NOT NULL,
		record_id        TEXT NOT NULL,
		item_id          TEXT NOT NULL,
		seq              INTEGER NOT NULL,
		name             TEXT NOT NULL DEFAULT '',
		category         TEXT NOT NULL DEFAULT '',
		color            TEXT NOT NULL DEFAULT '',
		size             TEXT NOT NULL DEFAULT '',
		options          TEXT NOT NULL DEFAULT '',
		unit_price       REAL NOT NULL DEFAULT 0,
		quantity         INTEGER NOT NULL DEFAULT 0,
		total_amount     REAL NOT NULL DEFAULT 0,
		missing_quantity INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, record_id, item_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_purchase_items_record
		ON purchase_items (user_id, record_id, seq)`,
	`CREATE INDEX IF NOT EXISTS idx_purchase_records_date
		ON purchase_records (user_id, date)`,
}

// Migrate applies the schema idempotently on startup.
func Migrate(ctx context.Context, db *sqlx.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	logger.Info("schema migration complete", "statements", len(migrations))
	return nil
}
