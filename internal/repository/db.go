package repository

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	// database/sql drivers: pgx for postgres DSNs, modernc sqlite otherwise.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/swjin-lab/purchases-tracker/internal/common"
)

// Open connects to the database selected by the DSN: postgres:// URLs go
// through the pgx stdlib driver, anything else is treated as a SQLite path.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*sqlx.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	driver := "sqlite"
	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		driver = "pgx"
	}
	logger.Info("connecting to database", "driver", driver)

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	db, err := sqlx.ConnectContext(ctx, driver, cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "driver", driver, "error", err)
		return nil, err
	}

	if driver == "sqlite" {
		// modernc sqlite handles one writer; serialize access.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxConns)
		db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	}

	logger.Info("successfully connected to database")
	return db, nil
}

// HealthCheck pings the database to catch DSN issues early.
func HealthCheck(ctx context.Context, db *sqlx.DB, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}
