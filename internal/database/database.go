// Package database opens the SQL pool behind the postgres and mysql record stores
// and carries transactions through context.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// Config holds database configuration settings.
type Config struct {
	Driver             string
	ConnectionString   string
	MaxOpenConnections int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	// PingInterval is the wait between ping attempts while the database comes up.
	// Zero pings once.
	PingInterval time.Duration
}

// Connect opens a pooled connection and pings it until it answers or ctx expires.
// The pool is closed again on failure.
func Connect(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := waitForPing(ctx, db, cfg.PingInterval); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func waitForPing(ctx context.Context, db *sql.DB, interval time.Duration) error {
	for attempt := 1; ; attempt++ {
		err := db.PingContext(ctx)
		if err == nil || interval <= 0 {
			return err
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		case <-time.After(interval):
		}
	}
}
