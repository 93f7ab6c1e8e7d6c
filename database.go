package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
)

// openDB opens the PostgreSQL pool and waits for the server to accept connections.
func openDB(ctx context.Context, cfg *Config, log *logrus.Logger) (*sql.DB, error) {
	config, err := pgx.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	maxRetries := cfg.DBConnectRetries
	retryDelay := cfg.DBRetryDelay

	for i := 0; i < maxRetries; i++ {
		db := stdlib.OpenDB(*config)
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxIdleTime(5 * time.Minute)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := db.PingContext(pingCtx)
		cancel()
		if err == nil {
			log.Info("Database connection established")
			return db, nil
		}
		db.Close()

		if i == maxRetries-1 {
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
		}

		entry := log.WithField(FieldAttempt, fmt.Sprintf("%d/%d", i+1, maxRetries))
		// Log the actual error for the first few attempts and every 10th after that
		if i%10 == 0 || i < 5 {
			entry = entry.WithError(err)
		}
		entry.Warnf("Database not ready, retrying in %v", retryDelay)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return nil, fmt.Errorf("failed to connect to database: no attempts configured")
}
