// Package storage holds the state store backends: in-process memory,
// a JSON file, redis and postgres.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/storefront/pkg/retry"
)

const (
	pingAttempts = 5
	pingDelay    = 200 * time.Millisecond
)

type sqldb interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PingContext(ctx context.Context) error
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Close() error
}

// ping waits for a backend to come up, backing off between attempts.
func ping(ctx context.Context, op string, fn func(context.Context) error) error {
	log := slog.With("op", op)

	attempt := 0
	err := retry.Do(ctx, retry.RetryConfig{
		MaxAttempts: pingAttempts,
		Backoff:     retry.ExponentialBackoff(pingDelay),
	}, func() error {
		attempt++
		err := fn(ctx)
		if err != nil {
			log.Warn("backend is not ready", "attempt", attempt, "err", err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: backend is unavailable: %w", op, err)
	}
	log.Info("backend is available")
	return nil
}
