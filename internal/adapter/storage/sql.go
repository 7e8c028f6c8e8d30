package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.ClosableStateStore = (*SQLStore)(nil)

// SQLStore keeps state in the state_entries table of a postgres database.
// The table is created by the migrator.
type SQLStore struct {
	sqldb   sqldb
	profile string
}

func NewSQLStore(ctx context.Context, dsn, profile string) (*SQLStore, error) {
	const op = "NewSQLStore"

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	connStr := stdlib.RegisterConnConfig(connConfig)
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := ping(ctx, op, db.PingContext); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLStore{sqldb: db, profile: profile}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "SQLStore.Get"

	query := `
		SELECT value FROM state_entries
		WHERE profile = $1 AND key = $2;
	`

	var value []byte
	err := s.sqldb.QueryRowContext(ctx, query, s.profile, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %q: %w", op, key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return value, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	const op = "SQLStore.Set"

	query := `
		INSERT INTO state_entries (profile, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (profile, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at;
	`

	if value == nil {
		value = []byte{}
	}
	if _, err := s.sqldb.ExecContext(ctx, query, s.profile, key, value); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	const op = "SQLStore.Delete"

	query := `
		DELETE FROM state_entries
		WHERE profile = $1 AND key = $2;
	`

	if _, err := s.sqldb.ExecContext(ctx, query, s.profile, key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *SQLStore) Close() {
	const op = "SQLStore.Close"
	log := slog.With("op", op)

	log.Info("closing sql database...")

	if err := s.sqldb.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("sql database is closed")
}
