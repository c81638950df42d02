package db

import (
	"context"
	"fmt"
	"sync"

	"expenses_bot/internal/logger"
	"expenses_bot/internal/migrations"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// migrationLockKey serializes schema setup across processes sharing one database.
const migrationLockKey int64 = 0x6578_7062_6f74

// Migrator applies the embedded schema at most once per process. A failed run can be retried.
type Migrator struct {
	mu   sync.Mutex
	done bool
}

var defaultMigrator Migrator

// Migrate applies the schema through the process-wide Migrator.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	return defaultMigrator.Run(ctx, db)
}

func (m *Migrator) Run(ctx context.Context, db *pgxpool.Pool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return nil
	}

	names, err := migrations.Names()
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}

	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockKey); err != nil {
		return fmt.Errorf("lock migrations: %w", err)
	}

	for _, name := range names {
		if err := apply(ctx, tx, name); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	m.done = true
	logger.Info("schema ready", "migrations", len(names))
	return nil
}

func apply(ctx context.Context, tx pgx.Tx, name string) error {
	sql, err := migrations.Read(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx, sql); err != nil {
		return fmt.Errorf("apply %s: %w", name, err)
	}
	return nil
}

// ApplyOne runs a single migration file in its own transaction.
func ApplyOne(ctx context.Context, db *pgxpool.Pool, name string) error {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := apply(ctx, tx, name); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
