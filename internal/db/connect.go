package db

import (
	"context"
	"strings"

	"expenses_bot/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens the pool and verifies the database is reachable. Pool bounds of zero
// keep the pgxpool defaults.
func Connect(dsn string, minConns, maxConns int32) *pgxpool.Pool {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Fatal("failed to parse database url", "error", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if minConns > 0 && minConns <= cfg.MaxConns {
		cfg.MinConns = minConns
	}

	db, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		logger.Fatal("failed to create database pool", "error", err)
	}

	if err := db.Ping(context.Background()); err != nil {
		logger.Fatal("failed to ping database", "error", err)
	}

	logger.Info("database connected", "min_conns", cfg.MinConns, "max_conns", cfg.MaxConns)
	return db
}

// LedgerTables are the tables WipeAll empties.
var LedgerTables = []string{"transactions", "user_counters", "user_flows", "audit_logs"}

// WipeAll deletes every record, counter, dialogue and audit entry of every user.
func WipeAll(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, `TRUNCATE TABLE `+strings.Join(LedgerTables, ", ")+` RESTART IDENTITY`)
	return err
}
