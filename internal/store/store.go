// Package store is the schema-evolving writer: it persists record sets into
// relational tables whose shape is discovered from the data. Tables are
// created on first sight of an entity name and only ever grow; column types
// are fixed the first time a field is seen.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite" // SQLite driver
)

// Config mirrors the store section of the app configuration.
type Config struct {
	Dialect          string // "sqlite" (default) or "postgres"
	DSN              string
	MaxConns         int32
	MinConns         int32
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// Store wraps a database handle plus the dialect that knows how to create,
// introspect, and grow tables on it.
type Store struct {
	db      *sql.DB
	pool    *pgxpool.Pool // postgres only
	dialect dialect
	logger  *slog.Logger
}

// Open connects to the configured store and ensures the bookkeeping
// `documents` table exists.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var s *Store
	switch cfg.Dialect {
	case "", "sqlite":
		db, err := openSQLite(cfg.DSN)
		if err != nil {
			return nil, err
		}
		s = &Store{db: db, dialect: sqliteDialect{}, logger: logger}
	case "postgres":
		db, pool, err := openPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		s = &Store{db: db, pool: pool, dialect: postgresDialect{}, logger: logger}
	default:
		return nil, fmt.Errorf("unknown store dialect %q", cfg.Dialect)
	}

	if err := s.ensureDocumentsTable(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	logger.Info("store.open", "dialect", s.dialect.name())
	return s, nil
}

func openSQLite(dsn string) (*sql.DB, error) {
	if dsn == "" {
		dsn = "data/finance.db"
	}
	// file-backed databases get their directory plus the usual pragmas
	if !strings.HasPrefix(dsn, ":memory:") && !strings.Contains(dsn, "?") {
		if dir := filepath.Dir(dsn); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
		}
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// each pooled connection to :memory: would see its own empty database
	if strings.HasPrefix(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, *pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("store.open.parse_dsn_failed", "error", err)
		return nil, nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "docledger"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("store.open.connect_failed", "error", err)
		return nil, nil, err
	}
	return stdlib.OpenDBFromPool(pool), pool, nil
}

// Close closes the database connections gracefully.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// HealthCheck pings the store to catch DSN issues early.
func (s *Store) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.db.PingContext(ctx)
}

// DB exposes the underlying handle for introspection commands.
func (s *Store) DB() *sql.DB { return s.db }
