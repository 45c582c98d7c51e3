package store

import (
	"context"
	"fmt"
	"time"
)

// The documents table is fixed-shape bookkeeping: one row per processed
// artifact. Dynamic entity tables carry no foreign key to it; their shape is
// not ours to extend.

func (s *Store) ensureDocumentsTable(ctx context.Context) error {
	var ddl string
	switch s.dialect.name() {
	case "postgres":
		ddl = `CREATE TABLE IF NOT EXISTS documents (
  id BIGSERIAL PRIMARY KEY,
  filename TEXT NOT NULL,
  uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	default:
		ddl = `CREATE TABLE IF NOT EXISTS documents (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  filename TEXT NOT NULL,
  uploaded_at TEXT NOT NULL
)`
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure documents table: %w", err)
	}
	return nil
}

// RegisterDocument records a processed artifact and returns its id.
func (s *Store) RegisterDocument(ctx context.Context, filename string) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	if s.dialect.name() == "postgres" {
		var id int64
		err := s.db.QueryRowContext(ctx,
			`INSERT INTO documents (filename) VALUES ($1) RETURNING id`, filename).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("register document: %w", err)
		}
		return id, nil
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (filename, uploaded_at) VALUES (?, ?)`, filename, now)
	if err != nil {
		return 0, fmt.Errorf("register document: %w", err)
	}
	return res.LastInsertId()
}

// TableSummary is one line of `docledger check` output: a dynamic table and
// how wide it has grown (forward-only schemas accumulate columns).
type TableSummary struct {
	Name    string
	Columns int
}

// Tables lists the dynamic entity tables with their declared column counts.
func (s *Store) Tables(ctx context.Context) ([]TableSummary, error) {
	var q string
	switch s.dialect.name() {
	case "postgres":
		q = `SELECT table_name FROM information_schema.tables
		      WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
		      ORDER BY table_name`
	default:
		q = `SELECT name FROM sqlite_master WHERE type = 'table'
		      AND name NOT LIKE 'sqlite_%' ORDER BY name`
	}
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []TableSummary
	for _, n := range names {
		cols, err := s.dialect.tableColumns(ctx, s.db, n)
		if err != nil {
			return nil, err
		}
		out = append(out, TableSummary{Name: n, Columns: len(cols)})
	}
	return out, nil
}
