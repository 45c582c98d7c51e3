package store

import (
	"context"
	"fmt"
	"time"

	"github.com/financeai/docledger/internal/common"
	"github.com/financeai/docledger/internal/document"
)

// Write persists one record set: ensures a matching table exists with a
// column for every field present, then inserts every record inside a single
// transaction. The insert is all-or-nothing per record set; a failure rolls
// back this record set only. Returns the number of rows persisted.
func (s *Store) Write(ctx context.Context, rs *document.RecordSet) (int, error) {
	start := time.Now()
	table := rs.Entity
	if len(rs.Records) == 0 {
		return 0, nil
	}

	cols, err := s.ensureSchema(ctx, table, rs.Records)
	if err != nil {
		return 0, common.NewAppError("SCHEMA_ERROR",
			fmt.Sprintf("ensure schema for %q", table),
			fmt.Errorf("%w: %w", common.ErrStorageWrite, err))
	}

	colNames := make([]string, len(cols))
	colTypes := make(map[string]ColumnType, len(cols))
	for i, c := range cols {
		colNames[i] = c.Name
		colTypes[c.Name] = c.Type
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %w", common.ErrStorageWrite, err)
	}

	stmt, err := tx.PrepareContext(ctx, s.dialect.insertSQL(table, colNames))
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("%w: prepare insert into %q: %w", common.ErrStorageWrite, table, err)
	}

	written := 0
	for _, rec := range rs.Records {
		args := make([]any, len(colNames))
		byCol := make(map[string]document.Value, rec.Len())
		for _, f := range rec.Fields() {
			if v, ok := rec.Get(f); ok {
				byCol[SanitizeColumn(f)] = v
			}
		}
		for i, name := range colNames {
			v, ok := byCol[name]
			if !ok {
				args[i] = nil // declared column the record does not populate
				continue
			}
			args[i] = storageArg(colTypes[name], v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			s.logger.Error("store.write.rolled_back",
				"table", table,
				"rows_attempted", len(rs.Records),
				"error", err,
			)
			return 0, common.NewAppError("WRITE_ERROR",
				fmt.Sprintf("insert into %q", table),
				fmt.Errorf("%w: %w", common.ErrStorageWrite, err))
		}
		written++
	}
	if err := stmt.Close(); err != nil {
		s.logger.Warn("store.write.stmt_close_error", "table", table, "error", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit %q: %w", common.ErrStorageWrite, table, err)
	}

	s.logger.Info("store.write.ok",
		"table", table,
		"rows", written,
		"columns", len(colNames),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return written, nil
}

// ensureSchema creates the table on first sight or appends any columns the
// incoming records introduce. Existing columns are never removed or retyped.
// Returns the declared data columns after the changes.
func (s *Store) ensureSchema(ctx context.Context, table string, records []*document.Record) ([]Column, error) {
	existing, err := s.dialect.tableColumns(ctx, s.db, table)
	if err != nil {
		return nil, err
	}

	if len(existing) == 0 {
		// absent: infer from the first full record; later records' extra
		// fields are appended below, same as for an existing table
		cols := inferColumns(records[0])
		ddl := s.dialect.createTableSQL(table, cols)
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return nil, fmt.Errorf("create table %q: %w", table, err)
		}
		s.logger.Info("store.schema.created", "table", table, "columns", len(cols))
		existing = cols
	}

	known := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		known[c.Name] = struct{}{}
	}

	// union of field names across all records, in first-seen order
	for _, newCol := range missingColumns(records, known) {
		if _, err := s.db.ExecContext(ctx, s.dialect.addColumnSQL(table, newCol)); err != nil {
			return nil, fmt.Errorf("add column %q.%q: %w", table, newCol.Name, err)
		}
		s.logger.Info("store.schema.column_added",
			"table", table, "column", newCol.Name, "type", string(newCol.Type))
		existing = append(existing, newCol)
		known[newCol.Name] = struct{}{}
	}
	return existing, nil
}

// inferColumns types every field of the table-shaping first record.
func inferColumns(rec *document.Record) []Column {
	var cols []Column
	seen := make(map[string]struct{})
	for _, f := range rec.Fields() {
		name := SanitizeColumn(f)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		v, _ := rec.Get(f)
		cols = append(cols, Column{Name: name, Type: InferType(v)})
	}
	return cols
}

// missingColumns finds fields not yet declared, typing each from the first
// record carrying a non-null value for it (text when every value is null).
func missingColumns(records []*document.Record, known map[string]struct{}) []Column {
	var out []Column
	added := make(map[string]struct{})
	for _, rec := range records {
		for _, f := range rec.Fields() {
			name := SanitizeColumn(f)
			if _, ok := known[name]; ok {
				continue
			}
			if _, ok := added[name]; ok {
				continue
			}
			added[name] = struct{}{}

			col := Column{Name: name, Type: ColText}
			for _, r := range records {
				if v, ok := r.Get(f); ok && !v.IsNull() {
					col.Type = InferType(v)
					break
				}
			}
			out = append(out, col)
		}
	}
	return out
}
