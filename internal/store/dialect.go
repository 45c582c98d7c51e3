package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ColumnType is the store-neutral declared type of a column. Dialects map it
// to their own storage types.
type ColumnType string

const (
	ColInteger ColumnType = "INTEGER"
	ColReal    ColumnType = "REAL"
	ColText    ColumnType = "TEXT"
)

// Column is a declared data column (bookkeeping columns are implicit).
type Column struct {
	Name string
	Type ColumnType
}

// dialect abstracts the DDL/introspection differences between the supported
// stores. Introspection returns declared data columns in table order,
// excluding id/created_at/updated_at.
type dialect interface {
	name() string
	createTableSQL(table string, cols []Column) string
	addColumnSQL(table string, col Column) string
	insertSQL(table string, cols []string) string
	tableColumns(ctx context.Context, db *sql.DB, table string) ([]Column, error)
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, ``) + `"`
}

func isBookkeeping(name string) bool {
	switch name {
	case "id", "created_at", "updated_at":
		return true
	}
	return false
}

// ---- sqlite ----

type sqliteDialect struct{}

func (sqliteDialect) name() string { return "sqlite" }

func (sqliteDialect) createTableSQL(table string, cols []Column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", quoteIdent(table))
	b.WriteString("  id INTEGER PRIMARY KEY AUTOINCREMENT,\n")
	b.WriteString("  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,\n")
	b.WriteString("  updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP")
	for _, c := range cols {
		fmt.Fprintf(&b, ",\n  %s %s", quoteIdent(c.Name), c.Type)
	}
	b.WriteString("\n)")
	return b.String()
}

func (sqliteDialect) addColumnSQL(table string, col Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", quoteIdent(table), quoteIdent(col.Name), col.Type)
}

func (sqliteDialect) insertSQL(table string, cols []string) string {
	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
}

func (sqliteDialect) tableColumns(ctx context.Context, db *sql.DB, table string) ([]Column, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notnull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan table_info %s: %w", table, err)
		}
		if isBookkeeping(name) {
			continue
		}
		cols = append(cols, Column{Name: name, Type: logicalType(typ)})
	}
	return cols, rows.Err()
}

// ---- postgres ----

type postgresDialect struct{}

func (postgresDialect) name() string { return "postgres" }

func pgType(t ColumnType) string {
	switch t {
	case ColInteger:
		return "BIGINT"
	case ColReal:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

func (postgresDialect) createTableSQL(table string, cols []Column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", quoteIdent(table))
	b.WriteString("  id BIGSERIAL PRIMARY KEY,\n")
	b.WriteString("  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),\n")
	b.WriteString("  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()")
	for _, c := range cols {
		fmt.Fprintf(&b, ",\n  %s %s", quoteIdent(c.Name), pgType(c.Type))
	}
	b.WriteString("\n)")
	return b.String()
}

func (postgresDialect) addColumnSQL(table string, col Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", quoteIdent(table), quoteIdent(col.Name), pgType(col.Type))
}

func (postgresDialect) insertSQL(table string, cols []string) string {
	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
		marks[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
}

func (postgresDialect) tableColumns(ctx context.Context, db *sql.DB, table string) ([]Column, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT column_name, data_type
		   FROM information_schema.columns
		  WHERE table_schema = current_schema() AND table_name = $1
		  ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, fmt.Errorf("introspect %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, fmt.Errorf("scan columns %s: %w", table, err)
		}
		if isBookkeeping(name) {
			continue
		}
		cols = append(cols, Column{Name: name, Type: logicalType(typ)})
	}
	return cols, rows.Err()
}

// logicalType folds a dialect storage type back to the neutral one.
func logicalType(storage string) ColumnType {
	switch strings.ToUpper(storage) {
	case "INTEGER", "INT", "BIGINT", "SMALLINT":
		return ColInteger
	case "REAL", "DOUBLE PRECISION", "FLOAT", "NUMERIC":
		return ColReal
	default:
		return ColText
	}
}
