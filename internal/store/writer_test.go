package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/financeai/docledger/internal/document"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Config{Dialect: "sqlite", DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func txRecord(date string, amount document.Value, desc string) *document.Record {
	rec := document.NewRecord()
	rec.Set("date", document.Text(date))
	rec.Set("amount", amount)
	rec.Set("description", document.Text(desc))
	rec.Set("category", document.Text("Uncategorized"))
	return rec
}

func recordSet(entity string, recs ...*document.Record) *document.RecordSet {
	return &document.RecordSet{
		Entity:      entity,
		Records:     recs,
		SourceName:  "statement.csv",
		RecordCount: len(recs),
		ExtractedAt: time.Now().UTC(),
	}
}

func TestWrite_CreatesTableFromFirstRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.Write(ctx, recordSet("transactions",
		txRecord("2024-01-15", document.Real(-45.67), "GROCERY STORE"),
		txRecord("2024-01-16", document.Real(-12.00), "COFFEE"),
	))
	require.NoError(t, err)
	require.Equal(t, 2, n)

	cols, err := s.dialect.tableColumns(ctx, s.db, "transactions")
	require.NoError(t, err)
	byName := map[string]ColumnType{}
	for _, c := range cols {
		byName[c.Name] = c.Type
	}
	require.Equal(t, ColText, byName["date"])
	require.Equal(t, ColReal, byName["amount"])
	require.Equal(t, ColText, byName["description"])
	require.Equal(t, ColText, byName["category"])

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM transactions`).Scan(&count))
	require.Equal(t, 2, count)

	// bookkeeping columns are populated by the store, not the data
	var id int64
	var created string
	require.NoError(t, s.db.QueryRow(`SELECT id, created_at FROM transactions LIMIT 1`).Scan(&id, &created))
	require.NotZero(t, id)
	require.NotEmpty(t, created)
}

func TestWrite_GrowsSchemaForNewFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Write(ctx, recordSet("transactions",
		txRecord("2024-01-15", document.Real(-45.67), "GROCERY STORE"),
	))
	require.NoError(t, err)

	withNotes := txRecord("2024-02-01", document.Real(-9.99), "STREAMING")
	withNotes.Set("notes", document.Text("recurring"))
	_, err = s.Write(ctx, recordSet("transactions", withNotes))
	require.NoError(t, err)

	// the earlier row reads back with a NULL in the new column
	var notes *string
	require.NoError(t, s.db.QueryRow(
		`SELECT notes FROM transactions WHERE description = 'GROCERY STORE'`).Scan(&notes))
	require.Nil(t, notes)

	require.NoError(t, s.db.QueryRow(
		`SELECT notes FROM transactions WHERE description = 'STREAMING'`).Scan(&notes))
	require.NotNil(t, notes)
	require.Equal(t, "recurring", *notes)
}

func TestWrite_FirstSeenTypeWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := document.NewRecord()
	first.Set("ref", document.Text("ABC-1"))
	_, err := s.Write(ctx, recordSet("ledger_refs", first))
	require.NoError(t, err)

	// later integer values land in the TEXT column as text
	second := document.NewRecord()
	second.Set("ref", document.Int(42))
	_, err = s.Write(ctx, recordSet("ledger_refs", second))
	require.NoError(t, err)

	cols, err := s.dialect.tableColumns(ctx, s.db, "ledger_refs")
	require.NoError(t, err)
	require.Len(t, cols, 1)
	require.Equal(t, ColText, cols[0].Type)

	var ref string
	require.NoError(t, s.db.QueryRow(
		`SELECT ref FROM ledger_refs WHERE id = 2`).Scan(&ref))
	require.Equal(t, "42", ref)
}

func TestWrite_NewColumnTypedFromFirstNonNull(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed := document.NewRecord()
	seed.Set("name", document.Text("checking"))
	_, err := s.Write(ctx, recordSet("accounts", seed))
	require.NoError(t, err)

	// balance appears mid-batch: null on the first record carrying it
	a := document.NewRecord()
	a.Set("name", document.Text("savings"))
	a.Set("balance", document.Null())
	b := document.NewRecord()
	b.Set("name", document.Text("brokerage"))
	b.Set("balance", document.Real(1500.25))
	_, err = s.Write(ctx, recordSet("accounts", a, b))
	require.NoError(t, err)

	cols, err := s.dialect.tableColumns(ctx, s.db, "accounts")
	require.NoError(t, err)
	byName := map[string]ColumnType{}
	for _, c := range cols {
		byName[c.Name] = c.Type
	}
	require.Equal(t, ColReal, byName["balance"])
}

func TestWrite_EmptySetIsNoop(t *testing.T) {
	s := newTestStore(t)
	n, err := s.Write(context.Background(), recordSet("transactions"))
	require.NoError(t, err)
	require.Zero(t, n)

	cols, err := s.dialect.tableColumns(context.Background(), s.db, "transactions")
	require.NoError(t, err)
	require.Empty(t, cols)
}

func TestWrite_FieldNamesAreSanitized(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := document.NewRecord()
	rec.Set("Transaction Date", document.Text("2024-01-15"))
	rec.Set("Amount ($)", document.Real(-3.25))
	_, err := s.Write(ctx, recordSet("transactions", rec))
	require.NoError(t, err)

	var date string
	var amount float64
	require.NoError(t, s.db.QueryRow(
		`SELECT transaction_date, amount FROM transactions`).Scan(&date, &amount))
	require.Equal(t, "2024-01-15", date)
	require.InDelta(t, -3.25, amount, 1e-9)
}

func TestRegisterDocumentAndTables(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id1, err := s.RegisterDocument(ctx, "statement.csv")
	require.NoError(t, err)
	id2, err := s.RegisterDocument(ctx, "receipts.pdf")
	require.NoError(t, err)
	require.Greater(t, id2, id1)

	_, err = s.Write(ctx, recordSet("transactions",
		txRecord("2024-01-15", document.Real(-45.67), "GROCERY STORE")))
	require.NoError(t, err)

	tables, err := s.Tables(ctx)
	require.NoError(t, err)
	names := map[string]int{}
	for _, tb := range tables {
		names[tb.Name] = tb.Columns
	}
	require.Contains(t, names, "documents")
	require.Contains(t, names, "transactions")
	require.Equal(t, 4, names["transactions"])
}
