package session

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/financeai/docledger/constants"
	"github.com/financeai/docledger/internal/extract"
	"github.com/financeai/docledger/internal/ingest"
	"github.com/financeai/docledger/internal/oracle"
	"github.com/financeai/docledger/internal/organize"
	"github.com/financeai/docledger/internal/store"
)

// stageBackend answers the summary prompt and the per-entity prompt with
// different scripted responses.
type stageBackend struct {
	pingErr  error
	summary  string
	entities string
}

func (b *stageBackend) Generate(ctx context.Context, prompt string, opts oracle.GenerateOptions) (string, error) {
	if strings.Contains(prompt, "document classifier") {
		return b.summary, nil
	}
	return b.entities, nil
}

func (b *stageBackend) Ping(ctx context.Context) error { return b.pingErr }

func newTestCoordinator(t *testing.T, b oracle.Backend) (*Coordinator, *store.Store, string) {
	t.Helper()
	st, err := store.Open(context.Background(), store.Config{Dialect: "sqlite", DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	orc := oracle.New(b, nil)
	ex := extract.NewStage(nil, orc, extract.Config{Model: "m"})
	org := organize.NewStage(nil, orc, organize.DefaultRegistry(), organize.Config{Model: "m"})
	workDir := t.TempDir()
	c := NewCoordinator(nil, ex, org, st, ingest.NewReader(nil), workDir)
	return c, st, workDir
}

const statementCSV = "Date,Description,Amount\n" +
	"2024-01-15,GROCERY STORE,-45.67\n" +
	"2024-01-16,PAYROLL DEPOSIT,2500.00\n"

func TestProcessArtifact_FullPipeline(t *testing.T) {
	b := &stageBackend{
		summary:  `{"document_type": "bank_statement", "date_range": "Jan 2024", "account_info": null, "currency": "USD", "entities": ["transactions"]}`,
		entities: `[{"date": "2024-01-15", "amount": -45.67, "description": "GROCERY STORE", "category": "Groceries"}, {"date": "2024-01-16", "amount": 2500.00, "description": "PAYROLL DEPOSIT", "category": "Income"}]`,
	}
	c, st, workDir := newTestCoordinator(t, b)

	res, err := c.ProcessArtifact(context.Background(), []byte(statementCSV), constants.KindTabular, "statement.csv")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, 2, res.RecordsWritten)
	require.Empty(t, res.FailedEntities)
	require.NotEmpty(t, res.SessionID)

	var count int
	require.NoError(t, st.DB().QueryRow(`SELECT COUNT(*) FROM transactions`).Scan(&count))
	require.Equal(t, 2, count)

	var docs int
	require.NoError(t, st.DB().QueryRow(`SELECT COUNT(*) FROM documents WHERE filename = 'statement.csv'`).Scan(&docs))
	require.Equal(t, 1, docs)

	// temp artifacts are gone after the session finishes
	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestProcessArtifact_BackendDownStillWrites(t *testing.T) {
	b := &stageBackend{pingErr: oracle.ErrBackendUnavailable}
	c, st, workDir := newTestCoordinator(t, b)

	res, err := c.ProcessArtifact(context.Background(), []byte(statementCSV), constants.KindTabular, "statement.csv")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, 2, res.RecordsWritten)

	// the source rows went in as-is with their sniffed numeric typing
	var amount float64
	require.NoError(t, st.DB().QueryRow(
		`SELECT amount FROM transactions WHERE description = 'GROCERY STORE'`).Scan(&amount))
	require.InDelta(t, -45.67, amount, 1e-9)

	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestProcessArtifact_NothingFoundIsSuccess(t *testing.T) {
	b := &stageBackend{summary: "[]", entities: "[]"}
	c, st, workDir := newTestCoordinator(t, b)

	res, err := c.ProcessArtifact(context.Background(),
		[]byte("Reminder: call the bank on Monday about the mortgage."),
		constants.KindText, "memo.txt")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Zero(t, res.RecordsWritten)

	// no entity table was ever created
	var count int
	err = st.DB().QueryRow(`SELECT COUNT(*) FROM transactions`).Scan(&count)
	require.Error(t, err)

	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestProcessArtifact_UndecodableInputFails(t *testing.T) {
	b := &stageBackend{summary: "{}", entities: "[]"}
	c, _, workDir := newTestCoordinator(t, b)

	res, err := c.ProcessArtifact(context.Background(), nil, constants.KindTabular, "empty.csv")
	require.Error(t, err)
	require.False(t, res.Success)
	require.NotEmpty(t, res.Error)

	// cleanup ran on the failure path too
	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestNewSessionID_Distinct(t *testing.T) {
	a := NewSessionID()
	b := NewSessionID()
	require.NotEqual(t, a, b)
	require.Contains(t, a, "-")
}

func TestSafeName_Sanitizes(t *testing.T) {
	n := safeName("../path/My Statement (Jan).csv", []byte("content"))
	require.NotContains(t, n, "/")
	require.NotContains(t, n, " ")
	require.NotContains(t, n, "(")

	// same name, different content: names must differ
	m := safeName("../path/My Statement (Jan).csv", []byte("other content"))
	require.NotEqual(t, n, m)
}
