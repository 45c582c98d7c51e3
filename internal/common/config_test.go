package common

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DOCLEDGER_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, "sqlite", cfg.Store.Dialect)
	require.Equal(t, "data/finance.db", cfg.Store.DSN)
	require.Equal(t, "http://localhost:11434", cfg.Oracle.URL)
	require.Equal(t, "./tmp", cfg.Pipeline.WorkDir)
	require.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoadConfig_FileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docledger.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[store]
dialect = "postgres"
dsn = "postgres://localhost/finance"

[oracle]
extraction_model = "from-file"
`), 0o644))

	t.Setenv("DOCLEDGER_CONFIG", path)
	t.Setenv("LLM_EXTRACTION_MODEL", "from-env")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	// env wins over file, file wins over defaults
	require.Equal(t, "from-env", cfg.Oracle.ExtractionModel)
	require.Equal(t, "postgres", cfg.Store.Dialect)
	require.Equal(t, "postgres://localhost/finance", cfg.Store.DSN)
	require.Equal(t, "gemma2:2b-instruct-q4_K_M", cfg.Oracle.OrganizerModel)
}

func TestConfig_ValidateRejectsBadDialect(t *testing.T) {
	cfg := defaults()
	cfg.Store.Dialect = "oracle-rdbms"
	err := cfg.Validate()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestAppError_WrapsAndUnwraps(t *testing.T) {
	err := NewAppError("WRITE_ERROR", "insert into transactions", ErrStorageWrite)
	require.ErrorIs(t, err, ErrStorageWrite)
	require.Contains(t, err.Error(), "WRITE_ERROR")
	require.Contains(t, err.Error(), "insert into transactions")

	var ae *AppError
	require.True(t, errors.As(err, &ae))
	require.Equal(t, "WRITE_ERROR", ae.Code)
}

func TestWrapError(t *testing.T) {
	require.Nil(t, WrapError(nil, "context"))
	err := WrapError(ErrInternal, "opening store")
	require.ErrorIs(t, err, ErrInternal)
	require.Contains(t, err.Error(), "opening store")
}
