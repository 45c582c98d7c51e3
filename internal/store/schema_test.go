package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/financeai/docledger/internal/document"
)

func TestInferType(t *testing.T) {
	require.Equal(t, ColText, InferType(document.Text("hello")))
	require.Equal(t, ColText, InferType(document.Null()))
	require.Equal(t, ColText, InferType(document.Nested(`{"a":1}`)))
	require.Equal(t, ColInteger, InferType(document.Int(42)))
	require.Equal(t, ColInteger, InferType(document.Bool(true)))
	require.Equal(t, ColReal, InferType(document.Real(-45.67)))
}

func TestSanitizeColumn(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Amount", "amount"},
		{"  Transaction Date  ", "transaction_date"},
		{"Amount ($)", "amount"},
		{"card#/ref", "card_ref"},
		{"2024 total", "f_2024_total"},
		{"", "field"},
		{"!!!", "field"},
		{"id", "id_value"},
		{"created_at", "created_at_value"},
		{"updated_at", "updated_at_value"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, SanitizeColumn(c.in), "input %q", c.in)
	}

	long := SanitizeColumn("a_very_long_header_name_that_keeps_going_and_going_and_going_well_past_any_limit")
	require.LessOrEqual(t, len(long), 63)
}

func TestStorageArg_CoercesToDeclaredType(t *testing.T) {
	// declared INTEGER
	require.Equal(t, int64(1), storageArg(ColInteger, document.Bool(true)))
	require.Equal(t, int64(0), storageArg(ColInteger, document.Bool(false)))
	require.Equal(t, int64(7), storageArg(ColInteger, document.Int(7)))
	require.Equal(t, int64(7), storageArg(ColInteger, document.Real(7.0)))
	require.Equal(t, "7.5", storageArg(ColInteger, document.Real(7.5)))
	require.Equal(t, "later text", storageArg(ColInteger, document.Text("later text")))

	// declared REAL
	require.Equal(t, float64(7), storageArg(ColReal, document.Int(7)))
	require.Equal(t, -45.67, storageArg(ColReal, document.Real(-45.67)))
	require.Equal(t, "n/a", storageArg(ColReal, document.Text("n/a")))

	// declared TEXT takes everything as its text rendering
	require.Equal(t, "42", storageArg(ColText, document.Int(42)))
	require.Equal(t, "true", storageArg(ColText, document.Bool(true)))

	// null is null regardless of declared type
	require.Nil(t, storageArg(ColInteger, document.Null()))
	require.Nil(t, storageArg(ColText, document.Null()))
}
