package organize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/financeai/docledger/internal/document"
)

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-01-15", "2024-01-15", true},
		{"2024/01/15", "2024-01-15", true},
		{"01/15/2024", "2024-01-15", true},
		{"1/5/2024", "2024-01-05", true},
		{"Jan 15, 2024", "2024-01-15", true},
		{"15 Jan 2024", "2024-01-15", true},
		{"2024-01-15T10:30:00Z", "2024-01-15", true},
		{"  2024-01-15  ", "2024-01-15", true},
		{"not a date", "", false},
		{"", "", false},
		{"15/45/2024", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeDate(document.Text(c.in))
		require.Equal(t, c.ok, ok, "input %q", c.in)
		require.Equal(t, c.want, got, "input %q", c.in)
	}
}

func TestNormalizeDate_NonTextRejected(t *testing.T) {
	_, ok := NormalizeDate(document.Int(20240115))
	require.False(t, ok)
	_, ok = NormalizeDate(document.Null())
	require.False(t, ok)
}

func TestCoerceAmount(t *testing.T) {
	cases := []struct {
		name string
		in   document.Value
		want document.Value
		ok   bool
	}{
		{"int passes", document.Int(-45), document.Int(-45), true},
		{"real passes", document.Real(-45.67), document.Real(-45.67), true},
		{"plain text", document.Text("-45.67"), document.Real(-45.67), true},
		{"dollar sign", document.Text("$1,234.56"), document.Real(1234.56), true},
		{"euro", document.Text("€99.99"), document.Real(99.99), true},
		{"accounting negative", document.Text("(45.67)"), document.Real(-45.67), true},
		{"accounting with symbol", document.Text("($1,000)"), document.Int(-1000), true},
		{"integral text", document.Text("120"), document.Int(120), true},
		{"spaces", document.Text(" 12.50 "), document.Real(12.5), true},
		{"garbage", document.Text("forty five"), document.Null(), false},
		{"empty", document.Text(""), document.Null(), false},
		{"null", document.Null(), document.Null(), false},
	}
	for _, c := range cases {
		got, ok := CoerceAmount(c.in)
		require.Equal(t, c.ok, ok, c.name)
		if !ok {
			continue
		}
		require.Equal(t, c.want.Kind(), got.Kind(), c.name)
		switch c.want.Kind() {
		case document.KindInt:
			require.Equal(t, c.want.IntVal(), got.IntVal(), c.name)
		case document.KindReal:
			require.InDelta(t, c.want.RealVal(), got.RealVal(), 1e-9, c.name)
		}
	}
}

func TestValidEntityName(t *testing.T) {
	require.True(t, ValidEntityName("transactions"))
	require.True(t, ValidEntityName("account_balances_2024"))
	require.False(t, ValidEntityName(""))
	require.False(t, ValidEntityName("Transactions"))
	require.False(t, ValidEntityName("2024_budget"))
	require.False(t, ValidEntityName("drop table; --"))
	require.False(t, ValidEntityName("a                                                                    b"))
}
