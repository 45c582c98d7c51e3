package oracle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractJSON_DirectObject(t *testing.T) {
	got := ExtractJSON(`{"document_type": "bank_statement"}`)
	require.JSONEq(t, `{"document_type": "bank_statement"}`, string(got))
}

func TestExtractJSON_DirectArray(t *testing.T) {
	got := ExtractJSON(`  [1, 2, 3]  `)
	require.JSONEq(t, `[1,2,3]`, string(got))
}

func TestExtractJSON_EmbeddedInProse(t *testing.T) {
	text := "Sure! Here is the summary you asked for:\n```json\n{\"entities\": [\"transactions\"]}\n```\nLet me know if you need anything else."
	got := ExtractJSON(text)
	require.JSONEq(t, `{"entities":["transactions"]}`, string(got))
}

func TestExtractJSON_BracesInsideStrings(t *testing.T) {
	text := `The result: {"description": "dinner at {the} place", "note": "a ] bracket"} done`
	got := ExtractJSON(text)
	require.NotNil(t, got)
	require.Contains(t, string(got), "dinner at {the} place")
}

func TestExtractJSON_EscapedQuotes(t *testing.T) {
	text := `prefix {"a": "he said \"hi\" {twice}"} suffix`
	got := ExtractJSON(text)
	require.JSONEq(t, `{"a": "he said \"hi\" {twice}"}`, string(got))
}

func TestExtractJSON_Unusable(t *testing.T) {
	for _, text := range []string{
		"",
		"   ",
		"no json here at all",
		"unbalanced { forever",
		`"just a string"`,
	} {
		require.Nil(t, ExtractJSON(text), "input %q", text)
	}
}

func TestExtractJSON_PrefersFirstBalancedSpan(t *testing.T) {
	got := ExtractJSON(`first {"a": 1} then {"b": 2}`)
	require.JSONEq(t, `{"a":1}`, string(got))
}
