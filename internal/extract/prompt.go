package extract

import (
	"encoding/json"
	"strings"
)

// BuildSummaryPrompt composes the semantic-summary instruction plus a bounded
// slice of the document's content. The oracle must answer with the fixed
// summary shape; entities are lowercase data-type names.
func BuildSummaryPrompt(context string) string {
	parts := []string{
		"You are a financial document classifier. Return ONLY a JSON object with keys:",
		`"document_type" (short free-text classification, e.g. "bank_statement", "budget_export"),`,
		`"date_range" (free text or null),`,
		`"account_info" (free text or null),`,
		`"currency" (ISO 4217 code if visible, else free text or null),`,
		`"entities" (array of lowercase data-type names present, e.g. ["transactions"]; known types: transactions, budgets, accounts).`,
		"Never invent entities that are not supported by the content.",
	}
	var b strings.Builder
	b.WriteString(strings.Join(parts, " "))
	b.WriteString("\n\nDocument content:\n")
	b.WriteString(context)
	return b.String()
}

// TabularSample renders the column list plus the first sampleRows rows as a
// compact JSON block for the summary prompt.
func TabularSample(columns []string, rows []json.RawMessage, sampleRows int) string {
	if sampleRows <= 0 {
		sampleRows = 5
	}
	if len(rows) > sampleRows {
		rows = rows[:sampleRows]
	}
	var b strings.Builder
	b.WriteString("Columns: ")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString("\nSample rows:\n")
	for _, r := range rows {
		b.Write(r)
		b.WriteByte('\n')
	}
	return b.String()
}

// TruncateText bounds free text to maxChars to respect the oracle's context
// window, marking the cut.
func TruncateText(text string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = 3000
	}
	if len(text) <= maxChars {
		return text
	}
	return text[:maxChars] + "\n…(truncated)"
}
