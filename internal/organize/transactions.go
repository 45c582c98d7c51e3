package organize

import (
	"strings"

	"github.com/financeai/docledger/constants"
	"github.com/financeai/docledger/internal/document"
)

// transactionsExtractor is the workhorse: bank/card exports, statements.
type transactionsExtractor struct{}

func newTransactionsExtractor() EntityExtractor { return transactionsExtractor{} }

func (transactionsExtractor) Entity() string { return constants.EntityTransactions }

func (transactionsExtractor) ExtractPrompt(contextBlock string) string {
	parts := []string{
		"You are a financial transaction extractor. Return ONLY a JSON array of objects, one per transaction, with keys:",
		`"date" (calendar date, YYYY-MM-DD),`,
		`"amount" (signed number: negative = money out, positive = money in),`,
		`"description" (free text),`,
		`"category" (short label; use "Uncategorized" if unsure).`,
		"Do not include totals, balances, or header rows. If there are no transactions, return [].",
	}
	var b strings.Builder
	b.WriteString(strings.Join(parts, " "))
	b.WriteString("\n\nContent:\n")
	b.WriteString(contextBlock)
	return b.String()
}

// Validate enforces the required transaction shape: date normalizes, amount
// coerces numeric, description non-empty; category defaults when blank.
func (transactionsExtractor) Validate(rec *document.Record) (*document.Record, bool) {
	dateVal, ok := rec.Get("date")
	if !ok {
		return nil, false
	}
	date, ok := NormalizeDate(dateVal)
	if !ok {
		return nil, false
	}

	amountVal, ok := rec.Get("amount")
	if !ok {
		return nil, false
	}
	amount, ok := CoerceAmount(amountVal)
	if !ok {
		return nil, false
	}

	desc, ok := textField(rec, "description")
	if !ok {
		return nil, false
	}

	category, ok := textField(rec, "category")
	if !ok {
		category = constants.DefaultCategory
	}

	out := document.NewRecord()
	out.Set("date", document.Text(date))
	out.Set("amount", amount)
	out.Set("description", document.Text(desc))
	out.Set("category", document.Text(category))
	// carry through any extra fields the source supplied (e.g. notes)
	for _, f := range rec.Fields() {
		switch f {
		case "date", "amount", "description", "category":
			continue
		}
		if v, ok := rec.Get(f); ok {
			out.Set(f, v)
		}
	}
	return out, true
}

func (transactionsExtractor) StructuralFallback(text string) []*document.Record {
	return structuralTransactions(text)
}

func (transactionsExtractor) TabularFallback() bool { return true }
