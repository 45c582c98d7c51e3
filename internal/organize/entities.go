package organize

import (
	"strings"

	"github.com/financeai/docledger/internal/document"
)

// budgetsExtractor handles budget exports: category allocations per period.
type budgetsExtractor struct{}

func newBudgetsExtractor() EntityExtractor { return budgetsExtractor{} }

func (budgetsExtractor) Entity() string { return "budgets" }

func (budgetsExtractor) ExtractPrompt(contextBlock string) string {
	parts := []string{
		"You are a budget extractor. Return ONLY a JSON array of objects, one per budget line, with keys:",
		`"category" (budget category name),`,
		`"amount" (allocated amount, number),`,
		`"period" (free text, e.g. "2025-01" or "monthly"; null if not visible).`,
		"If there are no budget lines, return [].",
	}
	var b strings.Builder
	b.WriteString(strings.Join(parts, " "))
	b.WriteString("\n\nContent:\n")
	b.WriteString(contextBlock)
	return b.String()
}

func (budgetsExtractor) Validate(rec *document.Record) (*document.Record, bool) {
	category, ok := textField(rec, "category")
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

	out := document.NewRecord()
	out.Set("category", document.Text(category))
	out.Set("amount", amount)
	if period, ok := textField(rec, "period"); ok {
		out.Set("period", document.Text(period))
	}
	for _, f := range rec.Fields() {
		switch f {
		case "category", "amount", "period":
			continue
		}
		if v, ok := rec.Get(f); ok {
			out.Set(f, v)
		}
	}
	return out, true
}

func (budgetsExtractor) StructuralFallback(string) []*document.Record { return nil }

func (budgetsExtractor) TabularFallback() bool { return true }

// accountsExtractor handles account listings: name, type, balance.
type accountsExtractor struct{}

func newAccountsExtractor() EntityExtractor { return accountsExtractor{} }

func (accountsExtractor) Entity() string { return "accounts" }

func (accountsExtractor) ExtractPrompt(contextBlock string) string {
	parts := []string{
		"You are an account extractor. Return ONLY a JSON array of objects, one per account, with keys:",
		`"name" (account name or number),`,
		`"account_type" (free text, e.g. "checking", "savings"; null if not visible),`,
		`"balance" (number; null if not visible),`,
		`"currency" (ISO 4217 code if visible, else null).`,
		"If there are no accounts, return [].",
	}
	var b strings.Builder
	b.WriteString(strings.Join(parts, " "))
	b.WriteString("\n\nContent:\n")
	b.WriteString(contextBlock)
	return b.String()
}

func (accountsExtractor) Validate(rec *document.Record) (*document.Record, bool) {
	name, ok := textField(rec, "name")
	if !ok {
		return nil, false
	}

	out := document.NewRecord()
	out.Set("name", document.Text(name))
	if typ, ok := textField(rec, "account_type"); ok {
		out.Set("account_type", document.Text(typ))
	}
	if v, ok := rec.Get("balance"); ok {
		if balance, ok := CoerceAmount(v); ok {
			out.Set("balance", balance)
		}
	}
	if cur, ok := textField(rec, "currency"); ok {
		out.Set("currency", document.Text(strings.ToUpper(cur)))
	}
	for _, f := range rec.Fields() {
		switch f {
		case "name", "account_type", "balance", "currency":
			continue
		}
		if v, ok := rec.Get(f); ok {
			out.Set(f, v)
		}
	}
	return out, true
}

func (accountsExtractor) StructuralFallback(string) []*document.Record { return nil }

func (accountsExtractor) TabularFallback() bool { return true }
