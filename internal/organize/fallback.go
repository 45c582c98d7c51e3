package organize

import (
	"regexp"
	"strings"

	"github.com/financeai/docledger/constants"
	"github.com/financeai/docledger/internal/document"
)

// Structural fallback for transactions: line-oriented date/amount/description
// pattern matching over free text. Zero matches is a legitimate result.
var (
	reLineDate   = regexp.MustCompile(`\b(\d{4}[-/]\d{1,2}[-/]\d{1,2}|\d{1,2}[-/]\d{1,2}[-/]\d{2,4})\b`)
	reLineAmount = regexp.MustCompile(`[-(]?\$?(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d{1,2})?\)?`)
)

func structuralTransactions(text string) []*document.Record {
	var out []*document.Record
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		dateLoc := reLineDate.FindStringIndex(line)
		if dateLoc == nil {
			continue
		}
		dateStr := line[dateLoc[0]:dateLoc[1]]
		date, ok := NormalizeDate(document.Text(dateStr))
		if !ok {
			continue
		}

		rest := line[:dateLoc[0]] + line[dateLoc[1]:]
		amountLocs := reLineAmount.FindAllStringIndex(rest, -1)
		if len(amountLocs) == 0 {
			continue
		}
		// the amount is conventionally the last number on the line
		last := amountLocs[len(amountLocs)-1]
		amountStr := rest[last[0]:last[1]]
		amount, ok := CoerceAmount(document.Text(amountStr))
		if !ok {
			continue
		}

		desc := strings.TrimSpace(rest[:last[0]] + rest[last[1]:])
		desc = strings.Trim(desc, " -|\t")
		if desc == "" {
			continue
		}

		rec := document.NewRecord()
		rec.Set("date", document.Text(date))
		rec.Set("amount", amount)
		rec.Set("description", document.Text(desc))
		rec.Set("category", document.Text(constants.DefaultCategory))
		out = append(out, rec)
	}
	return out
}
