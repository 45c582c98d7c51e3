package organize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/financeai/docledger/internal/document"
)

// dateLayouts is the normalization ladder, most specific first. Month-first
// before day-first: the bulk of the corpus is US-style exports.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
}

// NormalizeDate coerces a value to the unambiguous YYYY-MM-DD form.
func NormalizeDate(v document.Value) (string, bool) {
	var s string
	switch v.Kind() {
	case document.KindText:
		s = strings.TrimSpace(v.TextVal())
	default:
		return "", false
	}
	if s == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

var amountReplacer = strings.NewReplacer(
	"$", "", "€", "", "£", "", ",", "", " ", "",
)

// CoerceAmount coerces a value to a signed numeric amount. Text forms accept
// currency symbols, thousands separators, and accounting-style parentheses
// for negatives.
func CoerceAmount(v document.Value) (document.Value, bool) {
	switch v.Kind() {
	case document.KindInt:
		return v, true
	case document.KindReal:
		return v, true
	case document.KindText:
		s := strings.TrimSpace(v.TextVal())
		if s == "" {
			return document.Null(), false
		}
		neg := false
		if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
			neg = true
			s = s[1 : len(s)-1]
		}
		s = amountReplacer.Replace(s)
		d, err := decimal.NewFromString(s)
		if err != nil {
			return document.Null(), false
		}
		if neg {
			d = d.Neg()
		}
		if d.IsInteger() {
			return document.Int(d.IntPart()), true
		}
		f, _ := d.Float64()
		return document.Real(f), true
	default:
		return document.Null(), false
	}
}

// textField returns a trimmed non-empty text rendering of a field, if any.
func textField(rec *document.Record, field string) (string, bool) {
	v, ok := rec.Get(field)
	if !ok || v.IsNull() {
		return "", false
	}
	s := strings.TrimSpace(v.StorageText())
	return s, s != ""
}
