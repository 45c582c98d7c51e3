package store

import (
	"regexp"
	"strings"

	"github.com/financeai/docledger/internal/document"
)

// InferType maps a value to a declared column type. Checked in priority
// order: boolean, floating-point, integer, nested, everything else (including
// null) as text. This runs once per field, on the first non-null sighting;
// the result is permanent.
func InferType(v document.Value) ColumnType {
	switch v.Kind() {
	case document.KindBool:
		return ColInteger
	case document.KindReal:
		return ColReal
	case document.KindInt:
		return ColInteger
	case document.KindNested:
		return ColText
	default:
		return ColText
	}
}

var reIdentStrip = regexp.MustCompile(`[^a-z0-9_]+`)

// SanitizeColumn turns an arbitrary field name into a safe column name.
// Bookkeeping names get a suffix so source data can never collide with them.
func SanitizeColumn(field string) string {
	s := strings.ToLower(strings.TrimSpace(field))
	s = reIdentStrip.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		s = "field"
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "f_" + s
	}
	if isBookkeeping(s) {
		s += "_value"
	}
	if len(s) > 63 {
		s = s[:63]
	}
	return s
}

// storageArg coerces a value into the driver argument for a column of the
// declared type. Values that cannot be represented in the declared type are
// surfaced as their text rendering rather than rejected (first-seen-wins
// typing never retypes the column).
func storageArg(t ColumnType, v document.Value) any {
	if v.IsNull() {
		return nil
	}
	switch t {
	case ColInteger:
		switch v.Kind() {
		case document.KindBool:
			if v.BoolVal() {
				return int64(1)
			}
			return int64(0)
		case document.KindInt:
			return v.IntVal()
		case document.KindReal:
			if r := v.RealVal(); r == float64(int64(r)) {
				return int64(r)
			}
			return v.StorageText()
		default:
			return v.StorageText()
		}
	case ColReal:
		switch v.Kind() {
		case document.KindInt:
			return float64(v.IntVal())
		case document.KindReal:
			return v.RealVal()
		default:
			return v.StorageText()
		}
	default:
		return v.StorageText()
	}
}
