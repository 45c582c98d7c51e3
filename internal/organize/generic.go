package organize

import (
	"fmt"
	"strings"

	"github.com/financeai/docledger/internal/document"
)

// genericExtractor covers entity names the registry does not know. Model
// extraction with a generic prompt only: there is no structural pattern and
// no rows-as-is fallback for a shape we cannot name.
type genericExtractor struct {
	entity string
}

func newGenericExtractor(entity string) EntityExtractor {
	return genericExtractor{entity: entity}
}

func (g genericExtractor) Entity() string { return g.entity }

func (g genericExtractor) ExtractPrompt(contextBlock string) string {
	parts := []string{
		fmt.Sprintf("You are a structured data extractor. The document contains %q records.", g.entity),
		"Return ONLY a JSON array of flat objects, one per record, using short lowercase snake_case keys derived from the content.",
		"Use numbers for numeric values and strings otherwise. If there are no such records, return [].",
	}
	var b strings.Builder
	b.WriteString(strings.Join(parts, " "))
	b.WriteString("\n\nContent:\n")
	b.WriteString(contextBlock)
	return b.String()
}

// Validate only requires some substance: at least one non-null field.
func (g genericExtractor) Validate(rec *document.Record) (*document.Record, bool) {
	for _, f := range rec.Fields() {
		if v, ok := rec.Get(f); ok && !v.IsNull() {
			return rec, true
		}
	}
	return nil, false
}

func (g genericExtractor) StructuralFallback(string) []*document.Record { return nil }

func (g genericExtractor) TabularFallback() bool { return false }
