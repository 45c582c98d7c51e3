package extract

// BuildSummarySchema returns the fixed shape we require from the semantic
// summary call, as a JSON-Schema (draft 2020-12 subset) generic map.
func BuildSummarySchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"document_type": map[string]any{"type": "string"},
			"date_range":    map[string]any{"type": []any{"string", "null"}},
			"account_info":  map[string]any{"type": []any{"string", "null"}},
			"currency":      map[string]any{"type": []any{"string", "null"}},
			"entities": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"document_type"},
	}
}
