package oracle

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls a JSON object or array out of free-form model text.
// Two steps: try the whole text as JSON, then scan for the first balanced
// object or array substring. Returns nil when neither works; this path
// never fails.
func ExtractJSON(text string) json.RawMessage {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if json.Valid([]byte(trimmed)) && (trimmed[0] == '{' || trimmed[0] == '[') {
		return json.RawMessage(trimmed)
	}
	if sub := balancedSubstring(trimmed); sub != "" && json.Valid([]byte(sub)) {
		return json.RawMessage(sub)
	}
	return nil
}

// balancedSubstring returns the first balanced {...} or [...] span, tracking
// string literals and escapes so braces inside strings don't count.
func balancedSubstring(s string) string {
	start := -1
	var open, close byte
	for i := 0; i < len(s); i++ {
		if s[i] == '{' || s[i] == '[' {
			start = i
			open = s[i]
			if open == '{' {
				close = '}'
			} else {
				close = ']'
			}
			break
		}
	}
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
