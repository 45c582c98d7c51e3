package document

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is an ordered field->value mapping. Field order matters: it is the
// order columns were seen in the source, and the schema writer preserves it
// when creating tables.
type Record struct {
	fields []string
	values map[string]Value
}

func NewRecord() *Record {
	return &Record{values: make(map[string]Value)}
}

// Set adds or replaces a field. First insertion fixes the field's position.
func (r *Record) Set(field string, v Value) {
	if _, ok := r.values[field]; !ok {
		r.fields = append(r.fields, field)
	}
	r.values[field] = v
}

// Get returns the value for a field; the second result reports presence.
func (r *Record) Get(field string) (Value, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Fields returns field names in insertion order.
func (r *Record) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

func (r *Record) Len() int { return len(r.fields) }

// MarshalJSON emits fields in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(r.values[f].AsAny())
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving its key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	rec, err := DecodeRecord(data)
	if err != nil {
		return err
	}
	*r = *rec
	return nil
}

// DecodeRecord parses a single JSON object into a Record, preserving the
// order of keys as they appear in the source text.
func DecodeRecord(data []byte) (*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("decode record: expected object, got %v", tok)
	}

	rec := NewRecord()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode record key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("decode record: non-string key %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode record value %q: %w", key, err)
		}
		rec.Set(key, decodeValue(raw))
	}
	// consume closing brace
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode record close: %w", err)
	}
	return rec, nil
}

// DecodeRecordArray parses a JSON array of objects into Records. Non-object
// elements are skipped rather than failing the whole array.
func DecodeRecordArray(data []byte) ([]*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode array: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("decode array: expected array, got %v", tok)
	}

	var out []*Record
	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode array element: %w", err)
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			continue
		}
		rec, err := DecodeRecord(trimmed)
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode array close: %w", err)
	}
	return out, nil
}

func decodeValue(raw json.RawMessage) Value {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Null()
	}
	switch trimmed[0] {
	case '{', '[':
		return Nested(string(trimmed))
	default:
		var x any
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&x); err != nil {
			return Text(string(trimmed))
		}
		return FromAny(x)
	}
}
