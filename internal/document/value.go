// Package document holds the dynamic data model shared by the pipeline
// stages: a small tagged value union, ordered records, and the intermediate
// artifacts (extraction records and record sets) that flow between stages.
package document

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind tags the concrete type held by a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindReal
	KindText
	KindNested // object or list, kept as serialized JSON
)

// Value is a tagged union for field values whose types are not known at
// compile time. The zero Value is null.
type Value struct {
	kind ValueKind
	b    bool
	i    int64
	r    float64
	s    string // text, or serialized JSON for nested values
}

func Null() Value            { return Value{} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Int(i int64) Value      { return Value{kind: KindInt, i: i} }
func Real(r float64) Value   { return Value{kind: KindReal, r: r} }
func Text(s string) Value    { return Value{kind: KindText, s: s} }
func Nested(js string) Value { return Value{kind: KindNested, s: js} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }

func (v Value) BoolVal() bool    { return v.b }
func (v Value) IntVal() int64    { return v.i }
func (v Value) RealVal() float64 { return v.r }

// TextVal returns the text payload for text and nested values.
func (v Value) TextVal() string { return v.s }

// StorageText renders any value as text, the form of last resort for
// storage coercion.
func (v Value) StorageText() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindReal:
		return strconv.FormatFloat(v.r, 'f', -1, 64)
	default:
		return v.s
	}
}

// FromAny converts a decoded JSON value (the any-typed shapes produced by
// encoding/json) into a tagged Value. Whole-number floats become integers so
// that JSON-roundtripped counts keep integer typing.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case string:
		return Text(t)
	case float64:
		if t == float64(int64(t)) {
			return Int(int64(t))
		}
		return Real(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i)
		}
		if f, err := t.Float64(); err == nil {
			return Real(f)
		}
		return Text(t.String())
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float32:
		return Real(float64(t))
	default:
		// object or list: keep a serialized form
		b, err := json.Marshal(t)
		if err != nil {
			return Text(fmt.Sprintf("%v", t))
		}
		return Nested(string(b))
	}
}

// AsAny converts a Value back to a plain JSON-encodable shape, used when
// serializing intermediate artifacts.
func (v Value) AsAny() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindReal:
		return v.r
	case KindNested:
		return json.RawMessage(v.s)
	default:
		return v.s
	}
}
