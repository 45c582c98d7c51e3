package document

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecord_PreservesFieldOrder(t *testing.T) {
	rec := NewRecord()
	rec.Set("date", Text("2024-01-15"))
	rec.Set("amount", Real(-45.67))
	rec.Set("description", Text("GROCERY STORE"))
	require.Equal(t, []string{"date", "amount", "description"}, rec.Fields())

	// re-setting an existing field keeps its position
	rec.Set("date", Text("2024-01-16"))
	require.Equal(t, []string{"date", "amount", "description"}, rec.Fields())
	require.Equal(t, 3, rec.Len())
}

func TestRecord_JSONRoundTripKeepsOrder(t *testing.T) {
	in := `{"zebra": 1, "apple": "x", "mango": null}`
	rec, err := DecodeRecord([]byte(in))
	require.NoError(t, err)
	require.Equal(t, []string{"zebra", "apple", "mango"}, rec.Fields())

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	require.Equal(t, `{"zebra":1,"apple":"x","mango":null}`, string(out))
}

func TestDecodeRecordArray_SkipsNonObjects(t *testing.T) {
	recs, err := DecodeRecordArray([]byte(`[{"a": 1}, "stray string", 42, {"b": 2}]`))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	v, ok := recs[1].Get("b")
	require.True(t, ok)
	require.Equal(t, int64(2), v.IntVal())
}

func TestFromAny_Typing(t *testing.T) {
	require.Equal(t, KindNull, FromAny(nil).Kind())
	require.Equal(t, KindBool, FromAny(true).Kind())
	require.Equal(t, KindText, FromAny("hi").Kind())

	// whole floats from JSON decoding keep integer typing
	v := FromAny(float64(42))
	require.Equal(t, KindInt, v.Kind())
	require.Equal(t, int64(42), v.IntVal())

	v = FromAny(float64(-45.67))
	require.Equal(t, KindReal, v.Kind())
	require.InDelta(t, -45.67, v.RealVal(), 1e-9)

	v = FromAny(map[string]any{"nested": true})
	require.Equal(t, KindNested, v.Kind())
	require.JSONEq(t, `{"nested":true}`, v.TextVal())
}

func TestValue_StorageText(t *testing.T) {
	require.Equal(t, "", Null().StorageText())
	require.Equal(t, "true", Bool(true).StorageText())
	require.Equal(t, "-45.67", Real(-45.67).StorageText())
	require.Equal(t, "12", Int(12).StorageText())
	require.Equal(t, "hello", Text("hello").StorageText())
}

func TestDecodeRecord_NestedValuesKeptSerialized(t *testing.T) {
	rec, err := DecodeRecord([]byte(`{"meta": {"source": "csv"}, "tags": ["a", "b"]}`))
	require.NoError(t, err)

	meta, ok := rec.Get("meta")
	require.True(t, ok)
	require.Equal(t, KindNested, meta.Kind())
	require.JSONEq(t, `{"source":"csv"}`, meta.TextVal())

	tags, ok := rec.Get("tags")
	require.True(t, ok)
	require.Equal(t, KindNested, tags.Kind())
	require.JSONEq(t, `["a","b"]`, tags.TextVal())
}
