package moshi

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"
)

func TestWriterCompactDocument(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	mustWrite(t, w.BeginObject())
	mustWrite(t, w.Name("a"))
	mustWrite(t, w.BeginArray())
	mustWrite(t, w.WriteInt64(1))
	mustWrite(t, w.WriteString("s"))
	mustWrite(t, w.WriteBool(true))
	mustWrite(t, w.EndArray())
	mustWrite(t, w.Name("b"))
	mustWrite(t, w.WriteFloat64(2.5))
	mustWrite(t, w.EndObject())
	mustWrite(t, w.Close())

	want := `{"a":[1,"s",true],"b":2.5}`
	if got := buf.String(); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestWriterIndent(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.SetIndent("  ")
	mustWrite(t, w.BeginObject())
	mustWrite(t, w.Name("a"))
	mustWrite(t, w.BeginArray())
	mustWrite(t, w.WriteInt64(1))
	mustWrite(t, w.WriteInt64(2))
	mustWrite(t, w.EndArray())
	mustWrite(t, w.EndObject())
	mustWrite(t, w.Close())

	want := "{\n  \"a\": [\n    1,\n    2\n  ]\n}"
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriterNullElision(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	mustWrite(t, w.BeginObject())
	mustWrite(t, w.Name("a"))
	mustWrite(t, w.WriteNull())
	mustWrite(t, w.Name("b"))
	mustWrite(t, w.WriteInt64(1))
	mustWrite(t, w.EndObject())
	mustWrite(t, w.Close())

	if got := buf.String(); got != `{"b":1}` {
		t.Fatalf("null pair should be elided: %s", got)
	}
}

func TestWriterSerializeNulls(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.SetSerializeNulls(true)
	mustWrite(t, w.BeginObject())
	mustWrite(t, w.Name("a"))
	mustWrite(t, w.WriteNull())
	mustWrite(t, w.EndObject())
	mustWrite(t, w.Close())

	if got := buf.String(); got != `{"a":null}` {
		t.Fatalf("got %s", got)
	}
}

func TestWriterArrayNullNotElided(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	mustWrite(t, w.BeginArray())
	mustWrite(t, w.WriteNull())
	mustWrite(t, w.EndArray())
	mustWrite(t, w.Close())

	if got := buf.String(); got != `[null]` {
		t.Fatalf("got %s", got)
	}
}

func TestWriterStrictRejectsNonFinite(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := w.WriteFloat64(v)
		if _, ok := AsConfigError(err); !ok {
			t.Fatalf("%v: want ConfigError, got %v", v, err)
		}
	}
	if err := w.WriteNumber(json.Number("NaN")); err == nil {
		t.Fatalf("NaN number text should fail")
	}
}

func TestWriterLenientNonFinite(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.SetLenient(true)
	mustWrite(t, w.WriteFloat64(math.Inf(1)))
	if got := buf.String(); got != "Infinity" {
		t.Fatalf("lenient infinity rendering: %s", got)
	}
}

func TestWriterSecondTopLevelValueStrict(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	mustWrite(t, w.WriteInt64(1))
	err := w.WriteInt64(2)
	if _, ok := AsConfigError(err); !ok {
		t.Fatalf("want ConfigError, got %v", err)
	}
}

func TestWriterValueWithoutNameInObject(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	mustWrite(t, w.BeginObject())
	if err := w.WriteInt64(1); err == nil {
		t.Fatalf("value without name should fail")
	}
}

func TestWriterDanglingName(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	mustWrite(t, w.BeginObject())
	mustWrite(t, w.Name("a"))
	if err := w.EndObject(); err == nil {
		t.Fatalf("dangling name should fail")
	}
}

func TestWriterCloseIncomplete(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	mustWrite(t, w.BeginArray())
	if err := w.Close(); err == nil {
		t.Fatalf("close with open array should fail")
	}
}

func TestWriterStringEscaping(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	mustWrite(t, w.WriteString("a\"b\\c\nd\x01e\u2028f"))
	mustWrite(t, w.Close())

	want := `"a\"b\\c\nd\u0001e\u2028f"`
	if got := buf.String(); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestWriterNumberTextPreserved(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	mustWrite(t, w.BeginArray())
	mustWrite(t, w.WriteNumber(json.Number("0.300")))
	mustWrite(t, w.WriteNumber(json.Number("1e2")))
	mustWrite(t, w.EndArray())
	mustWrite(t, w.Close())

	if got := buf.String(); got != `[0.300,1e2]` {
		t.Fatalf("got %s", got)
	}
}

func TestWriterFlatten(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	mustWrite(t, w.BeginObject())
	mustWrite(t, w.Name("type"))
	mustWrite(t, w.WriteString("text"))

	token, err := w.BeginFlatten()
	if err != nil {
		t.Fatalf("begin flatten: %v", err)
	}
	// This nested object merges into the enclosing one.
	mustWrite(t, w.BeginObject())
	mustWrite(t, w.Name("text"))
	mustWrite(t, w.WriteString("hi"))
	mustWrite(t, w.EndObject())
	w.EndFlatten(token)

	mustWrite(t, w.EndObject())
	mustWrite(t, w.Close())

	want := `{"type":"text","text":"hi"}`
	if got := buf.String(); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestWriterFlattenArray(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	mustWrite(t, w.BeginArray())
	mustWrite(t, w.WriteInt64(1))
	token, err := w.BeginFlatten()
	if err != nil {
		t.Fatalf("begin flatten: %v", err)
	}
	mustWrite(t, w.BeginArray())
	mustWrite(t, w.WriteInt64(2))
	mustWrite(t, w.WriteInt64(3))
	mustWrite(t, w.EndArray())
	w.EndFlatten(token)
	mustWrite(t, w.WriteInt64(4))
	mustWrite(t, w.EndArray())
	mustWrite(t, w.Close())

	if got := buf.String(); got != `[1,2,3,4]` {
		t.Fatalf("got %s", got)
	}
}

func TestWriterFlattenDoesNotCrossNesting(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	mustWrite(t, w.BeginObject())
	mustWrite(t, w.Name("a"))
	mustWrite(t, w.WriteInt64(1))
	token, err := w.BeginFlatten()
	if err != nil {
		t.Fatalf("begin flatten: %v", err)
	}
	// Only the directly nested object is suppressed; deeper objects keep
	// their braces.
	mustWrite(t, w.BeginObject())
	mustWrite(t, w.Name("inner"))
	mustWrite(t, w.BeginObject())
	mustWrite(t, w.Name("x"))
	mustWrite(t, w.WriteInt64(1))
	mustWrite(t, w.EndObject())
	mustWrite(t, w.EndObject())
	w.EndFlatten(token)
	mustWrite(t, w.EndObject())
	mustWrite(t, w.Close())

	want := `{"a":1,"inner":{"x":1}}`
	if got := buf.String(); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestWriterNestingLimit(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	var err error
	for err == nil {
		err = w.BeginArray()
	}
	if _, ok := AsConfigError(err); !ok {
		t.Fatalf("want ConfigError, got %v", err)
	}
}

func TestWriterPath(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	mustWrite(t, w.BeginObject())
	mustWrite(t, w.Name("a"))
	mustWrite(t, w.BeginArray())
	mustWrite(t, w.WriteInt64(1))
	if got := w.Path(); got != "$.a[1]" {
		t.Fatalf("path: %q", got)
	}
}

func mustWrite(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
}
