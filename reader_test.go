package moshi

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestReaderBasicDocument(t *testing.T) {
	r := NewReaderBytes([]byte(`{"a":[1,2.5,"s",true,null]}`))
	if err := r.BeginObject(); err != nil {
		t.Fatalf("begin object: %v", err)
	}
	name, err := r.NextName()
	if err != nil || name != "a" {
		t.Fatalf("next name: %q %v", name, err)
	}
	if err := r.BeginArray(); err != nil {
		t.Fatalf("begin array: %v", err)
	}
	if n, err := r.NextInt64(); err != nil || n != 1 {
		t.Fatalf("int: %d %v", n, err)
	}
	if f, err := r.NextFloat64(); err != nil || f != 2.5 {
		t.Fatalf("float: %v %v", f, err)
	}
	if s, err := r.NextString(); err != nil || s != "s" {
		t.Fatalf("string: %q %v", s, err)
	}
	if b, err := r.NextBool(); err != nil || !b {
		t.Fatalf("bool: %v %v", b, err)
	}
	if err := r.NextNull(); err != nil {
		t.Fatalf("null: %v", err)
	}
	if err := r.EndArray(); err != nil {
		t.Fatalf("end array: %v", err)
	}
	if err := r.EndObject(); err != nil {
		t.Fatalf("end object: %v", err)
	}
	k, err := r.Peek()
	if err != nil || k != KindEndOfDocument {
		t.Fatalf("peek after document: %v %v", k, err)
	}
}

func TestReaderFromIOReader(t *testing.T) {
	r := NewReader(strings.NewReader(`[true]`))
	if err := r.BeginArray(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if b, err := r.NextBool(); err != nil || !b {
		t.Fatalf("bool: %v %v", b, err)
	}
	if err := r.EndArray(); err != nil {
		t.Fatalf("end: %v", err)
	}
}

func TestReaderPath(t *testing.T) {
	r := NewReaderBytes([]byte(`{"a":[true,false]}`))
	_ = r.BeginObject()
	_, _ = r.NextName()
	_ = r.BeginArray()
	if _, err := r.NextBool(); err != nil {
		t.Fatalf("bool: %v", err)
	}
	if got := r.Path(); got != "$.a[1]" {
		t.Fatalf("path: %q", got)
	}
}

func TestReaderTypeMismatchIsDataError(t *testing.T) {
	r := NewReaderBytes([]byte(`"hi"`))
	_, err := r.NextBool()
	de, ok := AsDataError(err)
	if !ok {
		t.Fatalf("want DataError, got %v", err)
	}
	if !strings.Contains(de.Msg, "BOOLEAN") || !strings.Contains(de.Msg, "STRING") {
		t.Fatalf("message %q should name expected and actual kinds", de.Msg)
	}
}

func TestReaderStringEscapes(t *testing.T) {
	r := NewReaderBytes([]byte(`"A\n\t\"\\\/x"`))
	s, err := r.NextString()
	if err != nil {
		t.Fatalf("string: %v", err)
	}
	if s != "A\n\t\"\\/x" {
		t.Fatalf("decoded %q", s)
	}
}

func TestReaderSurrogatePair(t *testing.T) {
	r := NewReaderBytes([]byte(`"😀"`))
	s, err := r.NextString()
	if err != nil {
		t.Fatalf("string: %v", err)
	}
	if s != "\U0001f600" {
		t.Fatalf("decoded %q", s)
	}
}

func TestReaderNumberAsString(t *testing.T) {
	r := NewReaderBytes([]byte(`[12, 1.5e2]`))
	_ = r.BeginArray()
	if s, err := r.NextString(); err != nil || s != "12" {
		t.Fatalf("long as string: %q %v", s, err)
	}
	if s, err := r.NextString(); err != nil || s != "1.5e2" {
		t.Fatalf("number as string: %q %v", s, err)
	}
}

func TestReaderInt64Bounds(t *testing.T) {
	r := NewReaderBytes([]byte(`[9223372036854775807,-9223372036854775808]`))
	_ = r.BeginArray()
	if n, err := r.NextInt64(); err != nil || n != 9223372036854775807 {
		t.Fatalf("max: %d %v", n, err)
	}
	if n, err := r.NextInt64(); err != nil || n != -9223372036854775808 {
		t.Fatalf("min: %d %v", n, err)
	}

	r = NewReaderBytes([]byte(`9223372036854775808`))
	if _, err := r.NextInt64(); err == nil {
		t.Fatalf("overflow should fail")
	}
}

func TestReaderIntegralDouble(t *testing.T) {
	r := NewReaderBytes([]byte(`3.0`))
	n, err := r.NextInt64()
	if err != nil || n != 3 {
		t.Fatalf("3.0 as int: %d %v", n, err)
	}

	r = NewReaderBytes([]byte(`3.5`))
	if _, err := r.NextInt64(); err == nil {
		t.Fatalf("3.5 as int should fail")
	}
}

func TestReaderNextNumberKeepsText(t *testing.T) {
	r := NewReaderBytes([]byte(`[1e2, 100, 0.300]`))
	_ = r.BeginArray()
	for _, want := range []string{"1e2", "100", "0.300"} {
		n, err := r.NextNumber()
		if err != nil {
			t.Fatalf("number: %v", err)
		}
		if n.String() != want {
			t.Fatalf("number text %q, want %q", n, want)
		}
	}
}

func TestReaderStrictRejectsLenientSyntax(t *testing.T) {
	cases := []string{
		`[1,]`,            // implicit null
		`{a:1}`,           // unquoted name
		`['a']`,           // single quotes
		`[01]`,            // leading zero
		`[1] [2]`,         // multiple top-level values
		`[/* comment */1]`,
		`[NaN]`,
		`# hash`,
	}
	for _, src := range cases {
		r := NewReaderBytes([]byte(src))
		err := drain(r)
		if err == nil {
			t.Fatalf("%s: strict mode should fail", src)
		}
		if _, ok := AsSyntaxError(err); !ok {
			t.Fatalf("%s: want SyntaxError, got %v", src, err)
		}
	}
}

func TestReaderLenientAcceptsRelaxedSyntax(t *testing.T) {
	cases := []string{
		`{a:1}`,
		`['a']`,
		`[01]`,
		`[/* comment */1]`,
		`[1 // line comment
]`,
		`[1 # hash comment
]`,
		`{"a"=>1}`,
		`unquoted`,
	}
	for _, src := range cases {
		r := NewReaderBytes([]byte(src))
		r.SetLenient(true)
		if err := drain(r); err != nil {
			t.Fatalf("%s: %v", src, err)
		}
	}
}

func TestReaderLenientImplicitNull(t *testing.T) {
	r := NewReaderBytes([]byte(`[1,,3]`))
	r.SetLenient(true)
	_ = r.BeginArray()
	if n, err := r.NextInt64(); err != nil || n != 1 {
		t.Fatalf("first: %d %v", n, err)
	}
	if err := r.NextNull(); err != nil {
		t.Fatalf("implicit null: %v", err)
	}
	if n, err := r.NextInt64(); err != nil || n != 3 {
		t.Fatalf("third: %d %v", n, err)
	}
}

func TestReaderLenientMultipleTopLevel(t *testing.T) {
	r := NewReaderBytes([]byte(`true false`))
	r.SetLenient(true)
	if b, err := r.NextBool(); err != nil || !b {
		t.Fatalf("first: %v %v", b, err)
	}
	if b, err := r.NextBool(); err != nil || b {
		t.Fatalf("second: %v %v", b, err)
	}
	if k, err := r.Peek(); err != nil || k != KindEndOfDocument {
		t.Fatalf("end: %v %v", k, err)
	}
}

func TestReaderLenientNaN(t *testing.T) {
	r := NewReaderBytes([]byte(`[NaN, Infinity, -Infinity]`))
	r.SetLenient(true)
	_ = r.BeginArray()
	f, err := r.NextFloat64()
	if err != nil || f == f {
		t.Fatalf("NaN: %v %v", f, err)
	}
	for i := 0; i < 2; i++ {
		if _, err := r.NextFloat64(); err != nil {
			t.Fatalf("infinity: %v", err)
		}
	}
}

func TestReaderSelectName(t *testing.T) {
	opts := NewOptions("a", "b")
	r := NewReaderBytes([]byte(`{"a":1,"c":true,"b":2}`))
	_ = r.BeginObject()

	idx, err := r.SelectName(opts)
	if err != nil || idx != 0 {
		t.Fatalf("a: %d %v", idx, err)
	}
	if _, err := r.NextInt64(); err != nil {
		t.Fatalf("a value: %v", err)
	}

	// "c" is no candidate: SelectName leaves it unconsumed.
	idx, err = r.SelectName(opts)
	if err != nil || idx != -1 {
		t.Fatalf("c: %d %v", idx, err)
	}
	if err := r.SkipName(); err != nil {
		t.Fatalf("skip name: %v", err)
	}
	if err := r.SkipValue(); err != nil {
		t.Fatalf("skip value: %v", err)
	}

	idx, err = r.SelectName(opts)
	if err != nil || idx != 1 {
		t.Fatalf("b: %d %v", idx, err)
	}
	if _, err := r.NextInt64(); err != nil {
		t.Fatalf("b value: %v", err)
	}
	if err := r.EndObject(); err != nil {
		t.Fatalf("end: %v", err)
	}
}

func TestReaderSelectNameEscapedInput(t *testing.T) {
	opts := NewOptions("snowman")
	r := NewReaderBytes([]byte(`{"snowman":1}`))
	_ = r.BeginObject()
	idx, err := r.SelectName(opts)
	if err != nil || idx != 0 {
		t.Fatalf("escaped name should match: %d %v", idx, err)
	}
}

func TestReaderSelectString(t *testing.T) {
	opts := NewOptions("red", "green")
	r := NewReaderBytes([]byte(`["green","blue"]`))
	_ = r.BeginArray()
	idx, err := r.SelectString(opts)
	if err != nil || idx != 1 {
		t.Fatalf("green: %d %v", idx, err)
	}
	idx, err = r.SelectString(opts)
	if err != nil || idx != -1 {
		t.Fatalf("blue: %d %v", idx, err)
	}
	if s, err := r.NextString(); err != nil || s != "blue" {
		t.Fatalf("blue unconsumed: %q %v", s, err)
	}
}

func TestReaderPeekReaderIndependent(t *testing.T) {
	r := NewReaderBytes([]byte(`{"a":1,"b":2}`))
	_ = r.BeginObject()

	p := r.PeekReader()
	if name, err := p.NextName(); err != nil || name != "a" {
		t.Fatalf("peeked name: %q %v", name, err)
	}
	if n, err := p.NextInt64(); err != nil || n != 1 {
		t.Fatalf("peeked value: %d %v", n, err)
	}

	// The original is still positioned before "a".
	if name, err := r.NextName(); err != nil || name != "a" {
		t.Fatalf("original name: %q %v", name, err)
	}
}

func TestReaderPrematureEOF(t *testing.T) {
	for _, src := range []string{`{"a":`, `[1,`, `"unterminated`, `{`} {
		r := NewReaderBytes([]byte(src))
		err := drain(r)
		if err == nil {
			t.Fatalf("%s: should fail", src)
		}
		if _, ok := AsSyntaxError(err); !ok {
			t.Fatalf("%s: want SyntaxError, got %v", src, err)
		}
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Fatalf("%s: want ErrUnexpectedEOF, got %v", src, err)
		}
	}
}

func TestReaderNestingLimit(t *testing.T) {
	r := NewReaderBytes([]byte(strings.Repeat("[", 600)))
	var err error
	for err == nil {
		err = r.BeginArray()
	}
	if _, ok := AsDataError(err); !ok {
		t.Fatalf("want DataError, got %v", err)
	}
}

func TestReaderFailOnUnknown(t *testing.T) {
	r := NewReaderBytes([]byte(`{"a":1}`))
	r.SetFailOnUnknown(true)
	_ = r.BeginObject()
	if err := r.SkipName(); err == nil {
		t.Fatalf("skip name should fail")
	}
}

func TestReaderSkipValueNested(t *testing.T) {
	r := NewReaderBytes([]byte(`{"a":{"b":[1,{"c":2}]},"d":3}`))
	_ = r.BeginObject()
	_, _ = r.NextName()
	if err := r.SkipValue(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if name, err := r.NextName(); err != nil || name != "d" {
		t.Fatalf("after skip: %q %v", name, err)
	}
}

func TestReaderCloseIdempotent(t *testing.T) {
	r := NewReaderBytes([]byte(`1`))
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := r.Peek(); err == nil {
		t.Fatalf("peek after close should fail")
	}
}

// drain consumes one complete document, erroring where the reader does.
func drain(r Reader) error {
	for {
		k, err := r.Peek()
		if err != nil {
			return err
		}
		switch k {
		case KindBeginArray:
			if err := r.BeginArray(); err != nil {
				return err
			}
		case KindEndArray:
			if err := r.EndArray(); err != nil {
				return err
			}
		case KindBeginObject:
			if err := r.BeginObject(); err != nil {
				return err
			}
		case KindEndObject:
			if err := r.EndObject(); err != nil {
				return err
			}
		case KindName:
			if _, err := r.NextName(); err != nil {
				return err
			}
		case KindString:
			if _, err := r.NextString(); err != nil {
				return err
			}
		case KindNumber:
			if _, err := r.NextNumber(); err != nil {
				return err
			}
		case KindBool:
			if _, err := r.NextBool(); err != nil {
				return err
			}
		case KindNull:
			if err := r.NextNull(); err != nil {
				return err
			}
		case KindEndOfDocument:
			return nil
		}
	}
}
