package moshi

import (
	"encoding/json"
	"io"
)

// Reader is a pull-based view over a stream of JSON tokens. Two
// implementations exist: the stream reader lexing JSON text (NewReader,
// NewReaderBytes) and the value reader walking an already-decoded tree
// (NewValueReader).
//
// Readers are stateful and not safe for concurrent use. After a returned
// error the reader remains valid only for Path; callers should abandon it.
type Reader interface {
	// Peek reports the kind of the next token without consuming it.
	Peek() (Kind, error)

	// HasNext reports whether the current object or array has another
	// element.
	HasNext() (bool, error)

	// BeginArray consumes the next token, failing unless it opens an array.
	BeginArray() error
	// EndArray consumes the next token, failing unless it closes an array.
	EndArray() error
	// BeginObject consumes the next token, failing unless it opens an object.
	BeginObject() error
	// EndObject consumes the next token, failing unless it closes an object.
	EndObject() error

	// NextName consumes and returns the next property name.
	NextName() (string, error)
	// SelectName matches the upcoming name against opts without materializing
	// a string on the exact-bytes fast path. Returns the candidate index, or
	// -1 without consuming anything when the name is not a candidate.
	SelectName(opts *Options) (int, error)
	// SkipName consumes and discards the next property name.
	SkipName() error

	// NextString consumes the next token as a string.
	NextString() (string, error)
	// SelectString is SelectName for string values.
	SelectString(opts *Options) (int, error)
	// NextBool consumes the next token as a boolean.
	NextBool() (bool, error)
	// NextNull consumes the next token, failing unless it is a null.
	NextNull() error
	// NextFloat64 consumes the next token as a double. Succeeds for every
	// well-formed JSON number; in lenient mode also for quoted numbers and
	// NaN/Infinity.
	NextFloat64() (float64, error)
	// NextInt64 consumes the next token as an int64, failing if the value has
	// a fractional part or does not fit.
	NextInt64() (int64, error)
	// NextNumber consumes the next token as a number preserving its exact
	// text, keeping the integer-vs-floating distinction intact.
	NextNumber() (json.Number, error)

	// SkipValue consumes and discards the next complete value, honoring
	// nesting. Fails when the reader is configured to fail on unknown values.
	SkipValue() error
	// ReadValue reads the next complete value into the natural Go tree:
	// map[string]any, []any, string, json.Number, bool, or nil.
	ReadValue() (any, error)

	// PeekReader returns an independent reader positioned at the same spot.
	// Consuming it does not affect this reader.
	PeekReader() Reader

	// Path renders the current location as $.a[2].b, for diagnostics.
	Path() string

	// SetLenient relaxes syntax checks: comments, unquoted and single-quoted
	// strings, non-finite numbers, multiple top-level values, and more.
	SetLenient(lenient bool)
	IsLenient() bool

	// SetFailOnUnknown makes SkipValue fail instead of silently discarding.
	SetFailOnUnknown(fail bool)
	FailsOnUnknown() bool

	// Close releases the reader. Close is idempotent; any other call after
	// Close fails.
	Close() error
}

// NewReader returns a Reader lexing JSON text from r. The input is buffered
// in full on first use; read errors from r surface from the first token
// operation.
func NewReader(r io.Reader) Reader {
	return &streamReader{in: r, stack: []int{scopeEmptyDocument}, pathNames: []string{""}, pathIndices: []int{0}}
}

// NewReaderBytes returns a Reader lexing the given JSON text.
func NewReaderBytes(data []byte) Reader {
	return &streamReader{data: data, filled: true, stack: []int{scopeEmptyDocument}, pathNames: []string{""}, pathIndices: []int{0}}
}
