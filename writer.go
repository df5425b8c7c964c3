package moshi

import (
	"encoding/json"
	"io"
)

// Writer is a push-based encoder emitting well-formed JSON, mirroring the
// Reader's token set. Two implementations exist: the stream writer emitting
// text (NewWriter) and the value writer building a decoded tree
// (NewValueWriter).
//
// Writers are stateful and not safe for concurrent use. Protocol violations
// (unbalanced begin/end, a value where a name is due) are ConfigErrors.
type Writer interface {
	// BeginArray opens a new array scope.
	BeginArray() error
	// EndArray closes the current array scope.
	EndArray() error
	// BeginObject opens a new object scope.
	BeginObject() error
	// EndObject closes the current object scope.
	EndObject() error

	// Name stages the property name for the next value. When the next value
	// turns out to be an elided null, the name is dropped with it.
	Name(name string) error

	WriteString(v string) error
	WriteBool(v bool) error
	// WriteNull writes a JSON null, or elides the staged name/value pair
	// entirely when SerializeNulls is off inside an object.
	WriteNull() error
	WriteInt64(v int64) error
	// WriteFloat64 fails on NaN and infinities unless the writer is lenient.
	WriteFloat64(v float64) error
	// WriteNumber writes the number's exact text, validating it unless
	// lenient.
	WriteNumber(v json.Number) error
	// WriteValue writes a decoded tree (map[string]any, []any, string,
	// json.Number, bool, nil, and Go numeric primitives).
	WriteValue(v any) error

	// BeginFlatten suppresses the BeginObject/EndObject pair of the next
	// nested object so its members land in the enclosing object. Returns an
	// opaque token for EndFlatten. Used for polymorphic encoding.
	BeginFlatten() (int, error)
	// EndFlatten restores the state captured by BeginFlatten.
	EndFlatten(token int)

	// SetIndent enables pretty printing with the given unit of indentation;
	// the empty string (default) emits fully compact output.
	SetIndent(indent string)
	Indent() string

	// SetSerializeNulls controls whether null property values are emitted.
	// Off by default.
	SetSerializeNulls(on bool)
	SerializeNulls() bool

	// SetLenient permits NaN/infinite numbers and multiple top-level values.
	SetLenient(on bool)
	IsLenient() bool

	// Path renders the current location as $.a[2].b, for diagnostics.
	Path() string

	// Close verifies the document is complete. Idempotent; any other call
	// after Close fails.
	Close() error
}

// NewWriter returns a Writer encoding JSON text to w.
func NewWriter(w io.Writer) Writer {
	return &streamWriter{
		out:         w,
		scopes:      []int{scopeEmptyDocument},
		pathNames:   []string{""},
		pathIndices: []int{0},
		separator:   ":",
		flattenTop:  -1,
	}
}
