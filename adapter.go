package moshi

import (
	"bytes"
	"reflect"
)

// Adapter converts between JSON token streams and Go values of one type.
// Read consumes exactly one value from the reader; Write emits exactly one
// value to the writer. Adapters must be safe for concurrent use.
type Adapter interface {
	Read(r Reader) (any, error)
	Write(w Writer, v any) error
}

// isNilValue reports whether v is nil, including typed nil pointers and
// nil maps/slices boxed in an interface.
func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

type nullSafeAdapter struct{ delegate Adapter }

// NullSafe returns an adapter that reads JSON null as nil and writes nil as
// JSON null, delegating everything else. Wrapping twice is a no-op.
func NullSafe(a Adapter) Adapter {
	if _, ok := a.(*nullSafeAdapter); ok {
		return a
	}
	return &nullSafeAdapter{delegate: a}
}

func (a *nullSafeAdapter) Read(r Reader) (any, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if k == KindNull {
		return nil, r.NextNull()
	}
	return a.delegate.Read(r)
}

func (a *nullSafeAdapter) Write(w Writer, v any) error {
	if isNilValue(v) {
		return w.WriteNull()
	}
	return a.delegate.Write(w, v)
}

type nonNullAdapter struct{ delegate Adapter }

// NonNull returns an adapter that rejects JSON null on read and nil values
// on write with a DataError. Wrapping twice is a no-op.
func NonNull(a Adapter) Adapter {
	if _, ok := a.(*nonNullAdapter); ok {
		return a
	}
	return &nonNullAdapter{delegate: a}
}

func (a *nonNullAdapter) Read(r Reader) (any, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if k == KindNull {
		return nil, dataErrorf(r.Path(), "unexpected null")
	}
	return a.delegate.Read(r)
}

func (a *nonNullAdapter) Write(w Writer, v any) error {
	if isNilValue(v) {
		return dataErrorf(w.Path(), "unexpected null")
	}
	return a.delegate.Write(w, v)
}

type lenientAdapter struct{ delegate Adapter }

// Lenient returns an adapter that reads and writes with leniency enabled,
// restoring the stream's previous setting afterwards.
func Lenient(a Adapter) Adapter {
	if _, ok := a.(*lenientAdapter); ok {
		return a
	}
	return &lenientAdapter{delegate: a}
}

func (a *lenientAdapter) Read(r Reader) (any, error) {
	was := r.IsLenient()
	r.SetLenient(true)
	v, err := a.delegate.Read(r)
	r.SetLenient(was)
	return v, err
}

func (a *lenientAdapter) Write(w Writer, v any) error {
	was := w.IsLenient()
	w.SetLenient(true)
	err := a.delegate.Write(w, v)
	w.SetLenient(was)
	return err
}

type failOnUnknownAdapter struct{ delegate Adapter }

// FailOnUnknown returns an adapter that rejects unknown object keys during
// read instead of skipping them.
func FailOnUnknown(a Adapter) Adapter {
	if _, ok := a.(*failOnUnknownAdapter); ok {
		return a
	}
	return &failOnUnknownAdapter{delegate: a}
}

func (a *failOnUnknownAdapter) Read(r Reader) (any, error) {
	was := r.FailsOnUnknown()
	r.SetFailOnUnknown(true)
	v, err := a.delegate.Read(r)
	r.SetFailOnUnknown(was)
	return v, err
}

func (a *failOnUnknownAdapter) Write(w Writer, v any) error {
	return a.delegate.Write(w, v)
}

type serializeNullsAdapter struct{ delegate Adapter }

// SerializeNulls returns an adapter that emits explicit nulls for absent
// object members instead of omitting them.
func SerializeNulls(a Adapter) Adapter {
	if _, ok := a.(*serializeNullsAdapter); ok {
		return a
	}
	return &serializeNullsAdapter{delegate: a}
}

func (a *serializeNullsAdapter) Read(r Reader) (any, error) {
	return a.delegate.Read(r)
}

func (a *serializeNullsAdapter) Write(w Writer, v any) error {
	was := w.SerializeNulls()
	w.SetSerializeNulls(true)
	err := a.delegate.Write(w, v)
	w.SetSerializeNulls(was)
	return err
}

type indentAdapter struct {
	delegate Adapter
	indent   string
}

// Indent returns an adapter that writes with the given indentation string,
// restoring the writer's previous setting afterwards.
func Indent(a Adapter, indent string) Adapter {
	if ia, ok := a.(*indentAdapter); ok {
		if ia.indent == indent {
			return a
		}
		a = ia.delegate
	}
	return &indentAdapter{delegate: a, indent: indent}
}

func (a *indentAdapter) Read(r Reader) (any, error) {
	return a.delegate.Read(r)
}

func (a *indentAdapter) Write(w Writer, v any) error {
	was := w.Indent()
	w.SetIndent(a.indent)
	err := a.delegate.Write(w, v)
	w.SetIndent(was)
	return err
}

// TypedAdapter is a typed facade over an Adapter for values of type T.
type TypedAdapter[T any] struct {
	adapter Adapter
}

// Typed wraps an untyped adapter whose values are of type T.
func Typed[T any](a Adapter) TypedAdapter[T] {
	return TypedAdapter[T]{adapter: a}
}

// AdapterOf resolves the adapter for T, with optional qualifiers, from the
// registry and returns it as a typed facade.
func AdapterOf[T any](reg *Registry, quals ...Qualifier) (TypedAdapter[T], error) {
	a, err := reg.Adapter(TypeFor[T](quals...))
	if err != nil {
		return TypedAdapter[T]{}, err
	}
	return TypedAdapter[T]{adapter: a}, nil
}

// Adapter returns the underlying untyped adapter.
func (t TypedAdapter[T]) Adapter() Adapter { return t.adapter }

func (t TypedAdapter[T]) convert(v any) (T, error) {
	if v == nil {
		var zero T
		return zero, nil
	}
	out, ok := v.(T)
	if !ok {
		var zero T
		return zero, dataErrorf("", "adapter produced %T, want %s", v, TypeFor[T]())
	}
	return out, nil
}

// Read decodes one value of T from r.
func (t TypedAdapter[T]) Read(r Reader) (T, error) {
	v, err := t.adapter.Read(r)
	if err != nil {
		var zero T
		return zero, err
	}
	return t.convert(v)
}

// Write encodes v to w.
func (t TypedAdapter[T]) Write(w Writer, v T) error {
	return t.adapter.Write(w, v)
}

// FromJSON decodes a complete JSON document.
func (t TypedAdapter[T]) FromJSON(data []byte) (T, error) {
	var zero T
	r := NewReaderBytes(data)
	v, err := t.Read(r)
	if err != nil {
		return zero, err
	}
	k, err := r.Peek()
	if err != nil {
		return zero, err
	}
	if k != KindEndOfDocument {
		return zero, dataErrorf("", "JSON document was not fully consumed")
	}
	return v, nil
}

// ToJSON encodes v as a complete JSON document.
func (t TypedAdapter[T]) ToJSON(v T) ([]byte, error) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := t.adapter.Write(w, v); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromJSONValue decodes from a decoded value tree (map[string]any, []any,
// string, json.Number, bool, nil).
func (t TypedAdapter[T]) FromJSONValue(v any) (T, error) {
	return t.Read(NewValueReader(v))
}

// ToJSONValue encodes v as a decoded value tree.
func (t TypedAdapter[T]) ToJSONValue(v T) (any, error) {
	w := NewValueWriter()
	if err := t.adapter.Write(w, v); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return w.Root()
}

// NullSafe returns a facade over NullSafe(adapter).
func (t TypedAdapter[T]) NullSafe() TypedAdapter[T] {
	return TypedAdapter[T]{adapter: NullSafe(t.adapter)}
}

// NonNull returns a facade over NonNull(adapter).
func (t TypedAdapter[T]) NonNull() TypedAdapter[T] {
	return TypedAdapter[T]{adapter: NonNull(t.adapter)}
}

// Lenient returns a facade over Lenient(adapter).
func (t TypedAdapter[T]) Lenient() TypedAdapter[T] {
	return TypedAdapter[T]{adapter: Lenient(t.adapter)}
}

// FailOnUnknown returns a facade over FailOnUnknown(adapter).
func (t TypedAdapter[T]) FailOnUnknown() TypedAdapter[T] {
	return TypedAdapter[T]{adapter: FailOnUnknown(t.adapter)}
}

// SerializeNulls returns a facade over SerializeNulls(adapter).
func (t TypedAdapter[T]) SerializeNulls() TypedAdapter[T] {
	return TypedAdapter[T]{adapter: SerializeNulls(t.adapter)}
}

// Indent returns a facade over Indent(adapter, indent).
func (t TypedAdapter[T]) Indent(indent string) TypedAdapter[T] {
	return TypedAdapter[T]{adapter: Indent(t.adapter, indent)}
}
