package adapters

import (
	"fmt"
	"reflect"

	moshi "github.com/square/moshi-sub006"
)

// Enum is an adapter for string-kinded enum types with a fixed value set.
// Values are matched without allocation through an interning table.
type Enum[T ~string] struct {
	values      []T
	options     *moshi.Options
	fallback    T
	hasFallback bool
}

// EnumOf returns an adapter accepting exactly the given values.
func EnumOf[T ~string](values ...T) *Enum[T] {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	return &Enum[T]{values: values, options: moshi.NewOptions(names...)}
}

// WithUnknownFallback makes unrecognized strings decode to v instead of
// failing.
func (a *Enum[T]) WithUnknownFallback(v T) *Enum[T] {
	out := *a
	out.fallback = v
	out.hasFallback = true
	return &out
}

// Factory binds T to this adapter.
func (a *Enum[T]) Factory() moshi.Factory {
	target := reflect.TypeOf((*T)(nil)).Elem()
	return func(t moshi.Type, _ *moshi.Registry) (moshi.Adapter, error) {
		if t.Reflect() != target || t.IsQualified() {
			return nil, nil
		}
		return a, nil
	}
}

func (a *Enum[T]) Read(r moshi.Reader) (any, error) {
	idx, err := r.SelectString(a.options)
	if err != nil {
		return nil, err
	}
	if idx != -1 {
		return a.values[idx], nil
	}
	s, err := r.NextString()
	if err != nil {
		return nil, err
	}
	if a.hasFallback {
		return a.fallback, nil
	}
	return nil, &moshi.DataError{
		Msg:  fmt.Sprintf("expected one of %v but was %q", a.values, s),
		Path: r.Path(),
	}
}

func (a *Enum[T]) Write(w moshi.Writer, v any) error {
	s, ok := v.(T)
	if !ok {
		return &moshi.ConfigError{Msg: fmt.Sprintf("enum adapter cannot encode %T", v)}
	}
	if a.options.IndexOf(string(s)) == -1 && !a.hasFallback {
		return &moshi.ConfigError{Msg: fmt.Sprintf("value %q is not one of %v", string(s), a.values)}
	}
	return w.WriteString(string(s))
}
