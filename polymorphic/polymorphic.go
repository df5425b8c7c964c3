// Package polymorphic decodes and encodes a family of subtypes through a
// shared interface, picking the subtype by a string discriminant member.
package polymorphic

import (
	"fmt"
	"reflect"

	moshi "github.com/square/moshi-sub006"
)

// Builder configures a dispatcher for interface type T whose JSON carries
// the subtype label under labelKey.
type Builder[T any] struct {
	labelKey string
	labels   []string
	subtypes []moshi.Type

	defaultValue T
	hasDefault   bool

	fallback    moshi.Adapter
	hasFallback bool
}

// Of starts a dispatcher for T with the given discriminant key.
func Of[T any](labelKey string) *Builder[T] {
	if labelKey == "" {
		panic(&moshi.ConfigError{Msg: "empty label key"})
	}
	return &Builder[T]{labelKey: labelKey}
}

// WithSubtype registers label for subtype. Labels must be unique; a subtype
// may carry several labels, and encode uses the first one registered.
func (b *Builder[T]) WithSubtype(subtype moshi.Type, label string) *Builder[T] {
	for _, have := range b.labels {
		if have == label {
			panic(&moshi.ConfigError{Msg: "duplicate label " + label})
		}
	}
	b.labels = append(b.labels, label)
	b.subtypes = append(b.subtypes, subtype)
	return b
}

// WithDefault makes unknown labels decode to v instead of failing. The
// whole value is skipped.
func (b *Builder[T]) WithDefault(v T) *Builder[T] {
	b.defaultValue = v
	b.hasDefault = true
	return b
}

// WithFallbackAdapter routes unknown labels on decode, and unregistered
// runtime types on encode, to a.
func (b *Builder[T]) WithFallbackAdapter(a moshi.Adapter) *Builder[T] {
	b.fallback = a
	b.hasFallback = true
	return b
}

// Factory returns the registry factory for this dispatcher.
func (b *Builder[T]) Factory() moshi.Factory {
	target := reflect.TypeOf((*T)(nil)).Elem()
	return func(t moshi.Type, reg *moshi.Registry) (moshi.Adapter, error) {
		if t.Reflect() != target || t.IsQualified() {
			return nil, nil
		}
		adapters := make([]moshi.Adapter, len(b.subtypes))
		for i, st := range b.subtypes {
			a, err := reg.Adapter(st)
			if err != nil {
				return nil, err
			}
			adapters[i] = a
		}
		d := &dispatcher{
			labelKey:     b.labelKey,
			labelKeyOpts: moshi.NewOptions(b.labelKey),
			labelOpts:    moshi.NewOptions(b.labels...),
			labels:       b.labels,
			subtypes:     b.subtypes,
			adapters:     adapters,
			fallback:     b.fallback,
			hasFallback:  b.hasFallback,
		}
		if b.hasDefault {
			d.fallback = defaultAdapter[T]{value: b.defaultValue}
			d.hasFallback = true
		}
		if b.hasFallback {
			d.fallback = b.fallback
		}
		return d, nil
	}
}

type dispatcher struct {
	labelKey     string
	labelKeyOpts *moshi.Options
	labelOpts    *moshi.Options
	labels       []string
	subtypes     []moshi.Type
	adapters     []moshi.Adapter
	fallback     moshi.Adapter
	hasFallback  bool
}

// labelIndex scans a duplicate of the reader for the discriminant, which
// may sit anywhere in the object, and resolves its value against the
// registered labels. The original reader is not consumed.
func (d *dispatcher) labelIndex(r moshi.Reader) (int, error) {
	peeked := r.PeekReader()
	peeked.SetFailOnUnknown(false)
	if err := peeked.BeginObject(); err != nil {
		return 0, err
	}
	for {
		more, err := peeked.HasNext()
		if err != nil {
			return 0, err
		}
		if !more {
			break
		}
		idx, err := peeked.SelectName(d.labelKeyOpts)
		if err != nil {
			return 0, err
		}
		if idx == -1 {
			if err := peeked.SkipName(); err != nil {
				return 0, err
			}
			if err := peeked.SkipValue(); err != nil {
				return 0, err
			}
			continue
		}
		li, err := peeked.SelectString(d.labelOpts)
		if err != nil {
			return 0, err
		}
		if li == -1 && !d.hasFallback {
			label, serr := peeked.NextString()
			if serr != nil {
				return 0, serr
			}
			return 0, &moshi.DataError{
				Msg:  fmt.Sprintf("expected one of %v for key %q but found %q", d.labels, d.labelKey, label),
				Path: peeked.Path(),
			}
		}
		return li, nil
	}
	return 0, &moshi.DataError{Msg: "missing label for " + d.labelKey, Path: peeked.Path()}
}

func (d *dispatcher) Read(r moshi.Reader) (any, error) {
	idx, err := d.labelIndex(r)
	if err != nil {
		return nil, err
	}
	if idx == -1 {
		return d.fallback.Read(r)
	}
	return d.adapters[idx].Read(r)
}

func (d *dispatcher) Write(w moshi.Writer, v any) error {
	rt := reflect.TypeOf(v)
	idx := -1
	for i, st := range d.subtypes {
		if st.Reflect() == rt {
			idx = i
			break
		}
	}
	if idx == -1 {
		if d.hasFallback {
			return d.fallback.Write(w, v)
		}
		return &moshi.ConfigError{Msg: fmt.Sprintf("expected one of %v but found %s", d.subtypes, rt)}
	}
	if err := w.BeginObject(); err != nil {
		return err
	}
	if err := w.Name(d.labelKey); err != nil {
		return err
	}
	if err := w.WriteString(d.labels[idx]); err != nil {
		return err
	}
	token, err := w.BeginFlatten()
	if err != nil {
		return err
	}
	if err := d.adapters[idx].Write(w, v); err != nil {
		return err
	}
	w.EndFlatten(token)
	return w.EndObject()
}

// defaultAdapter skips the whole value and yields a fixed default.
type defaultAdapter[T any] struct{ value T }

func (a defaultAdapter[T]) Read(r moshi.Reader) (any, error) {
	if err := r.SkipValue(); err != nil {
		return nil, err
	}
	return a.value, nil
}

func (a defaultAdapter[T]) Write(moshi.Writer, any) error {
	return &moshi.ConfigError{Msg: "default adapter cannot encode"}
}
