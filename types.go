package moshi

import (
	"reflect"
	"sort"
	"strings"
)

// Qualifier is an extra tag on a Type that narrows adapter selection, so
// that e.g. two string fields can use different adapters. Name identifies
// the qualifier; Value carries an optional argument.
type Qualifier struct {
	Name  string
	Value string
}

func (q Qualifier) String() string {
	if q.Value == "" {
		return q.Name
	}
	return q.Name + "=" + q.Value
}

// Qual builds a Qualifier.
func Qual(name, value string) Qualifier { return Qualifier{Name: name, Value: value} }

// Type identifies a Go type, plus any qualifiers, for adapter lookup.
// Construct with TypeFor or TypeOf. The zero Type is invalid.
type Type struct {
	rt    reflect.Type
	quals []Qualifier // sorted by Name, at most one per Name
}

// TypeFor returns the Type for T with the given qualifiers.
func TypeFor[T any](quals ...Qualifier) Type {
	return TypeOf(reflect.TypeOf((*T)(nil)).Elem(), quals...)
}

// TypeOf returns the Type for rt with the given qualifiers. Qualifiers are
// de-duplicated by Name; the first occurrence wins.
func TypeOf(rt reflect.Type, quals ...Qualifier) Type {
	if rt == nil {
		panic(configErrorf("nil reflect.Type"))
	}
	if len(quals) == 0 {
		return Type{rt: rt}
	}
	qs := make([]Qualifier, 0, len(quals))
	for _, q := range quals {
		if q.Name == "" {
			panic(configErrorf("qualifier with empty name on %s", rt))
		}
		dup := false
		for _, have := range qs {
			if have.Name == q.Name {
				dup = true
				break
			}
		}
		if !dup {
			qs = append(qs, q)
		}
	}
	sort.Slice(qs, func(i, j int) bool { return qs[i].Name < qs[j].Name })
	return Type{rt: rt, quals: qs}
}

// Reflect returns the underlying reflect.Type.
func (t Type) Reflect() reflect.Type { return t.rt }

// Qualifiers returns a copy of the qualifier set, sorted by Name.
func (t Type) Qualifiers() []Qualifier {
	if len(t.quals) == 0 {
		return nil
	}
	out := make([]Qualifier, len(t.quals))
	copy(out, t.quals)
	return out
}

// IsQualified reports whether any qualifiers are attached.
func (t Type) IsQualified() bool { return len(t.quals) > 0 }

// Qualifier returns the value for name and whether it is present.
func (t Type) Qualifier(name string) (string, bool) {
	for _, q := range t.quals {
		if q.Name == name {
			return q.Value, true
		}
	}
	return "", false
}

// Unqualified returns the same Type with all qualifiers stripped.
func (t Type) Unqualified() Type { return Type{rt: t.rt} }

func (t Type) String() string {
	if t.rt == nil {
		return "<invalid type>"
	}
	if len(t.quals) == 0 {
		return t.rt.String()
	}
	var b strings.Builder
	b.WriteString(t.rt.String())
	b.WriteByte('(')
	for i, q := range t.quals {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(q.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Equal reports whether two Types name the same Go type and qualifiers.
func (t Type) Equal(u Type) bool { return t.key() == u.key() }

type cacheKey struct {
	rt    reflect.Type
	quals string
}

func (t Type) key() cacheKey {
	if len(t.quals) == 0 {
		return cacheKey{rt: t.rt}
	}
	var b strings.Builder
	for i, q := range t.quals {
		if i > 0 {
			b.WriteByte('\x00')
		}
		b.WriteString(q.Name)
		b.WriteByte('=')
		b.WriteString(q.Value)
	}
	return cacheKey{rt: t.rt, quals: b.String()}
}
