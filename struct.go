package moshi

import (
	"reflect"
	"strings"
)

// Property is one bound struct field.
type Property struct {
	Name       string // Go field name
	JSONName   string
	Index      []int // reflect field index path
	Required   bool
	Transient  bool
	Nullable   bool
	Qualifiers []Qualifier
	Adapter    Adapter
}

// ShapeSource discovers the bound properties of a struct type. The default
// implementation is TagShape; a custom source can bind fields by any other
// convention through NewStructFactory.
type ShapeSource interface {
	Properties(t Type, reg *Registry) ([]Property, error)
}

// TagShape discovers properties from struct tags: the `json` tag names the
// member and `json:"-"` skips it, `moshi:"required"` marks it required, and
// other `moshi` tag entries become qualifiers (bare `name` or `name=value`).
// Fields of pointer, interface, map, or slice kind accept JSON null.
// Embedded structs without a json name are flattened.
type TagShape struct{}

func (s TagShape) Properties(t Type, reg *Registry) ([]Property, error) {
	rt := t.Reflect()
	props, err := s.fields(rt, reg, nil)
	if err != nil {
		return nil, err
	}
	if len(props) == 0 {
		return nil, configErrorf("no bindable fields on %s; register an adapter for it", rt)
	}
	byName := map[string]string{}
	for _, p := range props {
		if p.Transient {
			continue
		}
		if prev, dup := byName[p.JSONName]; dup {
			return nil, configErrorf("conflicting fields %s and %s for JSON name %q on %s", prev, p.Name, p.JSONName, rt)
		}
		byName[p.JSONName] = p.Name
	}
	return props, nil
}

func (s TagShape) fields(rt reflect.Type, reg *Registry, prefix []int) ([]Property, error) {
	var props []Property
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		jsonTag := f.Tag.Get("json")
		// An embedded field's name is its type name, so an unexported
		// embedded struct type still promotes its exported fields.
		if f.Anonymous && jsonTag == "" && f.Type.Kind() == reflect.Struct {
			nested, err := s.fields(f.Type, reg, append(append([]int{}, prefix...), i))
			if err != nil {
				return nil, err
			}
			props = append(props, nested...)
			continue
		}
		if !f.IsExported() {
			continue
		}
		p := Property{
			Name:     f.Name,
			JSONName: f.Name,
			Index:    append(append([]int{}, prefix...), i),
			Nullable: isNilable(f.Type.Kind()),
		}
		if jsonTag != "" {
			name, _, _ := strings.Cut(jsonTag, ",")
			switch name {
			case "-":
				p.Transient = true
			case "":
			default:
				p.JSONName = name
			}
		}
		for _, opt := range strings.Split(f.Tag.Get("moshi"), ",") {
			if opt == "" {
				continue
			}
			if opt == "required" {
				p.Required = true
				continue
			}
			qname, qvalue, _ := strings.Cut(opt, "=")
			p.Qualifiers = append(p.Qualifiers, Qualifier{Name: qname, Value: qvalue})
		}
		if p.Transient {
			if p.Required {
				return nil, configErrorf("field %s.%s is both transient and required", rt, f.Name)
			}
			props = append(props, p)
			continue
		}
		a, err := reg.Adapter(TypeOf(f.Type, p.Qualifiers...))
		if err != nil {
			return nil, err
		}
		p.Adapter = a
		props = append(props, p)
	}
	return props, nil
}

// NewStructFactory returns a factory binding struct types through src.
func NewStructFactory(src ShapeSource) Factory {
	return func(t Type, reg *Registry) (Adapter, error) {
		if t.IsQualified() {
			return nil, nil
		}
		rt := t.Reflect()
		if rt.Kind() != reflect.Struct {
			return nil, nil
		}
		props, err := src.Properties(t, reg)
		if err != nil {
			return nil, err
		}
		bound := make([]Property, 0, len(props))
		for _, p := range props {
			if !p.Transient {
				bound = append(bound, p)
			}
		}
		names := make([]string, len(bound))
		for i, p := range bound {
			names[i] = p.JSONName
		}
		return &structAdapter{
			rt:      rt,
			props:   props,
			bound:   bound,
			options: NewOptions(names...),
		}, nil
	}
}

func structFactory(t Type, reg *Registry) (Adapter, error) {
	return NewStructFactory(TagShape{})(t, reg)
}

type structAdapter struct {
	rt      reflect.Type
	props   []Property // declaration order, transient included
	bound   []Property // options order, transient excluded
	options *Options
}

func (a *structAdapter) Read(r Reader) (any, error) {
	if err := r.BeginObject(); err != nil {
		return nil, err
	}
	slots := make([]any, len(a.bound))
	seen := make([]bool, len(a.bound))
	for {
		more, err := r.HasNext()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		idx, err := r.SelectName(a.options)
		if err != nil {
			return nil, err
		}
		if idx == -1 {
			if err := r.SkipName(); err != nil {
				return nil, err
			}
			if err := r.SkipValue(); err != nil {
				return nil, err
			}
			continue
		}
		p := a.bound[idx]
		if seen[idx] {
			return nil, dataErrorf(r.Path(), "multiple values for %q", p.JSONName)
		}
		seen[idx] = true
		k, err := r.Peek()
		if err != nil {
			return nil, err
		}
		if k == KindNull {
			if !p.Nullable {
				return nil, dataErrorf(r.Path(), "non-null value %q was null", p.JSONName)
			}
			if err := r.NextNull(); err != nil {
				return nil, err
			}
			continue // zero value is the typed nil
		}
		v, err := p.Adapter.Read(r)
		if err != nil {
			return nil, err
		}
		slots[idx] = v
	}
	if err := r.EndObject(); err != nil {
		return nil, err
	}
	rv := reflect.New(a.rt).Elem()
	for i, p := range a.bound {
		if !seen[i] {
			if p.Required {
				return nil, dataErrorf(r.Path(), "required value %q missing", p.JSONName)
			}
			continue
		}
		if slots[i] == nil {
			continue
		}
		rv.FieldByIndex(p.Index).Set(reflect.ValueOf(slots[i]))
	}
	return rv.Interface(), nil
}

func (a *structAdapter) Write(w Writer, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return w.WriteNull()
		}
		rv = rv.Elem()
	}
	if err := w.BeginObject(); err != nil {
		return err
	}
	for _, p := range a.props {
		if p.Transient {
			continue
		}
		if err := w.Name(p.JSONName); err != nil {
			return err
		}
		fv := rv.FieldByIndex(p.Index)
		if isNilable(fv.Kind()) && fv.IsNil() {
			if err := w.WriteNull(); err != nil {
				return err
			}
			continue
		}
		if err := p.Adapter.Write(w, fv.Interface()); err != nil {
			return err
		}
	}
	return w.EndObject()
}
