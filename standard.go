package moshi

import (
	"encoding/base64"
	"encoding/json"
	"reflect"
	"sort"
	"strconv"
)

// builtinFactories serve the standard shapes: primitives, any, byte slices,
// slices and arrays, string- and integer-keyed maps, pointers, and structs.
// They all decline qualified types; a qualifier means the caller wants a
// custom adapter, and silently falling back would mask its absence.
var builtinFactories = []Factory{
	primitiveFactory,
	anyFactory,
	byteSliceFactory,
	sliceFactory,
	mapFactory,
	pointerFactory,
	structFactory,
}

var jsonNumberType = reflect.TypeOf(json.Number(""))

func primitiveFactory(t Type, _ *Registry) (Adapter, error) {
	if t.IsQualified() {
		return nil, nil
	}
	rt := t.Reflect()
	if rt == jsonNumberType {
		return numberAdapter{}, nil
	}
	switch rt.Kind() {
	case reflect.Bool:
		return boolAdapter{rt: rt}, nil
	case reflect.String:
		return stringAdapter{rt: rt}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return intAdapter{rt: rt}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return uintAdapter{rt: rt}, nil
	case reflect.Float32, reflect.Float64:
		return floatAdapter{rt: rt}, nil
	}
	return nil, nil
}

type boolAdapter struct{ rt reflect.Type }

func (a boolAdapter) Read(r Reader) (any, error) {
	b, err := r.NextBool()
	if err != nil {
		return nil, err
	}
	rv := reflect.New(a.rt).Elem()
	rv.SetBool(b)
	return rv.Interface(), nil
}

func (a boolAdapter) Write(w Writer, v any) error {
	return w.WriteBool(reflect.ValueOf(v).Bool())
}

type stringAdapter struct{ rt reflect.Type }

func (a stringAdapter) Read(r Reader) (any, error) {
	s, err := r.NextString()
	if err != nil {
		return nil, err
	}
	rv := reflect.New(a.rt).Elem()
	rv.SetString(s)
	return rv.Interface(), nil
}

func (a stringAdapter) Write(w Writer, v any) error {
	return w.WriteString(reflect.ValueOf(v).String())
}

type intAdapter struct{ rt reflect.Type }

func (a intAdapter) Read(r Reader) (any, error) {
	n, err := r.NextInt64()
	if err != nil {
		return nil, err
	}
	rv := reflect.New(a.rt).Elem()
	if rv.OverflowInt(n) {
		return nil, dataErrorf(r.Path(), "number %d out of range for %s", n, a.rt)
	}
	rv.SetInt(n)
	return rv.Interface(), nil
}

func (a intAdapter) Write(w Writer, v any) error {
	return w.WriteInt64(reflect.ValueOf(v).Int())
}

type uintAdapter struct{ rt reflect.Type }

func (a uintAdapter) Read(r Reader) (any, error) {
	num, err := r.NextNumber()
	if err != nil {
		return nil, err
	}
	n, perr := strconv.ParseUint(num.String(), 10, 64)
	if perr != nil {
		return nil, dataErrorf(r.Path(), "expected an unsigned integer but was %s", num)
	}
	rv := reflect.New(a.rt).Elem()
	if rv.OverflowUint(n) {
		return nil, dataErrorf(r.Path(), "number %d out of range for %s", n, a.rt)
	}
	rv.SetUint(n)
	return rv.Interface(), nil
}

func (a uintAdapter) Write(w Writer, v any) error {
	n := reflect.ValueOf(v).Uint()
	return w.WriteNumber(json.Number(strconv.FormatUint(n, 10)))
}

type floatAdapter struct{ rt reflect.Type }

func (a floatAdapter) Read(r Reader) (any, error) {
	f, err := r.NextFloat64()
	if err != nil {
		return nil, err
	}
	rv := reflect.New(a.rt).Elem()
	rv.SetFloat(f)
	return rv.Interface(), nil
}

func (a floatAdapter) Write(w Writer, v any) error {
	return w.WriteFloat64(reflect.ValueOf(v).Float())
}

type numberAdapter struct{}

func (numberAdapter) Read(r Reader) (any, error) { return r.NextNumber() }

func (numberAdapter) Write(w Writer, v any) error { return w.WriteNumber(v.(json.Number)) }

func anyFactory(t Type, reg *Registry) (Adapter, error) {
	if t.IsQualified() {
		return nil, nil
	}
	rt := t.Reflect()
	if rt.Kind() != reflect.Interface || rt.NumMethod() != 0 {
		return nil, nil
	}
	return &anyAdapter{reg: reg.rootRegistry()}, nil
}

// anyAdapter decodes to the value tree convention and encodes by resolving
// the runtime type's adapter on each write.
type anyAdapter struct{ reg *Registry }

func (a *anyAdapter) Read(r Reader) (any, error) { return r.ReadValue() }

func (a *anyAdapter) Write(w Writer, v any) error {
	if isNilValue(v) {
		return w.WriteNull()
	}
	delegate, err := a.reg.Adapter(TypeOf(reflect.TypeOf(v)))
	if err != nil {
		return err
	}
	return delegate.Write(w, v)
}

func byteSliceFactory(t Type, _ *Registry) (Adapter, error) {
	if t.IsQualified() {
		return nil, nil
	}
	rt := t.Reflect()
	if rt.Kind() != reflect.Slice || rt.Elem().Kind() != reflect.Uint8 {
		return nil, nil
	}
	return byteSliceAdapter{rt: rt}, nil
}

// byteSliceAdapter encodes byte slices as base64 strings, matching the
// encoding/json convention.
type byteSliceAdapter struct{ rt reflect.Type }

func (a byteSliceAdapter) Read(r Reader) (any, error) {
	s, err := r.NextString()
	if err != nil {
		return nil, err
	}
	data, derr := base64.StdEncoding.DecodeString(s)
	if derr != nil {
		return nil, dataErrorf(r.Path(), "invalid base64: %v", derr)
	}
	rv := reflect.New(a.rt).Elem()
	rv.SetBytes(data)
	return rv.Interface(), nil
}

func (a byteSliceAdapter) Write(w Writer, v any) error {
	return w.WriteString(base64.StdEncoding.EncodeToString(reflect.ValueOf(v).Bytes()))
}

func sliceFactory(t Type, reg *Registry) (Adapter, error) {
	if t.IsQualified() {
		return nil, nil
	}
	rt := t.Reflect()
	if rt.Kind() != reflect.Slice && rt.Kind() != reflect.Array {
		return nil, nil
	}
	elem, err := reg.Adapter(TypeOf(rt.Elem()))
	if err != nil {
		return nil, err
	}
	return &sequenceAdapter{rt: rt, elem: elem}, nil
}

type sequenceAdapter struct {
	rt   reflect.Type
	elem Adapter
}

func (a *sequenceAdapter) Read(r Reader) (any, error) {
	if err := r.BeginArray(); err != nil {
		return nil, err
	}
	isArray := a.rt.Kind() == reflect.Array
	out := reflect.New(a.rt).Elem()
	var buf reflect.Value
	if !isArray {
		buf = reflect.MakeSlice(a.rt, 0, 0)
	}
	n := 0
	for {
		more, err := r.HasNext()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		ev, err := a.elem.Read(r)
		if err != nil {
			return nil, err
		}
		rev := reflect.Zero(a.rt.Elem())
		if ev != nil {
			rev = reflect.ValueOf(ev)
		}
		if isArray {
			if n >= a.rt.Len() {
				return nil, dataErrorf(r.Path(), "too many elements for %s", a.rt)
			}
			out.Index(n).Set(rev)
		} else {
			buf = reflect.Append(buf, rev)
		}
		n++
	}
	if err := r.EndArray(); err != nil {
		return nil, err
	}
	if isArray {
		if n != a.rt.Len() {
			return nil, dataErrorf(r.Path(), "expected %d elements for %s but was %d", a.rt.Len(), a.rt, n)
		}
		return out.Interface(), nil
	}
	return buf.Interface(), nil
}

func (a *sequenceAdapter) Write(w Writer, v any) error {
	if err := w.BeginArray(); err != nil {
		return err
	}
	rv := reflect.ValueOf(v)
	for i := 0; i < rv.Len(); i++ {
		if err := a.writeElem(w, rv.Index(i)); err != nil {
			return err
		}
	}
	return w.EndArray()
}

func (a *sequenceAdapter) writeElem(w Writer, ev reflect.Value) error {
	if isNilable(ev.Kind()) && ev.IsNil() {
		return w.WriteNull()
	}
	return a.elem.Write(w, ev.Interface())
}

func isNilable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return true
	}
	return false
}

func mapFactory(t Type, reg *Registry) (Adapter, error) {
	if t.IsQualified() {
		return nil, nil
	}
	rt := t.Reflect()
	if rt.Kind() != reflect.Map {
		return nil, nil
	}
	switch rt.Key().Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return nil, configErrorf("unsupported map key type %s", rt.Key())
	}
	elem, err := reg.Adapter(TypeOf(rt.Elem()))
	if err != nil {
		return nil, err
	}
	return &mapAdapter{rt: rt, elem: elem}, nil
}

type mapAdapter struct {
	rt   reflect.Type
	elem Adapter
}

func (a *mapAdapter) keyFromName(name string, path string) (reflect.Value, error) {
	kt := a.rt.Key()
	kv := reflect.New(kt).Elem()
	switch kt.Kind() {
	case reflect.String:
		kv.SetString(name)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(name, 10, 64)
		if err != nil || kv.OverflowInt(n) {
			return reflect.Value{}, dataErrorf(path, "invalid %s map key %q", kt, name)
		}
		kv.SetInt(n)
	default:
		n, err := strconv.ParseUint(name, 10, 64)
		if err != nil || kv.OverflowUint(n) {
			return reflect.Value{}, dataErrorf(path, "invalid %s map key %q", kt, name)
		}
		kv.SetUint(n)
	}
	return kv, nil
}

func (a *mapAdapter) nameFromKey(kv reflect.Value) string {
	switch kv.Kind() {
	case reflect.String:
		return kv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(kv.Int(), 10)
	default:
		return strconv.FormatUint(kv.Uint(), 10)
	}
}

func (a *mapAdapter) Read(r Reader) (any, error) {
	if err := r.BeginObject(); err != nil {
		return nil, err
	}
	out := reflect.MakeMap(a.rt)
	for {
		more, err := r.HasNext()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		name, err := r.NextName()
		if err != nil {
			return nil, err
		}
		kv, err := a.keyFromName(name, r.Path())
		if err != nil {
			return nil, err
		}
		if out.MapIndex(kv).IsValid() {
			return nil, dataErrorf(r.Path(), "map key %q has multiple values", name)
		}
		ev, err := a.elem.Read(r)
		if err != nil {
			return nil, err
		}
		rev := reflect.Zero(a.rt.Elem())
		if ev != nil {
			rev = reflect.ValueOf(ev)
		}
		out.SetMapIndex(kv, rev)
	}
	if err := r.EndObject(); err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

func (a *mapAdapter) Write(w Writer, v any) error {
	if err := w.BeginObject(); err != nil {
		return err
	}
	rv := reflect.ValueOf(v)
	keys := rv.MapKeys()
	// Sorted by rendered name so output is deterministic.
	names := make([]string, len(keys))
	byName := make(map[string]reflect.Value, len(keys))
	for i, kv := range keys {
		names[i] = a.nameFromKey(kv)
		byName[names[i]] = kv
	}
	sort.Strings(names)
	for _, name := range names {
		if err := w.Name(name); err != nil {
			return err
		}
		ev := rv.MapIndex(byName[name])
		if isNilable(ev.Kind()) && ev.IsNil() {
			if err := w.WriteNull(); err != nil {
				return err
			}
			continue
		}
		if err := a.elem.Write(w, ev.Interface()); err != nil {
			return err
		}
	}
	return w.EndObject()
}

func pointerFactory(t Type, reg *Registry) (Adapter, error) {
	if t.IsQualified() {
		return nil, nil
	}
	rt := t.Reflect()
	if rt.Kind() != reflect.Pointer {
		return nil, nil
	}
	elem, err := reg.Adapter(TypeOf(rt.Elem()))
	if err != nil {
		return nil, err
	}
	return &pointerAdapter{rt: rt, elem: elem}, nil
}

// pointerAdapter maps JSON null to a nil pointer and back.
type pointerAdapter struct {
	rt   reflect.Type
	elem Adapter
}

func (a *pointerAdapter) Read(r Reader) (any, error) {
	k, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if k == KindNull {
		if err := r.NextNull(); err != nil {
			return nil, err
		}
		return reflect.Zero(a.rt).Interface(), nil
	}
	ev, err := a.elem.Read(r)
	if err != nil {
		return nil, err
	}
	pv := reflect.New(a.rt.Elem())
	if ev != nil {
		pv.Elem().Set(reflect.ValueOf(ev))
	}
	return pv.Interface(), nil
}

func (a *pointerAdapter) Write(w Writer, v any) error {
	rv := reflect.ValueOf(v)
	if rv.IsNil() {
		return w.WriteNull()
	}
	return a.elem.Write(w, rv.Elem().Interface())
}
