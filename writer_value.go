package moshi

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// ValueWriter is a Writer that builds a decoded value tree instead of JSON
// text: map[string]any, []any, string, json.Number, bool, nil. Retrieve the
// result with Root after the document completes.
type ValueWriter struct {
	scopes []int
	frames []valueWriterFrame

	pathNames   []string
	pathIndices []int

	lenient        bool
	serializeNulls bool
	closed         bool

	deferredName    string
	hasDeferredName bool

	flattenTop int

	result    any
	hasResult bool
}

type valueWriterFrame struct {
	list []any
	obj  map[string]any
}

var _ Writer = (*ValueWriter)(nil)

// NewValueWriter returns a Writer building a value tree.
func NewValueWriter() *ValueWriter {
	return &ValueWriter{
		scopes:      []int{scopeEmptyDocument},
		frames:      []valueWriterFrame{{}},
		pathNames:   []string{""},
		pathIndices: []int{0},
		flattenTop:  -1,
	}
}

// Root returns the completed value tree.
func (w *ValueWriter) Root() (any, error) {
	if !w.hasResult {
		return nil, configErrorf("incomplete document")
	}
	return w.result, nil
}

func (w *ValueWriter) SetIndent(string) {} // indentation has no tree form

func (w *ValueWriter) Indent() string { return "" }

func (w *ValueWriter) SetSerializeNulls(on bool) { w.serializeNulls = on }

func (w *ValueWriter) SerializeNulls() bool { return w.serializeNulls }

func (w *ValueWriter) SetLenient(on bool) { w.lenient = on }

func (w *ValueWriter) IsLenient() bool { return w.lenient }

func (w *ValueWriter) Path() string {
	return renderPath(w.scopes, len(w.scopes), w.pathNames, w.pathIndices)
}

func (w *ValueWriter) topScope() int { return w.scopes[len(w.scopes)-1] }

func (w *ValueWriter) checkOpen() error {
	if w.closed {
		return configErrorf("writer is closed")
	}
	return nil
}

// add places a completed value into the current container.
func (w *ValueWriter) add(v any) error {
	n := len(w.scopes) - 1
	switch w.scopes[n] {
	case scopeEmptyDocument:
		if w.hasResult && !w.lenient {
			return configErrorf("JSON must have only one top-level value")
		}
		w.result = v
		w.hasResult = true
		w.scopes[n] = scopeNonemptyDocument
	case scopeNonemptyDocument:
		if !w.lenient {
			return configErrorf("JSON must have only one top-level value")
		}
		w.result = v
	case scopeEmptyArray, scopeNonemptyArray:
		w.frames[n].list = append(w.frames[n].list, v)
		w.scopes[n] = scopeNonemptyArray
		w.pathIndices[n]++
	case scopeEmptyObject, scopeNonemptyObject:
		if !w.hasDeferredName {
			return configErrorf("nesting problem: value not expected at path %s", w.Path())
		}
		name := w.deferredName
		w.deferredName = ""
		w.hasDeferredName = false
		if _, dup := w.frames[n].obj[name]; dup {
			return configErrorf("map key %q has multiple values at path %s", name, w.Path())
		}
		w.frames[n].obj[name] = v
		w.scopes[n] = scopeNonemptyObject
	default:
		return configErrorf("nesting problem: value not expected at path %s", w.Path())
	}
	return nil
}

func (w *ValueWriter) push(scope int, f valueWriterFrame) error {
	if len(w.scopes) == maxNestingDepth {
		return configErrorf("nesting too deep (%d levels) at path %s", maxNestingDepth, w.Path())
	}
	w.scopes = append(w.scopes, scope)
	w.frames = append(w.frames, f)
	w.pathNames = append(w.pathNames, "")
	w.pathIndices = append(w.pathIndices, 0)
	return nil
}

func (w *ValueWriter) BeginArray() error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if len(w.scopes) == w.flattenTop {
		scope := w.topScope()
		if scope == scopeEmptyArray || scope == scopeNonemptyArray {
			w.flattenTop = ^w.flattenTop
			return nil
		}
	}
	return w.push(scopeEmptyArray, valueWriterFrame{list: []any{}})
}

func (w *ValueWriter) EndArray() error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if len(w.scopes) == ^w.flattenTop {
		w.flattenTop = ^w.flattenTop
		return nil
	}
	n := len(w.scopes) - 1
	if w.scopes[n] != scopeEmptyArray && w.scopes[n] != scopeNonemptyArray {
		return configErrorf("nesting problem: unmatched end at path %s", w.Path())
	}
	list := w.frames[n].list
	w.popFrame()
	return w.add(list)
}

func (w *ValueWriter) BeginObject() error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if len(w.scopes) == w.flattenTop {
		scope := w.topScope()
		if scope == scopeEmptyObject || scope == scopeNonemptyObject {
			w.flattenTop = ^w.flattenTop
			return nil
		}
	}
	return w.push(scopeEmptyObject, valueWriterFrame{obj: map[string]any{}})
}

func (w *ValueWriter) EndObject() error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if len(w.scopes) == ^w.flattenTop {
		w.flattenTop = ^w.flattenTop
		return nil
	}
	n := len(w.scopes) - 1
	if w.scopes[n] != scopeEmptyObject && w.scopes[n] != scopeNonemptyObject {
		return configErrorf("nesting problem: unmatched end at path %s", w.Path())
	}
	if w.hasDeferredName {
		return configErrorf("dangling name: %s", w.deferredName)
	}
	obj := w.frames[n].obj
	w.popFrame()
	return w.add(obj)
}

func (w *ValueWriter) popFrame() {
	n := len(w.scopes) - 1
	w.scopes = w.scopes[:n]
	w.frames = w.frames[:n]
	w.pathNames = w.pathNames[:n]
	w.pathIndices = w.pathIndices[:n]
}

func (w *ValueWriter) Name(name string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	scope := w.topScope()
	if (scope != scopeEmptyObject && scope != scopeNonemptyObject) || w.hasDeferredName {
		return configErrorf("nesting problem: name %q not expected at path %s", name, w.Path())
	}
	w.deferredName = name
	w.hasDeferredName = true
	w.pathNames[len(w.pathNames)-1] = name
	return nil
}

func (w *ValueWriter) WriteString(v string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	return w.add(v)
}

func (w *ValueWriter) WriteBool(v bool) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	return w.add(v)
}

func (w *ValueWriter) WriteNull() error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if w.hasDeferredName && !w.serializeNulls {
		w.deferredName = ""
		w.hasDeferredName = false
		return nil
	}
	return w.add(nil)
}

func (w *ValueWriter) WriteInt64(v int64) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	return w.add(json.Number(strconv.FormatInt(v, 10)))
}

func (w *ValueWriter) WriteFloat64(v float64) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		if !w.lenient {
			return configErrorf("numeric values must be finite, but was %v", v)
		}
		return w.add(json.Number(nonFiniteText(v)))
	}
	return w.add(json.Number(formatFloat(v)))
}

func (w *ValueWriter) WriteNumber(v json.Number) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	s := v.String()
	if !w.lenient {
		if _, err := strconv.ParseFloat(s, 64); err != nil || s == "NaN" || s == "Infinity" || s == "-Infinity" {
			return configErrorf("numeric values must be finite, but was %q", s)
		}
	}
	return w.add(v)
}

func (w *ValueWriter) WriteValue(v any) error {
	return writeValueTree(w, v, 0)
}

func (w *ValueWriter) BeginFlatten() (int, error) {
	if err := w.checkOpen(); err != nil {
		return 0, err
	}
	scope := w.topScope()
	if scope != scopeNonemptyObject && scope != scopeEmptyObject &&
		scope != scopeNonemptyArray && scope != scopeEmptyArray {
		return 0, configErrorf("flattening requires an open object or array at path %s", w.Path())
	}
	token := w.flattenTop
	w.flattenTop = len(w.scopes)
	return token, nil
}

func (w *ValueWriter) EndFlatten(token int) {
	w.flattenTop = token
}

func (w *ValueWriter) Close() error {
	if w.closed {
		return nil
	}
	if len(w.scopes) > 1 || !w.hasResult {
		return configErrorf("incomplete document")
	}
	w.closed = true
	return nil
}

// writeValueTree writes a decoded value tree to any Writer. Object keys are
// emitted sorted for deterministic output.
func writeValueTree(w Writer, v any, depth int) error {
	if depth > maxNestingDepth {
		return configErrorf("nesting too deep (%d levels) at path %s", maxNestingDepth, w.Path())
	}
	switch x := v.(type) {
	case nil:
		return w.WriteNull()
	case bool:
		return w.WriteBool(x)
	case string:
		return w.WriteString(x)
	case json.Number:
		return w.WriteNumber(x)
	case int:
		return w.WriteInt64(int64(x))
	case int8:
		return w.WriteInt64(int64(x))
	case int16:
		return w.WriteInt64(int64(x))
	case int32:
		return w.WriteInt64(int64(x))
	case int64:
		return w.WriteInt64(x)
	case uint:
		return w.WriteNumber(json.Number(strconv.FormatUint(uint64(x), 10)))
	case uint8:
		return w.WriteInt64(int64(x))
	case uint16:
		return w.WriteInt64(int64(x))
	case uint32:
		return w.WriteInt64(int64(x))
	case uint64:
		return w.WriteNumber(json.Number(strconv.FormatUint(x, 10)))
	case float32:
		return w.WriteFloat64(float64(x))
	case float64:
		return w.WriteFloat64(x)
	case []any:
		if err := w.BeginArray(); err != nil {
			return err
		}
		for _, e := range x {
			if err := writeValueTree(w, e, depth+1); err != nil {
				return err
			}
		}
		return w.EndArray()
	case map[string]any:
		if err := w.BeginObject(); err != nil {
			return err
		}
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := w.Name(k); err != nil {
				return err
			}
			if err := writeValueTree(w, x[k], depth+1); err != nil {
				return err
			}
		}
		return w.EndObject()
	default:
		return configErrorf("unsupported value type %T at path %s", v, w.Path())
	}
}
