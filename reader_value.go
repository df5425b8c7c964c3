package moshi

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// valueReader replays an already-decoded value tree (map[string]any, []any,
// string, json.Number, bool, nil) as a token stream. Object keys are visited
// in sorted order so value-mode encoding is deterministic.
type valueReader struct {
	scopes      []int
	frames      []valueFrame
	pathNames   []string
	pathIndices []int

	lenient       bool
	failOnUnknown bool
	closed        bool
}

type valueFrame struct {
	value any            // document scope: the root value
	list  []any          // array scope
	obj   map[string]any // object scope
	keys  []string
	idx   int
	name  string // pending name while in the dangling-name state
}

var _ Reader = (*valueReader)(nil)

// NewValueReader returns a Reader that replays the given decoded value.
func NewValueReader(v any) Reader {
	return &valueReader{
		scopes:      []int{scopeEmptyDocument},
		frames:      []valueFrame{{value: v}},
		pathNames:   []string{""},
		pathIndices: []int{0},
	}
}

func (r *valueReader) Path() string {
	return renderPath(r.scopes, len(r.scopes), r.pathNames, r.pathIndices)
}

func (r *valueReader) SetLenient(lenient bool) { r.lenient = lenient }
func (r *valueReader) IsLenient() bool { return r.lenient }
func (r *valueReader) SetFailOnUnknown(f bool) { r.failOnUnknown = f }
func (r *valueReader) FailsOnUnknown() bool { return r.failOnUnknown }

func (r *valueReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.scopes = append(r.scopes[:0], scopeClosed)
	r.frames = nil
	return nil
}

func (r *valueReader) PeekReader() Reader {
	clone := *r
	clone.scopes = append([]int(nil), r.scopes...)
	clone.frames = append([]valueFrame(nil), r.frames...)
	clone.pathNames = append([]string(nil), r.pathNames...)
	clone.pathIndices = append([]int(nil), r.pathIndices...)
	return &clone
}

func (r *valueReader) top() (*valueFrame, int) {
	n := len(r.scopes) - 1
	return &r.frames[n], r.scopes[n]
}

func (r *valueReader) Peek() (Kind, error) {
	if r.closed {
		return 0, configErrorf("reader is closed")
	}
	f, scope := r.top()
	switch scope {
	case scopeEmptyDocument:
		return r.kindOf(f.value)
	case scopeNonemptyDocument:
		return KindEndOfDocument, nil
	case scopeEmptyArray:
		if f.idx < len(f.list) {
			return r.kindOf(f.list[f.idx])
		}
		return KindEndArray, nil
	case scopeEmptyObject:
		if f.idx < len(f.keys) {
			return KindName, nil
		}
		return KindEndObject, nil
	case scopeDanglingName:
		return r.kindOf(f.obj[f.name])
	case scopeClosed:
		return 0, configErrorf("reader is closed")
	default:
		return 0, configErrorf("unexpected reader state")
	}
}

func (r *valueReader) kindOf(v any) (Kind, error) {
	switch v.(type) {
	case nil:
		return KindNull, nil
	case bool:
		return KindBool, nil
	case string:
		return KindString, nil
	case json.Number, float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return KindNumber, nil
	case []any:
		return KindBeginArray, nil
	case map[string]any:
		return KindBeginObject, nil
	default:
		return 0, dataErrorf(r.Path(), "unsupported value type %T", v)
	}
}

// demand returns the value at the cursor and advances past it.
func (r *valueReader) demand() (any, error) {
	if r.closed {
		return nil, configErrorf("reader is closed")
	}
	n := len(r.scopes) - 1
	f := &r.frames[n]
	switch r.scopes[n] {
	case scopeEmptyDocument:
		r.scopes[n] = scopeNonemptyDocument
		return f.value, nil
	case scopeEmptyArray:
		if f.idx >= len(f.list) {
			return nil, dataErrorf(r.Path(), "expected a value but was %s", KindEndArray)
		}
		v := f.list[f.idx]
		f.idx++
		return v, nil
	case scopeDanglingName:
		r.scopes[n] = scopeEmptyObject
		return f.obj[f.name], nil
	case scopeNonemptyDocument:
		return nil, dataErrorf(r.Path(), "expected a value but was %s", KindEndOfDocument)
	case scopeEmptyObject:
		return nil, dataErrorf(r.Path(), "expected a value but was %s", KindName)
	default:
		return nil, configErrorf("unexpected reader state")
	}
}

func (r *valueReader) push(scope int, f valueFrame) error {
	if len(r.scopes) == maxNestingDepth {
		return dataErrorf(r.Path(), "nesting too deep (%d levels)", maxNestingDepth)
	}
	r.scopes = append(r.scopes, scope)
	r.frames = append(r.frames, f)
	r.pathNames = append(r.pathNames, "")
	r.pathIndices = append(r.pathIndices, 0)
	return nil
}

func (r *valueReader) pop() {
	n := len(r.scopes) - 1
	r.scopes = r.scopes[:n]
	r.frames = r.frames[:n]
	r.pathNames = r.pathNames[:n]
	r.pathIndices = r.pathIndices[:n]
	if n > 0 {
		r.pathIndices[n-1]++
	}
}

func (r *valueReader) HasNext() (bool, error) {
	k, err := r.Peek()
	if err != nil {
		return false, err
	}
	return k != KindEndObject && k != KindEndArray && k != KindEndOfDocument, nil
}

func (r *valueReader) BeginArray() error {
	k, err := r.Peek()
	if err != nil {
		return err
	}
	if k != KindBeginArray {
		return r.typeMismatch(KindBeginArray, k)
	}
	v, err := r.demand()
	if err != nil {
		return err
	}
	return r.push(scopeEmptyArray, valueFrame{list: v.([]any)})
}

func (r *valueReader) EndArray() error {
	k, err := r.Peek()
	if err != nil {
		return err
	}
	if k != KindEndArray {
		return r.typeMismatch(KindEndArray, k)
	}
	r.pop()
	return nil
}

func (r *valueReader) BeginObject() error {
	k, err := r.Peek()
	if err != nil {
		return err
	}
	if k != KindBeginObject {
		return r.typeMismatch(KindBeginObject, k)
	}
	v, err := r.demand()
	if err != nil {
		return err
	}
	obj := v.(map[string]any)
	keys := make([]string, 0, len(obj))
	for name := range obj {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return r.push(scopeEmptyObject, valueFrame{obj: obj, keys: keys})
}

func (r *valueReader) EndObject() error {
	k, err := r.Peek()
	if err != nil {
		return err
	}
	if k != KindEndObject {
		return r.typeMismatch(KindEndObject, k)
	}
	r.pop()
	return nil
}

func (r *valueReader) NextName() (string, error) {
	k, err := r.Peek()
	if err != nil {
		return "", err
	}
	if k != KindName {
		return "", r.typeMismatch(KindName, k)
	}
	n := len(r.scopes) - 1
	f := &r.frames[n]
	name := f.keys[f.idx]
	f.idx++
	f.name = name
	r.scopes[n] = scopeDanglingName
	r.pathNames[n] = name
	return name, nil
}

func (r *valueReader) SelectName(opts *Options) (int, error) {
	k, err := r.Peek()
	if err != nil {
		return -1, err
	}
	if k != KindName {
		return -1, nil
	}
	f, _ := r.top()
	idx := opts.indexOf(f.keys[f.idx])
	if idx == -1 {
		return -1, nil
	}
	if _, err := r.NextName(); err != nil {
		return -1, err
	}
	return idx, nil
}

func (r *valueReader) SkipName() error {
	if r.failOnUnknown {
		return dataErrorf(r.Path(), "cannot skip unexpected %s", KindName)
	}
	_, err := r.NextName()
	return err
}

func (r *valueReader) NextString() (string, error) {
	k, err := r.Peek()
	if err != nil {
		return "", err
	}
	if k != KindString && k != KindNumber {
		return "", r.typeMismatch(KindString, k)
	}
	v, err := r.demand()
	if err != nil {
		return "", err
	}
	r.advanceIndex()
	switch s := v.(type) {
	case string:
		return s, nil
	case json.Number:
		return s.String(), nil
	default:
		return fmt.Sprintf("%v", s), nil
	}
}

func (r *valueReader) SelectString(opts *Options) (int, error) {
	k, err := r.Peek()
	if err != nil {
		return -1, err
	}
	if k != KindString {
		return -1, nil
	}
	f, scope := r.top()
	var peeked any
	switch scope {
	case scopeEmptyDocument:
		peeked = f.value
	case scopeEmptyArray:
		peeked = f.list[f.idx]
	case scopeDanglingName:
		peeked = f.obj[f.name]
	}
	s, ok := peeked.(string)
	if !ok {
		return -1, nil
	}
	idx := opts.indexOf(s)
	if idx == -1 {
		return -1, nil
	}
	if _, err := r.demand(); err != nil {
		return -1, err
	}
	r.advanceIndex()
	return idx, nil
}

func (r *valueReader) NextBool() (bool, error) {
	k, err := r.Peek()
	if err != nil {
		return false, err
	}
	if k != KindBool {
		return false, r.typeMismatch(KindBool, k)
	}
	v, err := r.demand()
	if err != nil {
		return false, err
	}
	r.advanceIndex()
	return v.(bool), nil
}

func (r *valueReader) NextNull() error {
	k, err := r.Peek()
	if err != nil {
		return err
	}
	if k != KindNull {
		return r.typeMismatch(KindNull, k)
	}
	if _, err := r.demand(); err != nil {
		return err
	}
	r.advanceIndex()
	return nil
}

func (r *valueReader) NextFloat64() (float64, error) {
	s, err := r.numericText()
	if err != nil {
		return 0, err
	}
	d, perr := strconv.ParseFloat(s, 64)
	if perr != nil {
		return 0, dataErrorf(r.Path(), "expected a double but was %q", s)
	}
	if !r.lenient && (math.IsNaN(d) || math.IsInf(d, 0)) {
		return 0, syntaxErrorf(r.Path(), -1, "JSON forbids NaN and infinities: %v", d)
	}
	return d, nil
}

func (r *valueReader) NextInt64() (int64, error) {
	s, err := r.numericText()
	if err != nil {
		return 0, err
	}
	if v, perr := strconv.ParseInt(s, 10, 64); perr == nil {
		return v, nil
	}
	d, perr := strconv.ParseFloat(s, 64)
	if perr != nil {
		return 0, dataErrorf(r.Path(), "expected an int but was %q", s)
	}
	v := int64(d)
	if float64(v) != d {
		return 0, dataErrorf(r.Path(), "expected an int but was %v", d)
	}
	return v, nil
}

func (r *valueReader) NextNumber() (json.Number, error) {
	s, err := r.numericText()
	if err != nil {
		return "", err
	}
	if _, perr := strconv.ParseFloat(s, 64); perr != nil {
		return "", dataErrorf(r.Path(), "expected a number but was %q", s)
	}
	return json.Number(s), nil
}

func (r *valueReader) numericText() (string, error) {
	k, err := r.Peek()
	if err != nil {
		return "", err
	}
	if k != KindNumber && k != KindString {
		return "", r.typeMismatch(KindNumber, k)
	}
	v, err := r.demand()
	if err != nil {
		return "", err
	}
	r.advanceIndex()
	switch n := v.(type) {
	case json.Number:
		return n.String(), nil
	case string:
		return n, nil
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(n), 'g', -1, 32), nil
	default:
		return fmt.Sprintf("%d", v), nil
	}
}

func (r *valueReader) SkipValue() error {
	if r.failOnUnknown {
		k, _ := r.Peek()
		return dataErrorf(r.Path(), "cannot skip unexpected %s", k)
	}
	k, err := r.Peek()
	if err != nil {
		return err
	}
	if k == KindName {
		return r.SkipName()
	}
	if _, err := r.demand(); err != nil {
		return err
	}
	r.advanceIndex()
	return nil
}

func (r *valueReader) ReadValue() (any, error) {
	v, err := r.demand()
	if err != nil {
		return nil, err
	}
	r.advanceIndex()
	return v, nil
}

func (r *valueReader) advanceIndex() {
	r.pathIndices[len(r.pathIndices)-1]++
}

func (r *valueReader) typeMismatch(expected, actual Kind) error {
	return dataErrorf(r.Path(), "expected %s but was %s", expected, actual)
}
