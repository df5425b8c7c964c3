package moshi

import (
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"
)

// streamWriter emits JSON text to an io.Writer. Write errors are sticky: the
// first one is returned from every subsequent call.
type streamWriter struct {
	out io.Writer
	err error

	scopes      []int
	pathNames   []string
	pathIndices []int

	indent    string
	separator string // ":" when compact, ": " when indenting

	lenient        bool
	serializeNulls bool
	closed         bool

	deferredName    string
	hasDeferredName bool

	// flattenTop is the stack size at which begin/end object pairs are
	// suppressed; ~flattenTop while the suppressed scope is open; -1 when
	// inactive.
	flattenTop int
}

var _ Writer = (*streamWriter)(nil)

func (w *streamWriter) SetIndent(indent string) {
	w.indent = indent
	if indent == "" {
		w.separator = ":"
	} else {
		w.separator = ": "
	}
}

func (w *streamWriter) Indent() string { return w.indent }
func (w *streamWriter) SetSerializeNulls(on bool) { w.serializeNulls = on }
func (w *streamWriter) SerializeNulls() bool { return w.serializeNulls }
func (w *streamWriter) SetLenient(on bool) { w.lenient = on }
func (w *streamWriter) IsLenient() bool { return w.lenient }

func (w *streamWriter) Path() string {
	return renderPath(w.scopes, len(w.scopes), w.pathNames, w.pathIndices)
}

func (w *streamWriter) write(s string) error {
	if w.err != nil {
		return w.err
	}
	_, w.err = io.WriteString(w.out, s)
	return w.err
}

func (w *streamWriter) topScope() int { return w.scopes[len(w.scopes)-1] }
func (w *streamWriter) setTopScope(s int) { w.scopes[len(w.scopes)-1] = s }

func (w *streamWriter) push(scope int) error {
	if len(w.scopes) == maxNestingDepth {
		return configErrorf("nesting too deep (%d levels) at path %s", maxNestingDepth, w.Path())
	}
	w.scopes = append(w.scopes, scope)
	w.pathNames = append(w.pathNames, "")
	w.pathIndices = append(w.pathIndices, 0)
	return nil
}

func (w *streamWriter) pop() {
	n := len(w.scopes) - 1
	w.scopes = w.scopes[:n]
	w.pathNames = w.pathNames[:n]
	w.pathIndices = w.pathIndices[:n]
}

func (w *streamWriter) checkOpen() error {
	if w.closed {
		return configErrorf("writer is closed")
	}
	return w.err
}

// ---- structure ----

func (w *streamWriter) BeginArray() error { return w.open(scopeEmptyArray, scopeNonemptyArray, "[") }
func (w *streamWriter) EndArray() error { return w.close(scopeEmptyArray, scopeNonemptyArray, "]") }
func (w *streamWriter) BeginObject() error { return w.open(scopeEmptyObject, scopeNonemptyObject, "{") }
func (w *streamWriter) EndObject() error { return w.close(scopeEmptyObject, scopeNonemptyObject, "}") }

func (w *streamWriter) open(empty, nonempty int, bracket string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if len(w.scopes) == w.flattenTop && (w.topScope() == empty || w.topScope() == nonempty) {
		// Flattening: cancel this open and mark the scope suppressed.
		w.flattenTop = ^w.flattenTop
		return nil
	}
	if err := w.writeDeferredName(); err != nil {
		return err
	}
	if err := w.beforeValue(); err != nil {
		return err
	}
	if err := w.push(empty); err != nil {
		return err
	}
	return w.write(bracket)
}

func (w *streamWriter) close(empty, nonempty int, bracket string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	scope := w.topScope()
	if scope != empty && scope != nonempty {
		return configErrorf("nesting problem: unmatched end at path %s", w.Path())
	}
	if len(w.scopes) == ^w.flattenTop {
		// Closing the flattened scope: restore instead of emitting.
		w.flattenTop = ^w.flattenTop
		return nil
	}
	if w.hasDeferredName {
		return configErrorf("dangling name: %s", w.deferredName)
	}
	w.pop()
	w.pathIndices[len(w.pathIndices)-1]++
	if scope == nonempty {
		if err := w.newline(); err != nil {
			return err
		}
	}
	return w.write(bracket)
}

// ---- names and values ----

func (w *streamWriter) Name(name string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if len(w.scopes) == 1 {
		return configErrorf("nesting problem: name %q outside an object", name)
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

func (w *streamWriter) writeDeferredName() error {
	if !w.hasDeferredName {
		return nil
	}
	if err := w.beforeName(); err != nil {
		return err
	}
	if err := w.writeQuoted(w.deferredName); err != nil {
		return err
	}
	w.deferredName = ""
	w.hasDeferredName = false
	return nil
}

func (w *streamWriter) beforeName() error {
	switch w.topScope() {
	case scopeNonemptyObject:
		if err := w.write(","); err != nil {
			return err
		}
	case scopeEmptyObject:
	default:
		return configErrorf("nesting problem at path %s", w.Path())
	}
	if err := w.newline(); err != nil {
		return err
	}
	w.setTopScope(scopeDanglingName)
	return nil
}

// beforeValue prepares for a value write: separators, newlines, and scope
// promotion. A value directly inside an object without a staged name is a
// protocol violation.
func (w *streamWriter) beforeValue() error {
	switch w.topScope() {
	case scopeNonemptyDocument:
		if !w.lenient {
			return configErrorf("JSON must have only one top-level value")
		}
		w.setTopScope(scopeNonemptyDocument)
	case scopeEmptyDocument:
		w.setTopScope(scopeNonemptyDocument)
	case scopeEmptyArray:
		w.setTopScope(scopeNonemptyArray)
		return w.newline()
	case scopeNonemptyArray:
		if err := w.write(","); err != nil {
			return err
		}
		return w.newline()
	case scopeDanglingName:
		w.setTopScope(scopeNonemptyObject)
		return w.write(w.separator)
	default:
		return configErrorf("nesting problem: value not expected at path %s", w.Path())
	}
	return nil
}

func (w *streamWriter) newline() error {
	if w.indent == "" {
		return nil
	}
	if err := w.write("\n"); err != nil {
		return err
	}
	return w.write(strings.Repeat(w.indent, len(w.scopes)-1))
}

func (w *streamWriter) WriteString(v string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if err := w.writeDeferredName(); err != nil {
		return err
	}
	if err := w.beforeValue(); err != nil {
		return err
	}
	if err := w.writeQuoted(v); err != nil {
		return err
	}
	w.pathIndices[len(w.pathIndices)-1]++
	return nil
}

func (w *streamWriter) WriteBool(v bool) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if err := w.writeDeferredName(); err != nil {
		return err
	}
	if err := w.beforeValue(); err != nil {
		return err
	}
	if err := w.write(strconv.FormatBool(v)); err != nil {
		return err
	}
	w.pathIndices[len(w.pathIndices)-1]++
	return nil
}

func (w *streamWriter) WriteNull() error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if w.hasDeferredName {
		if w.serializeNulls {
			if err := w.writeDeferredName(); err != nil {
				return err
			}
		} else {
			// Elide the whole pair as if the name was never written.
			w.deferredName = ""
			w.hasDeferredName = false
			return nil
		}
	}
	if err := w.beforeValue(); err != nil {
		return err
	}
	if err := w.write("null"); err != nil {
		return err
	}
	w.pathIndices[len(w.pathIndices)-1]++
	return nil
}

func (w *streamWriter) WriteInt64(v int64) error {
	return w.writeNumberText(strconv.FormatInt(v, 10))
}

func (w *streamWriter) WriteFloat64(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		if !w.lenient {
			return configErrorf("numeric values must be finite, but was %v", v)
		}
		return w.writeNumberText(nonFiniteText(v))
	}
	return w.writeNumberText(formatFloat(v))
}

// nonFiniteText renders NaN and infinities the way lenient readers accept
// them back.
func nonFiniteText(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	default:
		return "-Infinity"
	}
}

func (w *streamWriter) WriteNumber(v json.Number) error {
	s := v.String()
	if !w.lenient {
		if _, err := strconv.ParseFloat(s, 64); err != nil || s == "NaN" || s == "Infinity" || s == "-Infinity" {
			return configErrorf("numeric values must be finite, but was %q", s)
		}
	}
	return w.writeNumberText(s)
}

func (w *streamWriter) writeNumberText(s string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if err := w.writeDeferredName(); err != nil {
		return err
	}
	if err := w.beforeValue(); err != nil {
		return err
	}
	if err := w.write(s); err != nil {
		return err
	}
	w.pathIndices[len(w.pathIndices)-1]++
	return nil
}

func (w *streamWriter) WriteValue(v any) error {
	return writeValueTree(w, v, 0)
}

// ---- flatten ----

func (w *streamWriter) BeginFlatten() (int, error) {
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

func (w *streamWriter) EndFlatten(token int) {
	w.flattenTop = token
}

// ---- lifecycle ----

func (w *streamWriter) Close() error {
	if w.closed {
		return nil
	}
	if w.err != nil {
		w.closed = true
		return w.err
	}
	if len(w.scopes) > 1 || w.topScope() != scopeNonemptyDocument {
		return configErrorf("incomplete document")
	}
	w.closed = true
	return nil
}

// ---- text encoding ----

// formatFloat preserves the integer-vs-floating distinction: values that
// strconv would render as plain integers get their text passed through as-is.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

const hexDigits = "0123456789abcdef"

func (w *streamWriter) writeQuoted(s string) error {
	if w.err != nil {
		return w.err
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	last := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		var esc string
		switch {
		case c == '"':
			esc = `\"`
		case c == '\\':
			esc = `\\`
		case c == '\n':
			esc = `\n`
		case c == '\r':
			esc = `\r`
		case c == '\t':
			esc = `\t`
		case c == '\b':
			esc = `\b`
		case c == '\f':
			esc = `\f`
		case c < 0x20:
			esc = `\u00` + string(hexDigits[c>>4]) + string(hexDigits[c&0xf])
		case c == 0xe2 && i+2 < len(s) && s[i+1] == 0x80 && (s[i+2] == 0xa8 || s[i+2] == 0xa9):
			// U+2028 LINE SEPARATOR and U+2029 PARAGRAPH SEPARATOR break
			// JavaScript eval; escape them.
			if s[i+2] == 0xa8 {
				esc = `\u2028`
			} else {
				esc = `\u2029`
			}
			b.WriteString(s[last:i])
			b.WriteString(esc)
			i += 2
			last = i + 1
			continue
		default:
			continue
		}
		b.WriteString(s[last:i])
		b.WriteString(esc)
		last = i + 1
	}
	b.WriteString(s[last:])
	b.WriteByte('"')
	return w.write(b.String())
}
