package moshi

import (
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Peeked token states. A peek decides what the next token is without
// committing; the typed accessors consume it.
const (
	peekedNone = iota
	peekedBeginObject
	peekedEndObject
	peekedBeginArray
	peekedEndArray
	peekedTrue
	peekedFalse
	peekedNull
	peekedSingleQuoted
	peekedDoubleQuoted
	peekedUnquoted
	peekedSingleQuotedName
	peekedDoubleQuotedName
	peekedUnquotedName
	peekedLong
	peekedNumber
	peekedEOF
)

// States used while scanning the text of a number literal.
const (
	numberNone = iota
	numberSign
	numberDigit
	numberDecimal
	numberFractionDigit
	numberExpE
	numberExpSign
	numberExpDigit
)

// streamReader lexes JSON text from an in-memory buffer. NewReader drains
// its io.Reader on first use so that PeekReader can clone the position
// cheaply.
type streamReader struct {
	in      io.Reader
	data    []byte
	pos     int
	filled  bool
	readErr error

	lenient       bool
	failOnUnknown bool
	closed        bool

	peeked       int
	peekedLong   int64
	peekedNumLen int

	stack       []int
	pathNames   []string
	pathIndices []int
}

var _ Reader = (*streamReader)(nil)

func (r *streamReader) fill() error {
	if r.filled {
		return r.readErr
	}
	r.filled = true
	if r.in != nil {
		r.data, r.readErr = io.ReadAll(r.in)
	}
	return r.readErr
}

func (r *streamReader) Path() string {
	return renderPath(r.stack, len(r.stack), r.pathNames, r.pathIndices)
}

func (r *streamReader) SetLenient(lenient bool) { r.lenient = lenient }
func (r *streamReader) IsLenient() bool { return r.lenient }
func (r *streamReader) SetFailOnUnknown(f bool) { r.failOnUnknown = f }
func (r *streamReader) FailsOnUnknown() bool { return r.failOnUnknown }

func (r *streamReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.peeked = peekedNone
	r.data = nil
	r.stack = append(r.stack[:0], scopeClosed)
	return nil
}

func (r *streamReader) PeekReader() Reader {
	if err := r.fill(); err != nil {
		// The clone will surface the same read error on first use.
		_ = err
	}
	clone := *r
	clone.stack = append([]int(nil), r.stack...)
	clone.pathNames = append([]string(nil), r.pathNames...)
	clone.pathIndices = append([]int(nil), r.pathIndices...)
	return &clone
}

// ---- scope management ----

func (r *streamReader) push(scope int) error {
	if len(r.stack) == maxNestingDepth {
		return dataErrorf(r.Path(), "nesting too deep (%d levels)", maxNestingDepth)
	}
	r.stack = append(r.stack, scope)
	r.pathNames = append(r.pathNames, "")
	r.pathIndices = append(r.pathIndices, 0)
	return nil
}

func (r *streamReader) pop() {
	n := len(r.stack) - 1
	r.stack = r.stack[:n]
	r.pathNames = r.pathNames[:n]
	r.pathIndices = r.pathIndices[:n]
}

func (r *streamReader) topScope() int { return r.stack[len(r.stack)-1] }

func (r *streamReader) setTopScope(scope int) { r.stack[len(r.stack)-1] = scope }

// ---- low-level scanning ----

func (r *streamReader) syntaxError(format string, args ...any) error {
	return syntaxErrorf(r.Path(), int64(r.pos), format, args...)
}

func (r *streamReader) checkLenient() error {
	if !r.lenient {
		return r.syntaxError("use SetLenient(true) to accept malformed JSON")
	}
	return nil
}

// nextNonWhitespace returns the next significant byte, consuming it. When
// throwOnEOF is false, end of input yields (0, false, nil).
func (r *streamReader) nextNonWhitespace(throwOnEOF bool) (byte, bool, error) {
	for r.pos < len(r.data) {
		c := r.data[r.pos]
		r.pos++
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '/':
			if r.pos == len(r.data) {
				return c, true, nil
			}
			if err := r.checkLenient(); err != nil {
				return 0, false, err
			}
			switch r.data[r.pos] {
			case '*':
				r.pos++
				end := strings.Index(string(r.data[r.pos:]), "*/")
				if end == -1 {
					return 0, false, r.syntaxError("unterminated comment")
				}
				r.pos += end + 2
				continue
			case '/':
				r.pos++
				r.skipToEndOfLine()
				continue
			default:
				return c, true, nil
			}
		case '#':
			// Lenient-only hash comment.
			if err := r.checkLenient(); err != nil {
				return 0, false, err
			}
			r.skipToEndOfLine()
			continue
		default:
			return c, true, nil
		}
	}
	if throwOnEOF {
		return 0, false, eofError(r.Path(), int64(r.pos), "unexpected end of input")
	}
	return 0, false, nil
}

func (r *streamReader) skipToEndOfLine() {
	for r.pos < len(r.data) {
		c := r.data[r.pos]
		r.pos++
		if c == '\n' || c == '\r' {
			return
		}
	}
}

// isLiteral reports whether c can appear inside an unquoted literal. Some
// bytes terminate a literal only in strict mode.
func (r *streamReader) isLiteral(c byte) (bool, error) {
	switch c {
	case '/', '\\', ';', '#', '=':
		if err := r.checkLenient(); err != nil {
			return false, err
		}
		return false, nil
	case '{', '}', '[', ']', ':', ',', ' ', '\t', '\f', '\r', '\n':
		return false, nil
	default:
		return true, nil
	}
}

// ---- peeking ----

func (r *streamReader) Peek() (Kind, error) {
	p, err := r.peek()
	if err != nil {
		return 0, err
	}
	return peekedKind(p), nil
}

func peekedKind(p int) Kind {
	switch p {
	case peekedBeginObject:
		return KindBeginObject
	case peekedEndObject:
		return KindEndObject
	case peekedBeginArray:
		return KindBeginArray
	case peekedEndArray:
		return KindEndArray
	case peekedSingleQuotedName, peekedDoubleQuotedName, peekedUnquotedName:
		return KindName
	case peekedTrue, peekedFalse:
		return KindBool
	case peekedNull:
		return KindNull
	case peekedSingleQuoted, peekedDoubleQuoted, peekedUnquoted:
		return KindString
	case peekedLong, peekedNumber:
		return KindNumber
	case peekedEOF:
		return KindEndOfDocument
	default:
		return KindEndOfDocument
	}
}

func (r *streamReader) peek() (int, error) {
	if r.closed {
		return 0, configErrorf("reader is closed")
	}
	if r.peeked != peekedNone {
		return r.peeked, nil
	}
	if err := r.fill(); err != nil {
		return 0, err
	}
	return r.doPeek()
}

func (r *streamReader) doPeek() (int, error) {
	peekStack := r.topScope()
	switch peekStack {
	case scopeEmptyArray:
		r.setTopScope(scopeNonemptyArray)
	case scopeNonemptyArray:
		c, _, err := r.nextNonWhitespace(true)
		if err != nil {
			return 0, err
		}
		switch c {
		case ']':
			r.peeked = peekedEndArray
			return r.peeked, nil
		case ';':
			if err := r.checkLenient(); err != nil {
				return 0, err
			}
		case ',':
		default:
			return 0, r.syntaxError("unterminated array")
		}
	case scopeEmptyObject, scopeNonemptyObject:
		r.setTopScope(scopeDanglingName)
		if peekStack == scopeNonemptyObject {
			c, _, err := r.nextNonWhitespace(true)
			if err != nil {
				return 0, err
			}
			switch c {
			case '}':
				r.peeked = peekedEndObject
				return r.peeked, nil
			case ';':
				if err := r.checkLenient(); err != nil {
					return 0, err
				}
			case ',':
			default:
				return 0, r.syntaxError("unterminated object")
			}
		}
		c, _, err := r.nextNonWhitespace(true)
		if err != nil {
			return 0, err
		}
		switch c {
		case '"':
			r.peeked = peekedDoubleQuotedName
			return r.peeked, nil
		case '\'':
			if err := r.checkLenient(); err != nil {
				return 0, err
			}
			r.peeked = peekedSingleQuotedName
			return r.peeked, nil
		case '}':
			if peekStack != scopeNonemptyObject {
				r.peeked = peekedEndObject
				return r.peeked, nil
			}
			return 0, r.syntaxError("expected name")
		default:
			if err := r.checkLenient(); err != nil {
				return 0, err
			}
			r.pos--
			lit, err := r.isLiteral(c)
			if err != nil {
				return 0, err
			}
			if !lit {
				return 0, r.syntaxError("expected name")
			}
			r.peeked = peekedUnquotedName
			return r.peeked, nil
		}
	case scopeDanglingName:
		r.setTopScope(scopeNonemptyObject)
		c, _, err := r.nextNonWhitespace(true)
		if err != nil {
			return 0, err
		}
		switch c {
		case ':':
		case '=':
			if err := r.checkLenient(); err != nil {
				return 0, err
			}
			if r.pos < len(r.data) && r.data[r.pos] == '>' {
				r.pos++
			}
		default:
			return 0, r.syntaxError("expected ':'")
		}
	case scopeEmptyDocument:
		r.setTopScope(scopeNonemptyDocument)
	case scopeNonemptyDocument:
		c, ok, err := r.nextNonWhitespace(false)
		if err != nil {
			return 0, err
		}
		if !ok {
			r.peeked = peekedEOF
			return r.peeked, nil
		}
		// A second top-level value is lenient-only.
		if err := r.checkLenient(); err != nil {
			return 0, err
		}
		_ = c
		r.pos--
	case scopeClosed:
		return 0, configErrorf("reader is closed")
	}

	c, _, err := r.nextNonWhitespace(true)
	if err != nil {
		return 0, err
	}
	switch c {
	case ']':
		if peekStack == scopeEmptyArray {
			r.peeked = peekedEndArray
			return r.peeked, nil
		}
		// Dangling separator before ']' is an implicit null, lenient only.
		fallthrough
	case ';', ',':
		if peekStack == scopeEmptyArray || peekStack == scopeNonemptyArray {
			if err := r.checkLenient(); err != nil {
				return 0, err
			}
			r.pos--
			r.peeked = peekedNull
			return r.peeked, nil
		}
		return 0, r.syntaxError("unexpected value")
	case '\'':
		if err := r.checkLenient(); err != nil {
			return 0, err
		}
		r.peeked = peekedSingleQuoted
		return r.peeked, nil
	case '"':
		r.peeked = peekedDoubleQuoted
		return r.peeked, nil
	case '[':
		r.peeked = peekedBeginArray
		return r.peeked, nil
	case '{':
		r.peeked = peekedBeginObject
		return r.peeked, nil
	default:
		r.pos--
	}

	if p := r.peekKeyword(); p != peekedNone {
		r.peeked = p
		return r.peeked, nil
	}
	if p, err := r.peekNumber(); err != nil {
		return 0, err
	} else if p != peekedNone {
		r.peeked = p
		return r.peeked, nil
	}
	lit, err := r.isLiteral(r.data[r.pos])
	if err != nil {
		return 0, err
	}
	if !lit {
		return 0, r.syntaxError("expected value")
	}
	if err := r.checkLenient(); err != nil {
		return 0, err
	}
	r.peeked = peekedUnquoted
	return r.peeked, nil
}

func (r *streamReader) peekKeyword() int {
	if r.pos >= len(r.data) {
		return peekedNone
	}
	var keyword string
	var peeking int
	switch r.data[r.pos] {
	case 't', 'T':
		keyword, peeking = "true", peekedTrue
	case 'f', 'F':
		keyword, peeking = "false", peekedFalse
	case 'n', 'N':
		keyword, peeking = "null", peekedNull
	default:
		return peekedNone
	}
	if r.pos+len(keyword) > len(r.data) {
		return peekedNone
	}
	for i := 1; i < len(keyword); i++ {
		c := r.data[r.pos+i]
		if c != keyword[i] && c != keyword[i]-'a'+'A' {
			return peekedNone
		}
	}
	if r.pos+len(keyword) < len(r.data) {
		if lit, err := r.isLiteral(r.data[r.pos+len(keyword)]); err == nil && lit {
			return peekedNone // something like "nullx"
		}
	}
	r.pos += len(keyword)
	return peeking
}

func (r *streamReader) peekNumber() (int, error) {
	var value int64
	negative := false
	fitsInLong := true
	last := numberNone

	i := 0
scan:
	for ; r.pos+i < len(r.data); i++ {
		c := r.data[r.pos+i]
		switch c {
		case '-':
			if last == numberNone {
				negative = true
				last = numberSign
				continue
			}
			if last == numberExpE {
				last = numberExpSign
				continue
			}
			return peekedNone, nil
		case '+':
			if last == numberExpE {
				last = numberExpSign
				continue
			}
			return peekedNone, nil
		case 'e', 'E':
			if last == numberDigit || last == numberFractionDigit {
				last = numberExpE
				continue
			}
			return peekedNone, nil
		case '.':
			if last == numberDigit {
				last = numberDecimal
				continue
			}
			return peekedNone, nil
		default:
			if c < '0' || c > '9' {
				lit, err := r.isLiteral(c)
				if err != nil {
					return 0, err
				}
				if !lit {
					break scan
				}
				return peekedNone, nil
			}
			switch last {
			case numberSign, numberNone:
				value = -int64(c - '0')
				last = numberDigit
			case numberDigit:
				if value == 0 {
					return peekedNone, nil // leading zeros are lenient-only
				}
				newValue := value*10 - int64(c-'0')
				fitsInLong = fitsInLong && (value > math.MinInt64/10 ||
					(value == math.MinInt64/10 && newValue < value))
				value = newValue
			case numberDecimal:
				last = numberFractionDigit
			case numberExpE, numberExpSign:
				last = numberExpDigit
			}
		}
	}

	switch {
	case last == numberDigit && fitsInLong &&
		(value != math.MinInt64 || negative) && (value != 0 || !negative):
		if negative {
			r.peekedLong = value
		} else {
			r.peekedLong = -value
		}
		r.pos += i
		return peekedLong, nil
	case last == numberDigit || last == numberFractionDigit || last == numberExpDigit:
		r.peekedNumLen = i
		return peekedNumber, nil
	default:
		return peekedNone, nil
	}
}

// ---- string scanning ----

// scanString scans a quoted string starting at r.pos (just past the opening
// quote) without consuming it. raw is the exact byte segment when the string
// has no escapes; decoded carries the unescaped text otherwise. end is the
// position just past the closing quote.
func (r *streamReader) scanString(quote byte) (raw []byte, decoded string, hasEsc bool, end int, err error) {
	var b strings.Builder
	p := r.pos
	start := p
	for p < len(r.data) {
		c := r.data[p]
		switch c {
		case quote:
			if !hasEsc {
				return r.data[start:p], "", false, p + 1, nil
			}
			b.Write(r.data[start:p])
			return nil, b.String(), true, p + 1, nil
		case '\\':
			b.Write(r.data[start:p])
			hasEsc = true
			p++
			var rn rune
			rn, p, err = r.readEscape(p)
			if err != nil {
				return nil, "", true, p, err
			}
			b.WriteRune(rn)
			start = p
		case '\n':
			if !r.lenient {
				return nil, "", hasEsc, p, r.syntaxError("unterminated string")
			}
			p++
		default:
			p++
		}
	}
	return nil, "", hasEsc, p, eofError(r.Path(), int64(p), "unterminated string")
}

// readEscape decodes one escape sequence whose backslash has already been
// consumed; p indexes the escape selector byte.
func (r *streamReader) readEscape(p int) (rune, int, error) {
	if p >= len(r.data) {
		return 0, p, eofError(r.Path(), int64(p), "unterminated escape sequence")
	}
	c := r.data[p]
	p++
	switch c {
	case 'u':
		if p+4 > len(r.data) {
			return 0, p, eofError(r.Path(), int64(p), "unterminated escape sequence")
		}
		v, err := strconv.ParseUint(string(r.data[p:p+4]), 16, 32)
		if err != nil {
			return 0, p, r.syntaxError("malformed unicode escape \\u%s", r.data[p:p+4])
		}
		p += 4
		rn := rune(v)
		if utf16.IsSurrogate(rn) && p+6 <= len(r.data) && r.data[p] == '\\' && r.data[p+1] == 'u' {
			if v2, err := strconv.ParseUint(string(r.data[p+2:p+6]), 16, 32); err == nil {
				if combined := utf16.DecodeRune(rn, rune(v2)); combined != utf8.RuneError {
					return combined, p + 6, nil
				}
			}
		}
		return rn, p, nil
	case 't':
		return '\t', p, nil
	case 'b':
		return '\b', p, nil
	case 'n':
		return '\n', p, nil
	case 'r':
		return '\r', p, nil
	case 'f':
		return '\f', p, nil
	case '\n':
		if err := r.checkLenient(); err != nil {
			return 0, p, err
		}
		return '\n', p, nil
	case '\'', '"', '\\', '/':
		return rune(c), p, nil
	default:
		return 0, p, r.syntaxError("invalid escape sequence \\%c", c)
	}
}

func (r *streamReader) nextQuotedValue(quote byte) (string, error) {
	raw, decoded, hasEsc, end, err := r.scanString(quote)
	if err != nil {
		r.pos = end
		return "", err
	}
	r.pos = end
	if hasEsc {
		return decoded, nil
	}
	return string(raw), nil
}

// scanUnquoted finds the extent of an unquoted literal without consuming it.
func (r *streamReader) scanUnquoted() (end int, err error) {
	p := r.pos
	for p < len(r.data) {
		lit, err := r.isLiteral(r.data[p])
		if err != nil {
			return p, err
		}
		if !lit {
			break
		}
		p++
	}
	return p, nil
}

func (r *streamReader) nextUnquotedValue() (string, error) {
	end, err := r.scanUnquoted()
	if err != nil {
		return "", err
	}
	s := string(r.data[r.pos:end])
	r.pos = end
	return s, nil
}

// ---- names ----

func (r *streamReader) NextName() (string, error) {
	p, err := r.peek()
	if err != nil {
		return "", err
	}
	var name string
	switch p {
	case peekedUnquotedName:
		name, err = r.nextUnquotedValue()
	case peekedDoubleQuotedName:
		name, err = r.nextQuotedValue('"')
	case peekedSingleQuotedName:
		name, err = r.nextQuotedValue('\'')
	default:
		return "", r.typeMismatch(KindName, p)
	}
	if err != nil {
		return "", err
	}
	r.peeked = peekedNone
	r.pathNames[len(r.pathNames)-1] = name
	return name, nil
}

func (r *streamReader) SelectName(opts *Options) (int, error) {
	p, err := r.peek()
	if err != nil {
		return -1, err
	}
	if p < peekedSingleQuotedName || p > peekedUnquotedName {
		return -1, nil
	}
	idx, end, name, err := r.matchOptions(p, opts)
	if err != nil {
		return -1, err
	}
	if idx == -1 {
		return -1, nil
	}
	r.pos = end
	r.peeked = peekedNone
	r.pathNames[len(r.pathNames)-1] = name
	return idx, nil
}

func (r *streamReader) SkipName() error {
	if r.failOnUnknown {
		p, _ := r.Peek()
		return dataErrorf(r.Path(), "cannot skip unexpected %s", p)
	}
	p, err := r.peek()
	if err != nil {
		return err
	}
	switch p {
	case peekedUnquotedName:
		end, err := r.scanUnquoted()
		if err != nil {
			return err
		}
		r.pos = end
	case peekedDoubleQuotedName:
		if _, err := r.nextQuotedValue('"'); err != nil {
			return err
		}
	case peekedSingleQuotedName:
		if _, err := r.nextQuotedValue('\''); err != nil {
			return err
		}
	default:
		return r.typeMismatch(KindName, p)
	}
	r.peeked = peekedNone
	r.pathNames[len(r.pathNames)-1] = "null"
	return nil
}

// matchOptions resolves a peeked name or string token against the candidate
// set without consuming it. On a match it reports the position just past the
// token and the materialized text; on no match nothing is consumed.
func (r *streamReader) matchOptions(p int, opts *Options) (idx, end int, text string, err error) {
	switch p {
	case peekedDoubleQuotedName, peekedDoubleQuoted:
		raw, decoded, hasEsc, e, serr := r.scanString('"')
		if serr != nil {
			return -1, 0, "", serr
		}
		if !hasEsc {
			if i := opts.indexOfBytes(raw); i != -1 {
				return i, e, opts.strings[i], nil
			}
			return -1, 0, "", nil
		}
		if i := opts.indexOf(decoded); i != -1 {
			return i, e, decoded, nil
		}
		return -1, 0, "", nil
	case peekedSingleQuotedName, peekedSingleQuoted:
		raw, decoded, hasEsc, e, serr := r.scanString('\'')
		if serr != nil {
			return -1, 0, "", serr
		}
		s := decoded
		if !hasEsc {
			s = string(raw)
		}
		if i := opts.indexOf(s); i != -1 {
			return i, e, s, nil
		}
		return -1, 0, "", nil
	case peekedUnquotedName, peekedUnquoted:
		e, serr := r.scanUnquoted()
		if serr != nil {
			return -1, 0, "", serr
		}
		if i := opts.indexOfBytes(r.data[r.pos:e]); i != -1 {
			return i, e, opts.strings[i], nil
		}
		return -1, 0, "", nil
	default:
		return -1, 0, "", nil
	}
}

// ---- values ----

func (r *streamReader) HasNext() (bool, error) {
	p, err := r.peek()
	if err != nil {
		return false, err
	}
	return p != peekedEndObject && p != peekedEndArray && p != peekedEOF, nil
}

func (r *streamReader) BeginArray() error {
	p, err := r.peek()
	if err != nil {
		return err
	}
	if p != peekedBeginArray {
		return r.typeMismatch(KindBeginArray, p)
	}
	if err := r.push(scopeEmptyArray); err != nil {
		return err
	}
	r.peeked = peekedNone
	return nil
}

func (r *streamReader) EndArray() error {
	p, err := r.peek()
	if err != nil {
		return err
	}
	if p != peekedEndArray {
		return r.typeMismatch(KindEndArray, p)
	}
	r.pop()
	r.pathIndices[len(r.pathIndices)-1]++
	r.peeked = peekedNone
	return nil
}

func (r *streamReader) BeginObject() error {
	p, err := r.peek()
	if err != nil {
		return err
	}
	if p != peekedBeginObject {
		return r.typeMismatch(KindBeginObject, p)
	}
	if err := r.push(scopeEmptyObject); err != nil {
		return err
	}
	r.peeked = peekedNone
	return nil
}

func (r *streamReader) EndObject() error {
	p, err := r.peek()
	if err != nil {
		return err
	}
	if p != peekedEndObject {
		return r.typeMismatch(KindEndObject, p)
	}
	r.pop()
	r.pathIndices[len(r.pathIndices)-1]++
	r.peeked = peekedNone
	return nil
}

func (r *streamReader) NextString() (string, error) {
	p, err := r.peek()
	if err != nil {
		return "", err
	}
	var s string
	switch p {
	case peekedUnquoted:
		s, err = r.nextUnquotedValue()
	case peekedDoubleQuoted:
		s, err = r.nextQuotedValue('"')
	case peekedSingleQuoted:
		s, err = r.nextQuotedValue('\'')
	case peekedLong:
		s = strconv.FormatInt(r.peekedLong, 10)
	case peekedNumber:
		s = string(r.data[r.pos : r.pos+r.peekedNumLen])
		r.pos += r.peekedNumLen
	default:
		return "", r.typeMismatch(KindString, p)
	}
	if err != nil {
		return "", err
	}
	r.peeked = peekedNone
	r.pathIndices[len(r.pathIndices)-1]++
	return s, nil
}

func (r *streamReader) SelectString(opts *Options) (int, error) {
	p, err := r.peek()
	if err != nil {
		return -1, err
	}
	if p != peekedDoubleQuoted && p != peekedSingleQuoted && p != peekedUnquoted {
		return -1, nil
	}
	idx, end, _, err := r.matchOptions(p, opts)
	if err != nil {
		return -1, err
	}
	if idx == -1 {
		return -1, nil
	}
	r.pos = end
	r.peeked = peekedNone
	r.pathIndices[len(r.pathIndices)-1]++
	return idx, nil
}

func (r *streamReader) NextBool() (bool, error) {
	p, err := r.peek()
	if err != nil {
		return false, err
	}
	switch p {
	case peekedTrue:
		r.peeked = peekedNone
		r.pathIndices[len(r.pathIndices)-1]++
		return true, nil
	case peekedFalse:
		r.peeked = peekedNone
		r.pathIndices[len(r.pathIndices)-1]++
		return false, nil
	default:
		return false, r.typeMismatch(KindBool, p)
	}
}

func (r *streamReader) NextNull() error {
	p, err := r.peek()
	if err != nil {
		return err
	}
	if p != peekedNull {
		return r.typeMismatch(KindNull, p)
	}
	r.peeked = peekedNone
	r.pathIndices[len(r.pathIndices)-1]++
	return nil
}

func (r *streamReader) NextFloat64() (float64, error) {
	p, err := r.peek()
	if err != nil {
		return 0, err
	}
	if p == peekedLong {
		r.peeked = peekedNone
		r.pathIndices[len(r.pathIndices)-1]++
		return float64(r.peekedLong), nil
	}
	s, err := r.numericText(p, KindNumber)
	if err != nil {
		return 0, err
	}
	d, perr := strconv.ParseFloat(s, 64)
	if perr != nil {
		return 0, dataErrorf(r.Path(), "expected a double but was %q", s)
	}
	if !r.lenient && (math.IsNaN(d) || math.IsInf(d, 0)) {
		return 0, r.syntaxError("JSON forbids NaN and infinities: %v", d)
	}
	r.peeked = peekedNone
	r.pathIndices[len(r.pathIndices)-1]++
	return d, nil
}

func (r *streamReader) NextInt64() (int64, error) {
	p, err := r.peek()
	if err != nil {
		return 0, err
	}
	if p == peekedLong {
		r.peeked = peekedNone
		r.pathIndices[len(r.pathIndices)-1]++
		return r.peekedLong, nil
	}
	s, err := r.numericText(p, KindNumber)
	if err != nil {
		return 0, err
	}
	if v, perr := strconv.ParseInt(s, 10, 64); perr == nil {
		r.peeked = peekedNone
		r.pathIndices[len(r.pathIndices)-1]++
		return v, nil
	}
	// Not a decimal long; accept doubles with no fractional component.
	d, perr := strconv.ParseFloat(s, 64)
	if perr != nil {
		return 0, dataErrorf(r.Path(), "expected an int but was %q", s)
	}
	v := int64(d)
	if float64(v) != d {
		return 0, dataErrorf(r.Path(), "expected an int but was %v", d)
	}
	r.peeked = peekedNone
	r.pathIndices[len(r.pathIndices)-1]++
	return v, nil
}

func (r *streamReader) NextNumber() (json.Number, error) {
	p, err := r.peek()
	if err != nil {
		return "", err
	}
	if p == peekedLong {
		r.peeked = peekedNone
		r.pathIndices[len(r.pathIndices)-1]++
		return json.Number(strconv.FormatInt(r.peekedLong, 10)), nil
	}
	s, err := r.numericText(p, KindNumber)
	if err != nil {
		return "", err
	}
	if _, perr := strconv.ParseFloat(s, 64); perr != nil {
		return "", dataErrorf(r.Path(), "expected a number but was %q", s)
	}
	r.peeked = peekedNone
	r.pathIndices[len(r.pathIndices)-1]++
	return json.Number(s), nil
}

// numericText materializes the text of a number-bearing token without
// clearing the peeked state; callers clear it after a successful parse.
func (r *streamReader) numericText(p int, expected Kind) (string, error) {
	switch p {
	case peekedNumber:
		s := string(r.data[r.pos : r.pos+r.peekedNumLen])
		r.pos += r.peekedNumLen
		return s, nil
	case peekedDoubleQuoted:
		return r.nextQuotedValue('"')
	case peekedSingleQuoted:
		return r.nextQuotedValue('\'')
	case peekedUnquoted:
		return r.nextUnquotedValue()
	default:
		return "", r.typeMismatch(expected, p)
	}
}

func (r *streamReader) SkipValue() error {
	if r.failOnUnknown {
		p, _ := r.Peek()
		return dataErrorf(r.Path(), "cannot skip unexpected %s", p)
	}
	count := 0
	for {
		p, err := r.peek()
		if err != nil {
			return err
		}
		switch p {
		case peekedBeginArray:
			if err := r.push(scopeEmptyArray); err != nil {
				return err
			}
			count++
		case peekedBeginObject:
			if err := r.push(scopeEmptyObject); err != nil {
				return err
			}
			count++
		case peekedEndArray, peekedEndObject:
			count--
			if count < 0 {
				return dataErrorf(r.Path(), "expected a value but was %s", peekedKind(p))
			}
			r.pop()
		case peekedUnquoted, peekedUnquotedName:
			end, err := r.scanUnquoted()
			if err != nil {
				return err
			}
			r.pos = end
		case peekedDoubleQuoted, peekedDoubleQuotedName:
			if _, err := r.nextQuotedValue('"'); err != nil {
				return err
			}
		case peekedSingleQuoted, peekedSingleQuotedName:
			if _, err := r.nextQuotedValue('\''); err != nil {
				return err
			}
		case peekedNumber:
			r.pos += r.peekedNumLen
		case peekedEOF:
			return dataErrorf(r.Path(), "expected a value but was %s", KindEndOfDocument)
		}
		r.peeked = peekedNone
		if count == 0 {
			break
		}
	}
	r.pathIndices[len(r.pathIndices)-1]++
	r.pathNames[len(r.pathNames)-1] = "null"
	return nil
}

func (r *streamReader) ReadValue() (any, error) {
	return readValueTree(r, 0)
}

func (r *streamReader) typeMismatch(expected Kind, peeked int) error {
	return dataErrorf(r.Path(), "expected %s but was %s", expected, peekedKind(peeked))
}
