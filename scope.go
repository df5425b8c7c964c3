package moshi

import (
	"strconv"
	"strings"
)

// Lexical scopes tracked by the reader and writer stacks. The stack, together
// with the parallel path-name and path-index slices, is what renders the
// diagnostic path lazily.
const (
	scopeEmptyArray = iota + 1
	scopeNonemptyArray
	scopeEmptyObject
	scopeDanglingName
	scopeNonemptyObject
	scopeEmptyDocument
	scopeNonemptyDocument
	scopeClosed
)

// maxNestingDepth bounds reader and writer stacks. Exceeding it is reported
// as an error rather than corrupting state.
const maxNestingDepth = 512

// renderPath renders a JSONPath-style location like $.store.book[2].title
// from the scope stack and the parallel name/index slices.
func renderPath(stack []int, size int, pathNames []string, pathIndices []int) string {
	var b strings.Builder
	b.WriteByte('$')
	for i := 0; i < size; i++ {
		switch stack[i] {
		case scopeEmptyArray, scopeNonemptyArray:
			if i < len(pathIndices) {
				b.WriteByte('[')
				b.WriteString(strconv.Itoa(pathIndices[i]))
				b.WriteByte(']')
			}
		case scopeEmptyObject, scopeDanglingName, scopeNonemptyObject:
			if i < len(pathNames) && pathNames[i] != "" {
				b.WriteByte('.')
				b.WriteString(pathNames[i])
			}
		}
	}
	return b.String()
}
