package moshi

// Options is an interned set of candidate strings matched against incoming
// name or string tokens by Reader.SelectName and Reader.SelectString. The
// candidate order is stable: it is the index space that struct binders and
// generated code reference.
//
// When the upcoming token contains no escape sequences, matching compares
// raw bytes and allocates nothing.
type Options struct {
	strings []string
	raw     [][]byte
}

// NewOptions interns the given candidates. Candidates must be unique;
// a duplicate is a programming error and panics with a ConfigError.
func NewOptions(candidates ...string) *Options {
	seen := make(map[string]struct{}, len(candidates))
	o := &Options{
		strings: make([]string, len(candidates)),
		raw:     make([][]byte, len(candidates)),
	}
	for i, s := range candidates {
		if _, dup := seen[s]; dup {
			panic(configErrorf("duplicate option %q at index %d", s, i))
		}
		seen[s] = struct{}{}
		o.strings[i] = s
		o.raw[i] = []byte(s)
	}
	return o
}

// Len reports the number of candidates.
func (o *Options) Len() int { return len(o.strings) }

// IndexOf returns the index of s, or -1 when s is not a candidate.
func (o *Options) IndexOf(s string) int { return o.indexOf(s) }

// Strings returns the interned candidates in index order. The returned slice
// must not be mutated.
func (o *Options) Strings() []string { return o.strings }

// indexOfBytes matches a raw, escape-free byte segment against the
// candidates. Returns -1 when no candidate matches.
func (o *Options) indexOfBytes(b []byte) int {
	for i, c := range o.raw {
		if len(c) == len(b) && string(c) == string(b) {
			return i
		}
	}
	return -1
}

// indexOf matches a materialized string against the candidates.
func (o *Options) indexOf(s string) int {
	for i, c := range o.strings {
		if c == s {
			return i
		}
	}
	return -1
}
