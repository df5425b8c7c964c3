package moshi

import (
	"errors"
	"fmt"
	"io"
)

// SyntaxError reports malformed JSON input. Offset is the byte position in
// the source when known (-1 otherwise). A premature end of input wraps
// io.ErrUnexpectedEOF so callers can distinguish truncation from malformed
// bytes.
type SyntaxError struct {
	Msg    string
	Path   string
	Offset int64
	cause  error
}

func (e *SyntaxError) Error() string {
	return "moshi: " + e.Msg + " at path " + e.Path
}

func (e *SyntaxError) Unwrap() error { return e.cause }

// DataError reports well-formed JSON that does not match the target type:
// unknown polymorphic label, required property missing, null for a non-null
// property, duplicate key for a bound property, and so on.
type DataError struct {
	Msg  string
	Path string
}

func (e *DataError) Error() string {
	if e.Path == "" {
		return "moshi: " + e.Msg
	}
	return "moshi: " + e.Msg + " at path " + e.Path
}

// ConfigError reports programmer misuse: an unresolvable type, an
// unregistered polymorphic subtype at encode time, duplicate registrations,
// or writer protocol violations. It is raised eagerly at construction or
// registration time where possible.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "moshi: " + e.Msg }

// AsSyntaxError extracts a SyntaxError using errors.As.
func AsSyntaxError(err error) (*SyntaxError, bool) {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// AsDataError extracts a DataError using errors.As.
func AsDataError(err error) (*DataError, bool) {
	var de *DataError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// AsConfigError extracts a ConfigError using errors.As.
func AsConfigError(err error) (*ConfigError, bool) {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

func syntaxErrorf(path string, offset int64, format string, args ...any) error {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Path: path, Offset: offset}
}

func eofError(path string, offset int64, format string, args ...any) error {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Path: path, Offset: offset, cause: io.ErrUnexpectedEOF}
}

func dataErrorf(path string, format string, args ...any) error {
	return &DataError{Msg: fmt.Sprintf(format, args...), Path: path}
}

func configErrorf(format string, args ...any) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}
