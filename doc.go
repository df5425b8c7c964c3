// Package moshi converts between a streaming JSON token format and typed Go
// values.
//
// The surface is built from a few pieces:
//
//   - Reader/Writer: a pull tokenizer and a push encoder over JSON text,
//     with strict and lenient modes, JSON-path diagnostics, and a flatten
//     mode used for polymorphic encoding.
//   - Adapter: a bidirectional converter bound to one semantic type,
//     composable via decorators (NullSafe, Lenient, Indent, ...).
//   - Registry: resolves a Type descriptor (reflect.Type plus qualifiers)
//     through an ordered factory chain, memoizes results, and supports
//     self-referential types via deferred binding.
//   - Options: an interned candidate-string set enabling allocation-free
//     name/string matching, the fast path for object binding.
//
// Design policy:
//   - Keep the protocol in the root package; put consumers (polymorphic
//     dispatch, time/enum adapters, json.Marshaler interop) in subpackages.
//   - Errors carry a JSON path and the expected/actual token kinds; nothing
//     is logged.
//
// Typical usage:
//
//	reg := moshi.New()
//	users, err := moshi.AdapterOf[[]User](reg)
//	v, err := users.FromJSON(data)
//	out, err := users.ToJSON(v)
package moshi
