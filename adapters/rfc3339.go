// Package adapters provides ready-made adapters for common Go types that
// the built-in factories do not bind on their own.
package adapters

import (
	"reflect"
	"time"

	moshi "github.com/square/moshi-sub006"
)

// RFC3339 returns an adapter converting between RFC3339 strings and
// time.Time. Fractional seconds are accepted on read; writes are canonical
// UTC with trailing zeros trimmed.
func RFC3339() moshi.Adapter { return rfc3339Adapter{} }

// RFC3339Factory binds time.Time to the RFC3339 adapter.
func RFC3339Factory() moshi.Factory {
	timeType := reflect.TypeOf(time.Time{})
	return func(t moshi.Type, _ *moshi.Registry) (moshi.Adapter, error) {
		if t.Reflect() != timeType || t.IsQualified() {
			return nil, nil
		}
		return rfc3339Adapter{}, nil
	}
}

type rfc3339Adapter struct{}

func (rfc3339Adapter) Read(r moshi.Reader) (any, error) {
	s, err := r.NextString()
	if err != nil {
		return nil, err
	}
	t, perr := time.Parse(time.RFC3339Nano, s)
	if perr != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return nil, &moshi.DataError{Msg: "invalid RFC3339 time " + s, Path: r.Path()}
	}
	return t, nil
}

func (rfc3339Adapter) Write(w moshi.Writer, v any) error {
	t, ok := v.(time.Time)
	if !ok {
		return &moshi.ConfigError{Msg: "RFC3339 adapter cannot encode " + reflect.TypeOf(v).String()}
	}
	return w.WriteString(t.UTC().Format(time.RFC3339Nano))
}
