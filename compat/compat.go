// Package compat bridges types that carry their own encoding/json
// marshaling, so existing MarshalJSON/UnmarshalJSON implementations keep
// working inside adapter-driven documents.
package compat

import (
	"bytes"
	"encoding/json"
	"reflect"

	gojson "github.com/goccy/go-json"

	moshi "github.com/square/moshi-sub006"
)

var (
	marshalerType   = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
)

// Factory serves types that implement json.Marshaler or json.Unmarshaler,
// on the type itself or its pointer. Both directions go through go-json,
// which honors those interfaces; the resulting text is re-tokenized so the
// document's writer settings still apply.
func Factory() moshi.Factory {
	return func(t moshi.Type, _ *moshi.Registry) (moshi.Adapter, error) {
		if t.IsQualified() {
			return nil, nil
		}
		rt := t.Reflect()
		if !implementsJSON(rt) {
			return nil, nil
		}
		return &bridgeAdapter{rt: rt}, nil
	}
}

func implementsJSON(rt reflect.Type) bool {
	if rt.Implements(marshalerType) || rt.Implements(unmarshalerType) {
		return true
	}
	pt := reflect.PointerTo(rt)
	return pt.Implements(marshalerType) || pt.Implements(unmarshalerType)
}

type bridgeAdapter struct{ rt reflect.Type }

func (a *bridgeAdapter) Read(r moshi.Reader) (any, error) {
	var buf bytes.Buffer
	w := moshi.NewWriter(&buf)
	w.SetLenient(true) // the value may appear mid-document
	if err := moshi.Copy(w, r); err != nil {
		return nil, err
	}
	pv := reflect.New(a.rt)
	if err := gojson.Unmarshal(buf.Bytes(), pv.Interface()); err != nil {
		return nil, &moshi.DataError{Msg: err.Error(), Path: r.Path()}
	}
	return pv.Elem().Interface(), nil
}

func (a *bridgeAdapter) Write(w moshi.Writer, v any) error {
	data, err := gojson.Marshal(v)
	if err != nil {
		return &moshi.DataError{Msg: err.Error(), Path: w.Path()}
	}
	src := moshi.NewReaderBytes(data)
	src.SetLenient(true)
	return moshi.Copy(w, src)
}
