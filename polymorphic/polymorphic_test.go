package polymorphic_test

import (
	"reflect"
	"strings"
	"testing"

	moshi "github.com/square/moshi-sub006"
	"github.com/square/moshi-sub006/polymorphic"
)

type event interface{ isEvent() }

type textEvent struct {
	Text string `json:"text"`
}

func (textEvent) isEvent() {}

type imageEvent struct {
	URL   string `json:"url"`
	Width int    `json:"width"`
}

func (imageEvent) isEvent() {}

type unknownEvent struct {
	Label string `json:"label"`
}

func (unknownEvent) isEvent() {}

func eventFactory() moshi.Factory {
	return polymorphic.Of[event]("type").
		WithSubtype(moshi.TypeFor[textEvent](), "text").
		WithSubtype(moshi.TypeFor[imageEvent](), "image").
		Factory()
}

func eventRegistry() *moshi.Registry {
	return moshi.NewBuilder().Add(eventFactory()).Build()
}

func TestEncodeWritesLabelFirst(t *testing.T) {
	a, err := moshi.AdapterOf[event](eventRegistry())
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}
	data, err := a.ToJSON(textEvent{Text: "hi"})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if string(data) != `{"type":"text","text":"hi"}` {
		t.Fatalf("got %s", data)
	}
}

func TestDecodeLabelAnywhere(t *testing.T) {
	a, err := moshi.AdapterOf[event](eventRegistry())
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}
	v, err := a.FromJSON([]byte(`{"url":"/cat.png","width":3,"type":"image"}`))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v != (imageEvent{URL: "/cat.png", Width: 3}) {
		t.Fatalf("got %#v", v)
	}
}

func TestListRoundTrip(t *testing.T) {
	a, err := moshi.AdapterOf[[]event](eventRegistry())
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}
	in := []event{textEvent{Text: "hi"}, imageEvent{URL: "/a", Width: 1}}
	data, err := a.ToJSON(in)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := a.FromJSON(data)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("got %#v", out)
	}
}

func TestUnknownLabelFails(t *testing.T) {
	a, err := moshi.AdapterOf[event](eventRegistry())
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}
	_, err = a.FromJSON([]byte(`{"type":"video"}`))
	de, ok := moshi.AsDataError(err)
	if !ok {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(de.Msg, `"video"`) {
		t.Fatalf("got %q", de.Msg)
	}
}

func TestMissingLabelFails(t *testing.T) {
	a, err := moshi.AdapterOf[event](eventRegistry())
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}
	_, err = a.FromJSON([]byte(`{"text":"hi"}`))
	de, ok := moshi.AsDataError(err)
	if !ok {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(de.Msg, "missing label") {
		t.Fatalf("got %q", de.Msg)
	}
}

func TestUnknownLabelDefault(t *testing.T) {
	f := polymorphic.Of[event]("type").
		WithSubtype(moshi.TypeFor[textEvent](), "text").
		WithDefault(unknownEvent{Label: "?"}).
		Factory()
	a, err := moshi.AdapterOf[event](moshi.NewBuilder().Add(f).Build())
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}
	v, err := a.FromJSON([]byte(`{"type":"video","codec":"av1"}`))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v != (unknownEvent{Label: "?"}) {
		t.Fatalf("got %#v", v)
	}
}

func TestFallbackAdapter(t *testing.T) {
	f := polymorphic.Of[event]("type").
		WithSubtype(moshi.TypeFor[textEvent](), "text").
		WithFallbackAdapter(rawLabelAdapter{}).
		Factory()
	a, err := moshi.AdapterOf[event](moshi.NewBuilder().Add(f).Build())
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}

	v, err := a.FromJSON([]byte(`{"type":"video"}`))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v != (unknownEvent{Label: "video"}) {
		t.Fatalf("got %#v", v)
	}

	// Unregistered runtime types route through the fallback on encode too.
	data, err := a.ToJSON(unknownEvent{Label: "video"})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if string(data) != `"video"` {
		t.Fatalf("got %s", data)
	}
}

func TestUnregisteredSubtypeEncodeFails(t *testing.T) {
	a, err := moshi.AdapterOf[event](eventRegistry())
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}
	err = a.Write(moshi.NewValueWriter(), unknownEvent{})
	if _, ok := moshi.AsConfigError(err); !ok {
		t.Fatalf("got %v", err)
	}
}

func TestDuplicateLabelPanics(t *testing.T) {
	defer func() {
		v := recover()
		if _, ok := v.(*moshi.ConfigError); !ok {
			t.Fatalf("got %v", v)
		}
	}()
	polymorphic.Of[event]("type").
		WithSubtype(moshi.TypeFor[textEvent](), "text").
		WithSubtype(moshi.TypeFor[imageEvent](), "text")
}

func TestEmptyLabelKeyPanics(t *testing.T) {
	defer func() {
		v := recover()
		if _, ok := v.(*moshi.ConfigError); !ok {
			t.Fatalf("got %v", v)
		}
	}()
	polymorphic.Of[event]("")
}

func TestSharedSubtypeFirstLabelWins(t *testing.T) {
	f := polymorphic.Of[event]("type").
		WithSubtype(moshi.TypeFor[textEvent](), "text").
		WithSubtype(moshi.TypeFor[textEvent](), "note").
		Factory()
	a, err := moshi.AdapterOf[event](moshi.NewBuilder().Add(f).Build())
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}

	v, err := a.FromJSON([]byte(`{"type":"note","text":"hi"}`))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v != (textEvent{Text: "hi"}) {
		t.Fatalf("got %#v", v)
	}

	data, err := a.ToJSON(textEvent{Text: "hi"})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if string(data) != `{"type":"text","text":"hi"}` {
		t.Fatalf("got %s", data)
	}
}

// rawLabelAdapter reads only the discriminant out of an unknown value and
// writes bare labels.
type rawLabelAdapter struct{}

func (rawLabelAdapter) Read(r moshi.Reader) (any, error) {
	if err := r.BeginObject(); err != nil {
		return nil, err
	}
	var label string
	for {
		more, err := r.HasNext()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		name, err := r.NextName()
		if err != nil {
			return nil, err
		}
		if name != "type" {
			if err := r.SkipValue(); err != nil {
				return nil, err
			}
			continue
		}
		if label, err = r.NextString(); err != nil {
			return nil, err
		}
	}
	if err := r.EndObject(); err != nil {
		return nil, err
	}
	return unknownEvent{Label: label}, nil
}

func (rawLabelAdapter) Write(w moshi.Writer, v any) error {
	return w.WriteString(v.(unknownEvent).Label)
}
