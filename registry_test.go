package moshi

import (
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryCachesAdapters(t *testing.T) {
	reg := New()
	a1, err := reg.Adapter(TypeFor[string]())
	require.NoError(t, err)
	a2, err := reg.Adapter(TypeFor[string]())
	require.NoError(t, err)
	require.True(t, a1 == a2, "same type should yield the cached adapter")
}

func TestRegistryFactoryOrder(t *testing.T) {
	first := func(t Type, _ *Registry) (Adapter, error) {
		if t.Reflect().Kind() != reflect.String {
			return nil, nil
		}
		return constAdapter{value: "first"}, nil
	}
	second := func(t Type, _ *Registry) (Adapter, error) {
		if t.Reflect().Kind() != reflect.String {
			return nil, nil
		}
		return constAdapter{value: "second"}, nil
	}
	reg := NewBuilder().Add(first).Add(second).Build()
	a, err := reg.Adapter(TypeFor[string]())
	require.NoError(t, err)
	v, err := a.Read(NewReaderBytes([]byte(`"x"`)))
	require.NoError(t, err)
	require.Equal(t, "first", v)
}

func TestRegistryAddLastRunsAfterBuiltins(t *testing.T) {
	last := func(t Type, _ *Registry) (Adapter, error) {
		return constAdapter{value: "last"}, nil
	}
	reg := NewBuilder().AddLast(last).Build()

	// Built-ins still win for shapes they serve.
	a, err := AdapterOf[string](reg)
	require.NoError(t, err)
	v, err := a.FromJSON([]byte(`"x"`))
	require.NoError(t, err)
	require.Equal(t, "x", v)

	// A shape no built-in serves falls through to the last factory.
	type weird func()
	raw, err := reg.Adapter(TypeFor[weird]())
	require.NoError(t, err)
	got, err := raw.Read(NewReaderBytes([]byte(`"ignored"`)))
	require.NoError(t, err)
	require.Equal(t, "last", got)
}

func TestRegistryAddAdapter(t *testing.T) {
	reg := NewBuilder().
		AddAdapter(TypeFor[string](), constAdapter{value: "pinned"}).
		Build()
	a, err := reg.Adapter(TypeFor[string]())
	require.NoError(t, err)
	v, err := a.Read(NewReaderBytes([]byte(`"x"`)))
	require.NoError(t, err)
	require.Equal(t, "pinned", v)

	// Other types are unaffected.
	ia, err := AdapterOf[int](reg)
	require.NoError(t, err)
	n, err := ia.FromJSON([]byte(`7`))
	require.NoError(t, err)
	require.Equal(t, 7, n)
}

func TestRegistryQualifiedLookup(t *testing.T) {
	upper := func(t Type, _ *Registry) (Adapter, error) {
		if t.Reflect().Kind() != reflect.String {
			return nil, nil
		}
		if _, ok := t.Qualifier("uppercase"); !ok {
			return nil, nil
		}
		return upperAdapter{}, nil
	}
	reg := NewBuilder().Add(upper).Build()

	qa, err := AdapterOf[string](reg, Qual("uppercase", ""))
	require.NoError(t, err)
	v, err := qa.FromJSON([]byte(`"hi"`))
	require.NoError(t, err)
	require.Equal(t, "HI", v)

	// The unqualified lookup is a distinct cache entry served built-in.
	pa, err := AdapterOf[string](reg)
	require.NoError(t, err)
	v, err = pa.FromJSON([]byte(`"hi"`))
	require.NoError(t, err)
	require.Equal(t, "hi", v)
}

func TestRegistryBuiltinsDeclineQualified(t *testing.T) {
	reg := New()
	_, err := reg.Adapter(TypeFor[string](Qual("uppercase", "")))
	ce, ok := AsConfigError(err)
	require.True(t, ok, "got %v", err)
	require.Contains(t, ce.Msg, "no adapter")
}

func TestRegistryUnresolvableNamesChain(t *testing.T) {
	type inner func()
	type outer struct {
		F inner `json:"f"`
	}
	reg := New()
	_, err := reg.Adapter(TypeFor[outer]())
	ce, ok := AsConfigError(err)
	require.True(t, ok, "got %v", err)
	require.Contains(t, ce.Msg, "no adapter")
	require.Contains(t, ce.Msg, "outer", "error should name the requesting chain")
}

type node struct {
	Value int   `json:"value"`
	Next  *node `json:"next"`
}

func TestRegistrySelfReferentialType(t *testing.T) {
	reg := New()
	a, err := AdapterOf[node](reg)
	require.NoError(t, err)

	chain := node{Value: 1, Next: &node{Value: 2, Next: &node{Value: 3}}}
	data, err := a.ToJSON(chain)
	require.NoError(t, err)
	require.Equal(t, `{"value":1,"next":{"value":2,"next":{"value":3}}}`, string(data))

	back, err := a.FromJSON(data)
	require.NoError(t, err)
	require.Equal(t, chain, back)
}

func TestRegistryNestedCompositeResolution(t *testing.T) {
	type leaf struct {
		Tags []any `json:"tags"`
	}
	type branch struct {
		Leaves map[string][]leaf `json:"leaves"`
	}
	reg := New()
	_, err := AdapterOf[branch](reg)
	require.NoError(t, err)
}

func TestRegistryConcurrentResolution(t *testing.T) {
	reg := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := reg.Adapter(TypeFor[node]()); err != nil {
					t.Errorf("resolve: %v", err)
					return
				}
				if _, err := reg.Adapter(TypeFor[map[string][]int]()); err != nil {
					t.Errorf("resolve: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestRegistryDeferredAdapterUsedEarly(t *testing.T) {
	// A factory that resolves its own type and uses the result immediately
	// gets the in-flight cell, which must fail cleanly rather than recurse.
	var leaky Factory
	leaky = func(t Type, reg *Registry) (Adapter, error) {
		if t.Reflect().Kind() != reflect.String {
			return nil, nil
		}
		self, err := reg.Adapter(t)
		if err != nil {
			return nil, err
		}
		if _, err := self.Read(NewReaderBytes([]byte(`"x"`))); err != nil {
			return nil, err
		}
		return self, nil
	}
	reg := NewBuilder().Add(leaky).Build()
	_, err := reg.Adapter(TypeFor[string]())
	ce, ok := AsConfigError(err)
	require.True(t, ok, "got %v", err)
	require.Contains(t, ce.Msg, "recursive resolution")
}

func TestRegistryNextAdapter(t *testing.T) {
	var wrapping Factory
	wrapping = func(t Type, reg *Registry) (Adapter, error) {
		if t.Reflect().Kind() != reflect.String {
			return nil, nil
		}
		next, err := reg.NextAdapter(wrapping, t)
		if err != nil {
			return nil, err
		}
		return prefixAdapter{delegate: next, prefix: "wrapped:"}, nil
	}
	reg := NewBuilder().Add(wrapping).Build()
	a, err := AdapterOf[string](reg)
	require.NoError(t, err)
	v, err := a.FromJSON([]byte(`"x"`))
	require.NoError(t, err)
	require.Equal(t, "wrapped:x", v)
}

func TestRegistryNextAdapterUnknownFactory(t *testing.T) {
	reg := New()
	stranger := func(Type, *Registry) (Adapter, error) { return nil, nil }
	_, err := reg.NextAdapter(stranger, TypeFor[string]())
	_, ok := AsConfigError(err)
	require.True(t, ok, "got %v", err)
}

func TestTypeEquality(t *testing.T) {
	a := TypeFor[string](Qual("a", "1"), Qual("b", "2"))
	b := TypeFor[string](Qual("b", "2"), Qual("a", "1"))
	require.True(t, a.Equal(b), "qualifier order should not matter")
	require.False(t, a.Equal(TypeFor[string]()))
	require.False(t, TypeFor[int]().Equal(TypeFor[int64]()))
}

func TestTypeQualifierFirstWins(t *testing.T) {
	ty := TypeFor[string](Qual("a", "1"), Qual("a", "2"))
	v, ok := ty.Qualifier("a")
	require.True(t, ok)
	require.Equal(t, "1", v)
	require.Len(t, ty.Qualifiers(), 1)
}

// ---- test adapters ----

type constAdapter struct{ value string }

func (a constAdapter) Read(r Reader) (any, error) {
	if err := r.SkipValue(); err != nil {
		return nil, err
	}
	return a.value, nil
}

func (a constAdapter) Write(w Writer, v any) error { return w.WriteString(a.value) }

type upperAdapter struct{}

func (upperAdapter) Read(r Reader) (any, error) {
	s, err := r.NextString()
	if err != nil {
		return nil, err
	}
	return strings.ToUpper(s), nil
}

func (upperAdapter) Write(w Writer, v any) error {
	return w.WriteString(strings.ToUpper(v.(string)))
}

type prefixAdapter struct {
	delegate Adapter
	prefix   string
}

func (a prefixAdapter) Read(r Reader) (any, error) {
	v, err := a.delegate.Read(r)
	if err != nil {
		return nil, err
	}
	return a.prefix + v.(string), nil
}

func (a prefixAdapter) Write(w Writer, v any) error {
	return a.delegate.Write(w, strings.TrimPrefix(v.(string), a.prefix))
}
