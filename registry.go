package moshi

import (
	"reflect"
	"strings"
	"sync"
)

// Factory creates adapters for the types it recognizes. Returning (nil, nil)
// declines the request and passes it to the next factory in the chain. The
// registry argument resolves adapters for component types; during recursive
// resolution it is a scoped view that detects cycles.
type Factory func(t Type, reg *Registry) (Adapter, error)

// Registry resolves and caches adapters by Type. Build one with Builder or
// New. Registries are safe for concurrent use.
type Registry struct {
	factories []Factory

	mu    sync.Mutex
	cache map[cacheKey]Adapter

	// Set only on scoped views handed to factories during resolution.
	root  *Registry
	chain *lookupChain
}

// New returns a registry with only the built-in factories.
func New() *Registry {
	return NewBuilder().Build()
}

// Builder assembles a Registry. User factories run before the built-ins;
// AddLast factories run after them.
type Builder struct {
	factories []Factory
	last      []Factory
}

func NewBuilder() *Builder { return &Builder{} }

// Add appends a factory ahead of the built-ins.
func (b *Builder) Add(f Factory) *Builder {
	if f == nil {
		panic(configErrorf("nil factory"))
	}
	b.factories = append(b.factories, f)
	return b
}

// AddAdapter registers a for exactly t, ahead of the built-ins.
func (b *Builder) AddAdapter(t Type, a Adapter) *Builder {
	if a == nil {
		panic(configErrorf("nil adapter for %s", t))
	}
	key := t.key()
	return b.Add(func(want Type, _ *Registry) (Adapter, error) {
		if want.key() != key {
			return nil, nil
		}
		return a, nil
	})
}

// AddLast appends a factory after the built-ins, as a fallback.
func (b *Builder) AddLast(f Factory) *Builder {
	if f == nil {
		panic(configErrorf("nil factory"))
	}
	b.last = append(b.last, f)
	return b
}

func (b *Builder) Build() *Registry {
	fs := make([]Factory, 0, len(b.factories)+len(builtinFactories)+len(b.last))
	fs = append(fs, b.factories...)
	fs = append(fs, builtinFactories...)
	fs = append(fs, b.last...)
	return &Registry{
		factories: fs,
		cache:     map[cacheKey]Adapter{},
	}
}

func (r *Registry) rootRegistry() *Registry {
	if r.root != nil {
		return r.root
	}
	return r
}

// Adapter resolves the adapter for t, consulting the cache, in-flight
// lookups, then each factory in order.
func (r *Registry) Adapter(t Type) (Adapter, error) {
	if t.Reflect() == nil {
		return nil, configErrorf("invalid type")
	}
	key := t.key()
	root := r.rootRegistry()

	root.mu.Lock()
	cached, ok := root.cache[key]
	root.mu.Unlock()
	if ok {
		return cached, nil
	}

	chain := r.chain
	outermost := chain == nil
	if outermost {
		chain = &lookupChain{}
	}

	// A lookup already in flight for this type gets a deferred adapter
	// that is bound when that lookup completes.
	if a := chain.inFlight(key); a != nil {
		return a, nil
	}

	lk := &lookup{key: key, typ: t}
	chain.stack = append(chain.stack, lk)
	scoped := &Registry{factories: root.factories, root: root, chain: chain}

	var found Adapter
	var err error
	for _, f := range root.factories {
		found, err = f(t, scoped)
		if err != nil || found != nil {
			break
		}
	}
	chain.stack = chain.stack[:len(chain.stack)-1]

	if err == nil && found == nil {
		err = configErrorf("no adapter for %s%s", t, chain.trace())
	}
	if err != nil {
		return nil, err
	}

	if lk.deferred != nil {
		lk.deferred.bind(found)
	}
	chain.resolved = append(chain.resolved, resolvedEntry{key: key, adapter: found})

	if outermost {
		root.mu.Lock()
		for _, e := range chain.resolved {
			root.cache[e.key] = e.adapter
		}
		root.mu.Unlock()
	}
	return found, nil
}

// NextAdapter resolves the adapter t would get if skipPast and every factory
// before it were absent. Delegating factories use it to decorate the adapter
// they would otherwise shadow. skipPast is matched by code pointer, so two
// closures returned by the same constructor are indistinguishable here; a
// chain holding several such factories skips past the first one.
func (r *Registry) NextAdapter(skipPast Factory, t Type) (Adapter, error) {
	root := r.rootRegistry()
	ptr := reflect.ValueOf(skipPast).Pointer()
	start := -1
	for i, f := range root.factories {
		if reflect.ValueOf(f).Pointer() == ptr {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil, configErrorf("unable to skip past unknown factory for %s", t)
	}
	for _, f := range root.factories[start:] {
		a, err := f(t, r)
		if err != nil {
			return nil, err
		}
		if a != nil {
			return a, nil
		}
	}
	return nil, configErrorf("no next adapter for %s", t)
}

type resolvedEntry struct {
	key     cacheKey
	adapter Adapter
}

// lookupChain tracks one recursive resolution. It lives on the scoped
// registry views handed to factories, so a single resolution shares the
// chain across nested Adapter calls without any goroutine-local state.
type lookupChain struct {
	stack    []*lookup
	resolved []resolvedEntry
}

type lookup struct {
	key      cacheKey
	typ      Type
	deferred *deferredAdapter
}

func (c *lookupChain) inFlight(key cacheKey) Adapter {
	for _, lk := range c.stack {
		if lk.key == key {
			if lk.deferred == nil {
				lk.deferred = &deferredAdapter{typ: lk.typ}
			}
			return lk.deferred
		}
	}
	return nil
}

func (c *lookupChain) trace() string {
	if len(c.stack) == 0 {
		return ""
	}
	var b strings.Builder
	for _, lk := range c.stack {
		b.WriteString("\n  for ")
		b.WriteString(lk.typ.String())
	}
	return b.String()
}

// deferredAdapter stands in for an adapter whose resolution is in flight.
// It is bound once the enclosing lookup completes; use before binding means
// a factory leaked it out of its cycle.
type deferredAdapter struct {
	typ      Type
	delegate Adapter
}

func (d *deferredAdapter) bind(a Adapter) { d.delegate = a }

func (d *deferredAdapter) ready() (Adapter, error) {
	if d.delegate == nil {
		return nil, configErrorf("adapter for %s used before recursive resolution completed", d.typ)
	}
	return d.delegate, nil
}

func (d *deferredAdapter) Read(r Reader) (any, error) {
	a, err := d.ready()
	if err != nil {
		return nil, err
	}
	return a.Read(r)
}

func (d *deferredAdapter) Write(w Writer, v any) error {
	a, err := d.ready()
	if err != nil {
		return err
	}
	return a.Write(w, v)
}
