package quantity

import (
	"sync"

	"github.com/reoring/qskema/units"
)

// Adapter converts quantities from another unit ecosystem. Adapt reports
// ok=false for values it does not recognize; an error means the value was
// recognized but could not be converted.
type Adapter interface {
	Name() string
	Adapt(v any) (q units.Quantity, ok bool, err error)
}

// AdapterFunc turns a function into an Adapter.
func AdapterFunc(name string, fn func(v any) (units.Quantity, bool, error)) Adapter {
	return funcAdapter{name: name, fn: fn}
}

type funcAdapter struct {
	name string
	fn   func(v any) (units.Quantity, bool, error)
}

func (a funcAdapter) Name() string { return a.name }
func (a funcAdapter) Adapt(v any) (units.Quantity, bool, error) { return a.fn(v) }

// Registry is an ordered set of Adapters. The first adapter claiming a value wins.
type Registry struct {
	mu       sync.RWMutex
	adapters []Adapter
}

// NewRegistry returns a registry holding the given adapters in order.
func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: append([]Adapter(nil), adapters...)}
}

var defaultAdapters = NewRegistry()

// DefaultRegistry is the registry used by fields built without one. Interop
// packages add themselves to it from init.
func DefaultRegistry() *Registry { return defaultAdapters }

// Register appends an adapter to the default registry.
func Register(a Adapter) { defaultAdapters.Register(a) }

// Register appends an adapter. Registering a second adapter with the same
// name replaces the first in place.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, cur := range r.adapters {
		if cur.Name() == a.Name() {
			r.adapters[i] = a
			return
		}
	}
	r.adapters = append(r.adapters, a)
}

// Names lists registered adapters in match order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.adapters))
	for i, a := range r.adapters {
		out[i] = a.Name()
	}
	return out
}

// Adapt offers v to each adapter in order.
func (r *Registry) Adapt(v any) (units.Quantity, bool, error) {
	if r == nil {
		return units.Quantity{}, false, nil
	}
	r.mu.RLock()
	adapters := append([]Adapter(nil), r.adapters...)
	r.mu.RUnlock()
	for _, a := range adapters {
		q, ok, err := a.Adapt(v)
		if err != nil {
			return units.Quantity{}, true, err
		}
		if ok {
			return q, true, nil
		}
	}
	return units.Quantity{}, false, nil
}
