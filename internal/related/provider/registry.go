package provider

import (
	"errors"
	"sync"
)

// ErrNilProvider is returned when a nil provider is registered.
var ErrNilProvider = errors.New("provider cannot be nil")

// Disposable removes a registration when disposed.
// Dispose is idempotent.
type Disposable interface {
	Dispose()
}

// Registry holds the set of registered providers.
//
// The registry is safe for concurrent use. Lookups take a snapshot of the
// provider set at fan-out time, so registering or disposing a provider while
// a lookup is in flight never affects that lookup's outcome.
type Registry struct {
	mu      sync.RWMutex
	nextID  uint64
	entries []registration
}

type registration struct {
	id       uint64
	provider Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a provider and returns a handle that removes it.
// Providers accumulate; registering the same provider twice yields two
// independent registrations.
func (r *Registry) Register(p Provider) (Disposable, error) {
	if p == nil {
		return nil, ErrNilProvider
	}

	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.entries = append(r.entries, registration{id: id, provider: p})
	r.mu.Unlock()

	return &disposer{registry: r, id: id}, nil
}

// Snapshot returns the current providers in registration order.
// The returned slice is owned by the caller.
func (r *Registry) Snapshot() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.entries) == 0 {
		return nil
	}
	providers := make([]Provider, len(r.entries))
	for i, e := range r.entries {
		providers[i] = e.provider
	}
	return providers
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// remove deletes the registration with the given id.
func (r *Registry) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

type disposer struct {
	registry *Registry
	id       uint64
	once     sync.Once
}

// Dispose removes the registration from the registry.
func (d *disposer) Dispose() {
	d.once.Do(func() {
		d.registry.remove(d.id)
	})
}
