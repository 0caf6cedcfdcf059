package providers

import (
	"errors"
	"sync"

	"github.com/praxislegal/legal-ai-gateway/models"
)

var (
	// ErrProviderNotRegistered is returned when a known provider has no adapter
	ErrProviderNotRegistered = errors.New("provider not registered")

	// ErrUnknownProvider is returned for identifiers outside the closed set
	ErrUnknownProvider = errors.New("unknown provider")
)

// Registry holds one adapter per ProviderID together with its enabled
// flag. The provider set is closed, so the registry is populated once
// at startup and the enabled set is the only part that changes at
// runtime (operators can disable a misbehaving backend).
type Registry struct {
	mu       sync.RWMutex
	adapters map[models.ProviderID]Provider
	enabled  map[models.ProviderID]bool
	priority map[models.ProviderID]int
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[models.ProviderID]Provider),
		enabled:  make(map[models.ProviderID]bool),
		priority: make(map[models.ProviderID]int),
	}
}

// Register installs an adapter with its enablement and priority.
// Registering the same ProviderID twice replaces the previous adapter.
func (r *Registry) Register(provider Provider, enabled bool, priority int) error {
	if provider == nil {
		return errors.New("provider cannot be nil")
	}
	id := provider.ID()
	if !id.Valid() {
		return ErrUnknownProvider
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.adapters[id] = provider
	r.enabled[id] = enabled
	r.priority[id] = priority
	return nil
}

// Get retrieves an adapter by ID
func (r *Registry) Get(id models.ProviderID) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !id.Valid() {
		return nil, ErrUnknownProvider
	}
	provider, ok := r.adapters[id]
	if !ok {
		return nil, ErrProviderNotRegistered
	}
	return provider, nil
}

// IsEnabled reports whether the provider may be selected
func (r *Registry) IsEnabled(id models.ProviderID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.enabled[id]
}

// SetEnabled flips a provider's enablement at runtime
func (r *Registry) SetEnabled(id models.ProviderID, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.adapters[id]; !ok {
		return ErrProviderNotRegistered
	}
	r.enabled[id] = enabled
	return nil
}

// EnabledSet returns a snapshot of the enabled flags for every
// registered provider. The snapshot is what the selection policy and
// the fallback executor work from, so one request sees one consistent
// view even if flags change mid-flight.
func (r *Registry) EnabledSet() map[models.ProviderID]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := make(map[models.ProviderID]bool, len(r.enabled))
	for id, on := range r.enabled {
		set[id] = on
	}
	return set
}

// Priorities returns a snapshot of provider priorities
func (r *Registry) Priorities() map[models.ProviderID]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[models.ProviderID]int, len(r.priority))
	for id, p := range r.priority {
		out[id] = p
	}
	return out
}

// List returns registered providers in stable enumeration order
func (r *Registry) List() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, 0, len(r.adapters))
	for _, id := range models.AllProviders() {
		if p, ok := r.adapters[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Count returns the number of registered providers
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.adapters)
}
