// pkg/engine/registry.go
// Package engine provides the module contract, option handling and the
// registry that modules register into at startup.
package engine

import (
	"sync"
)

// Registry holds module factories keyed by module name. Registration order
// is preserved for listings.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	order     []string
}

// NewRegistry creates an empty module registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register validates the factory's module against the contract and adds it.
// A name collision fails with ErrDuplicateName and leaves the earlier
// registration untouched.
func (r *Registry) Register(factory Factory) error {
	if factory == nil {
		return &ContractError{Reason: "nil factory"}
	}

	probe := factory()
	if err := validateContract(probe); err != nil {
		return err
	}
	name := probe.Metadata().Name

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return &DuplicateNameError{Name: name}
	}
	r.factories[name] = factory
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return factory, nil
}

// Instantiate creates a fresh module instance for name.
func (r *Registry) Instantiate(name string) (Module, error) {
	factory, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return factory(), nil
}

// List returns the metadata of every registered module in registration order.
func (r *Registry) List() []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Metadata, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.factories[name]().Metadata())
	}
	return out
}

// Names returns the registered module names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Global module registry. Built-in modules register themselves here from
// their package init functions.
var defaultRegistry = NewRegistry()

// Default returns the global module registry.
func Default() *Registry {
	return defaultRegistry
}

// RegisterModuleFactory adds a module factory to the global registry.
func RegisterModuleFactory(factory Factory) error {
	return defaultRegistry.Register(factory)
}

// MustRegisterModuleFactory adds a module factory to the global registry and
// panics on failure. Intended for init functions of built-in modules, where
// a contract violation is a programming error.
func MustRegisterModuleFactory(factory Factory) {
	if err := defaultRegistry.Register(factory); err != nil {
		panic(err)
	}
}

// GetModuleInstance creates a new instance of a module from the global
// registry given its registered name.
func GetModuleInstance(name string) (Module, error) {
	return defaultRegistry.Instantiate(name)
}
