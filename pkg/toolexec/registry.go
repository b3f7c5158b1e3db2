// pkg/toolexec/registry.go
package toolexec

import (
	"fmt"
	"sync"
)

// Registry holds the known tool integrations by name, in registration order.
type Registry struct {
	mu           sync.RWMutex
	integrations map[string]*Integration
	order        []string
}

func NewRegistry() *Registry {
	return &Registry{integrations: make(map[string]*Integration)}
}

// Register adds an integration. Name collisions fail with ErrDuplicateTool
// and leave the original registration intact.
func (r *Registry) Register(i *Integration) error {
	if i == nil || i.Descriptor.Name == "" {
		return fmt.Errorf("integration must have a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := i.Descriptor.Name
	if _, exists := r.integrations[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}
	r.integrations[name] = i
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the integration registered under name.
func (r *Registry) Lookup(name string) (*Integration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.integrations[name]
	if !ok {
		return nil, &ToolNotFoundError{Tool: name}
	}
	return i, nil
}

// Names lists the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// ApplySettings attaches runtime settings to every registered integration.
// Called once at startup, after configuration has loaded; integrations
// registered from init() carry descriptor defaults until then.
func (r *Registry) ApplySettings(s Settings) {
	if s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, i := range r.integrations {
		i.settings = s
	}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide integration registry.
func Default() *Registry { return defaultRegistry }

// RegisterIntegration adds an integration to the default registry.
func RegisterIntegration(i *Integration) error {
	return defaultRegistry.Register(i)
}

// MustRegisterIntegration adds an integration to the default registry and
// panics on failure. For use from init() in preset packages.
func MustRegisterIntegration(i *Integration) {
	if err := defaultRegistry.Register(i); err != nil {
		panic(err)
	}
}

// GetIntegration looks a tool up in the default registry.
func GetIntegration(name string) (*Integration, error) {
	return defaultRegistry.Lookup(name)
}
