// pkg/session/manager.go
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/penkit-sh/penkit/pkg/engine"
	"github.com/penkit-sh/penkit/pkg/event"
)

// DefaultSessionID names the session that exists from startup.
const DefaultSessionID = "default"

// Manager owns every session and tracks the current one. Commands always
// act on the current session.
type Manager struct {
	mu       sync.RWMutex
	registry *engine.Registry
	bus      *event.Bus
	sessions map[string]*Session
	order    []string
	current  string
}

// NewManager creates a manager holding the default session, selected.
func NewManager(registry *engine.Registry, bus *event.Bus) *Manager {
	m := &Manager{
		registry: registry,
		bus:      bus,
		sessions: make(map[string]*Session),
	}
	def := newSession(DefaultSessionID)
	m.sessions[def.ID] = def
	m.order = append(m.order, def.ID)
	m.current = def.ID
	return m
}

func (m *Manager) publish(ctx context.Context, topic string, data any) {
	if m.bus == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	m.bus.Publish(ctx, topic, data)
}

// Create adds a session and makes it current. An empty id gets a generated
// one. Taken ids fail with DuplicateSessionError, leaving state unchanged.
func (m *Manager) Create(id string) (*Session, error) {
	if id == "" {
		id = uuid.NewString()
	}

	m.mu.Lock()
	if _, exists := m.sessions[id]; exists {
		m.mu.Unlock()
		return nil, &DuplicateSessionError{ID: id}
	}
	s := newSession(id)
	m.sessions[id] = s
	m.order = append(m.order, id)
	m.current = id
	m.mu.Unlock()

	m.publish(nil, event.SessionCreated, id)
	return s, nil
}

// Switch makes the named session current.
func (m *Manager) Switch(id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return nil, &NotFoundError{ID: id}
	}
	m.current = id
	m.mu.Unlock()

	m.publish(nil, event.SessionSwitched, id)
	return s, nil
}

// Destroy removes a session. The last remaining session cannot be
// destroyed; destroying the current one switches to the oldest survivor.
func (m *Manager) Destroy(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return &NotFoundError{ID: id}
	}
	if len(m.sessions) == 1 {
		return ErrLastSession
	}

	delete(m.sessions, id)
	for i, sid := range m.order {
		if sid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if m.current == id {
		m.current = m.order[0]
	}
	return nil
}

// Current returns the selected session.
func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[m.current]
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return s, nil
}

// List returns every session in creation order.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Session, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.sessions[id])
	}
	return out
}

// Use selects a module in the current session.
func (m *Manager) Use(name string) (*ModuleContext, error) {
	mc, err := m.Current().Use(m.registry, name)
	if err != nil {
		return nil, err
	}
	m.publish(nil, event.ModuleSelected, name)
	return mc, nil
}

// Run executes the active module of the current session.
func (m *Manager) Run(ctx context.Context) (engine.Result, error) {
	s := m.Current()
	before := len(s.history)
	res, err := s.Run(ctx)
	if len(s.history) > before {
		m.publish(ctx, event.ModuleExecuted, s.history[len(s.history)-1])
	}
	return res, err
}

// adopt installs a restored session, replacing any present with the same
// id. Used by the persistence layer at startup.
func (m *Manager) adopt(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.ID]; !exists {
		m.order = append(m.order, s.ID)
	}
	m.sessions[s.ID] = s
}
