// pkg/session/session.go
// Package session holds the operator's working state: which module is
// selected, the option values bound to it, session variables, and the
// ordered history of everything that ran. Sessions are isolated from each
// other; exactly one is current at any time, tracked by the Manager.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/penkit-sh/penkit/pkg/engine"
	"github.com/penkit-sh/penkit/pkg/toolexec"
)

// State is the per-session lifecycle position.
type State string

const (
	// StateIdle means no module is selected.
	StateIdle State = "idle"

	// StateModuleSelected means a module is active and option edits are
	// permitted.
	StateModuleSelected State = "module_selected"

	// StateRunning means a module run is in flight. The state never
	// survives Run returning, even on failure or timeout.
	StateRunning State = "running"
)

// ModuleContext binds one module instance to its option values. Each `use`
// pushes a fresh context; `back` pops it.
type ModuleContext struct {
	Module  engine.Module
	Options *engine.Options
}

// Name returns the bound module's registry name.
func (c *ModuleContext) Name() string {
	return c.Module.Metadata().Name
}

// Session is one isolated operator context. A session is owned by the shell
// loop and is not safe for concurrent mutation.
type Session struct {
	ID        string
	CreatedAt time.Time

	// Vars are session-scoped variable bindings. On `use`, a variable whose
	// name matches a declared option seeds that option's value.
	Vars map[string]string

	stack   []*ModuleContext
	history []*toolexec.ExecutionResult
	state   State
}

func newSession(id string) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		Vars:      make(map[string]string),
		state:     StateIdle,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Active returns the module context on top of the stack, or nil when idle.
func (s *Session) Active() *ModuleContext {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

// Depth returns the module stack depth.
func (s *Session) Depth() int { return len(s.stack) }

// History returns the run history in execution order.
func (s *Session) History() []*toolexec.ExecutionResult {
	out := make([]*toolexec.ExecutionResult, len(s.history))
	copy(out, s.history)
	return out
}

// Use instantiates the named module and pushes it onto the context stack.
// Session variables matching declared option names seed the new context's
// options; a variable that does not coerce is skipped with a warning.
func (s *Session) Use(registry *engine.Registry, name string) (*ModuleContext, error) {
	mod, err := registry.Instantiate(name)
	if err != nil {
		return nil, err
	}

	opts := engine.NewOptions(mod.Metadata().Options)
	for _, spec := range mod.Metadata().Options {
		v, ok := s.Vars[spec.Name]
		if !ok {
			continue
		}
		if err := opts.Set(spec.Name, v); err != nil {
			log.Warn().Str("session", s.ID).Str("module", name).Str("option", spec.Name).Str("value", v).Msg("session variable does not fit module option, skipped")
		}
	}

	mc := &ModuleContext{Module: mod, Options: opts}
	s.stack = append(s.stack, mc)
	s.state = StateModuleSelected
	return mc, nil
}

// Back pops the active module context. Popping an empty stack is a no-op
// and returns false; the caller tells the operator.
func (s *Session) Back() bool {
	if len(s.stack) == 0 {
		return false
	}
	s.stack = s.stack[:len(s.stack)-1]
	if len(s.stack) == 0 {
		s.state = StateIdle
	} else {
		s.state = StateModuleSelected
	}
	return true
}

// SetOption binds an option on the active module. With no module selected
// the name becomes a session variable instead.
func (s *Session) SetOption(name, value string) error {
	if active := s.Active(); active != nil {
		return active.Options.Set(name, value)
	}
	s.Vars[name] = value
	return nil
}

// UnsetOption restores an option to its default on the active module, or
// removes a session variable when idle.
func (s *Session) UnsetOption(name string) error {
	if active := s.Active(); active != nil {
		return active.Options.Unset(name)
	}
	delete(s.Vars, name)
	return nil
}

// Run validates the active module's options, invokes it, and appends the
// outcome to history. The session returns to ModuleSelected no matter how
// the module ends; module errors are data for the operator, never a crash
// of the loop. With a required option unset the module is not invoked.
func (s *Session) Run(ctx context.Context) (engine.Result, error) {
	active := s.Active()
	if active == nil {
		return nil, ErrNoModuleSelected
	}
	if err := active.Options.Validate(); err != nil {
		return nil, err
	}

	s.state = StateRunning
	defer func() { s.state = StateModuleSelected }()

	started := time.Now()
	res, runErr := active.Module.Run(ctx, active.Options)
	elapsed := time.Since(started)

	s.history = append(s.history, executionEntry(active.Name(), res, runErr, started, elapsed))
	return res, runErr
}

// executionEntry lifts the module outcome into a history record. Modules
// that ran an external tool attach the real ExecutionResult under
// engine.ExecutionKey; anything else gets a synthesized record carrying the
// result mapping as its parsed payload.
func executionEntry(module string, res engine.Result, runErr error, started time.Time, elapsed time.Duration) *toolexec.ExecutionResult {
	if res != nil {
		if er, ok := res[engine.ExecutionKey].(*toolexec.ExecutionResult); ok && er != nil {
			return er
		}
	}

	entry := &toolexec.ExecutionResult{
		ID:        uuid.New().String(),
		Tool:      module,
		StartedAt: started,
		Duration:  elapsed,
		Success:   runErr == nil,
		Parsed:    map[string]interface{}(res),
	}
	if runErr != nil {
		entry.ExitCode = 1
		entry.Stderr = runErr.Error()
	}
	return entry
}
