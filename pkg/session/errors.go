// pkg/session/errors.go
package session

import (
	"errors"
	"fmt"

	"github.com/penkit-sh/penkit/pkg/engine"
)

var (
	// ErrDuplicateSession indicates a create with an id that is already
	// taken. CLI exit code: 2 (invalid input).
	ErrDuplicateSession = errors.New("session already exists")

	// ErrNoModuleSelected indicates run/set without an active module.
	// CLI exit code: 2 (invalid input).
	ErrNoModuleSelected = errors.New("no module selected")

	// ErrLastSession indicates an attempt to destroy the only session.
	// CLI exit code: 2 (invalid input).
	ErrLastSession = errors.New("cannot destroy the last session")
)

// DuplicateSessionError reports a session id collision.
type DuplicateSessionError struct {
	ID string
}

func (e *DuplicateSessionError) Error() string {
	return fmt.Sprintf("session already exists: %s", e.ID)
}

func (e *DuplicateSessionError) Unwrap() error { return ErrDuplicateSession }

// NotFoundError reports a lookup for an unknown session id. It unwraps to
// engine.ErrNotFound so the CLI maps it to the same exit code as unknown
// modules.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}

func (e *NotFoundError) Unwrap() error { return engine.ErrNotFound }
