// pkg/shell/exit.go
package shell

import (
	"errors"

	"github.com/penkit-sh/penkit/pkg/config"
	"github.com/penkit-sh/penkit/pkg/engine"
	"github.com/penkit-sh/penkit/pkg/session"
	"github.com/penkit-sh/penkit/pkg/toolexec"
)

// Exit codes reported by the process.
const (
	ExitOK           = 0
	ExitError        = 1
	ExitInvalidInput = 2
	ExitNotFound     = 4
)

// ExitCode maps an error to the process exit code: 0 success, 2 invalid
// operator input, 4 unknown module/session/tool, 1 everything else.
func ExitCode(err error) int {
	switch {
	case err == nil || errors.Is(err, ErrExit):
		return ExitOK
	case errors.Is(err, ErrUsage),
		errors.Is(err, engine.ErrContract),
		errors.Is(err, engine.ErrDuplicateName),
		errors.Is(err, engine.ErrInvalidOption),
		errors.Is(err, engine.ErrMissingRequiredOption),
		errors.Is(err, config.ErrUnknownKey),
		errors.Is(err, config.ErrInvalidValue),
		errors.Is(err, session.ErrDuplicateSession),
		errors.Is(err, session.ErrNoModuleSelected),
		errors.Is(err, session.ErrLastSession):
		return ExitInvalidInput
	case errors.Is(err, engine.ErrNotFound),
		errors.Is(err, toolexec.ErrToolNotFound):
		return ExitNotFound
	default:
		return ExitError
	}
}
