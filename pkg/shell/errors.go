// pkg/shell/errors.go
package shell

import (
	"errors"
	"fmt"
)

var (
	// ErrUsage marks operator input errors: malformed lines, unknown
	// commands, missing arguments. Exit code 2 in script mode.
	ErrUsage = errors.New("invalid input")

	// ErrExit is returned by the exit command to stop the read loop.
	ErrExit = errors.New("exit requested")
)

// SyntaxError reports a command line the tokenizer could not split.
type SyntaxError struct {
	Reason string
}

func (e *SyntaxError) Error() string { return e.Reason }

func (e *SyntaxError) Unwrap() error { return ErrUsage }

// UsageError reports a command invoked with the wrong arguments.
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string { return "usage: " + e.Usage }

func (e *UsageError) Unwrap() error { return ErrUsage }

// UnknownCommandError reports an unrecognized command name.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command: %s (type 'help' for commands)", e.Name)
}

func (e *UnknownCommandError) Unwrap() error { return ErrUsage }
