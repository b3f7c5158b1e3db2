// pkg/toolexec/errors.go
package toolexec

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrToolNotFound indicates the tool has neither a usable binary nor a
	// container image. CLI exit code: 4 (not found).
	ErrToolNotFound = errors.New("tool not found")

	// ErrExecutionTimeout indicates the tool was killed after exceeding its
	// timeout. CLI exit code: 1 (execution failure).
	ErrExecutionTimeout = errors.New("execution timed out")

	// ErrDuplicateTool indicates an integration name collision at
	// registration. CLI exit code: 1 (internal error).
	ErrDuplicateTool = errors.New("tool already registered")
)

// ToolNotFoundError reports a tool that could not be launched in any mode.
type ToolNotFoundError struct {
	Tool   string
	Binary string
}

func (e *ToolNotFoundError) Error() string {
	if e.Binary != "" {
		return fmt.Sprintf("tool not found: %s (binary %q not on PATH and no container image configured)", e.Tool, e.Binary)
	}
	return fmt.Sprintf("tool not found: %s", e.Tool)
}

func (e *ToolNotFoundError) Unwrap() error { return ErrToolNotFound }

// TimeoutError reports an execution killed on timeout. It carries whatever
// output the tool produced before the kill, so partial results are not lost.
type TimeoutError struct {
	Tool    string
	Timeout time.Duration
	Stdout  string
	Stderr  string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("execution timed out: %s after %s", e.Tool, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return ErrExecutionTimeout }
