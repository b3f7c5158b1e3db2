// pkg/toolexec/result.go
package toolexec

import (
	"strings"
	"time"
)

// ExecutionResult records one tool run. Results are never mutated after
// creation; the session manager appends them to history and the persistence
// layer serializes them as JSON.
type ExecutionResult struct {
	ID        string                 `json:"id"`
	Tool      string                 `json:"tool"`
	Command   []string               `json:"command"`
	Stdout    string                 `json:"stdout"`
	Stderr    string                 `json:"stderr"`
	ExitCode  int                    `json:"exit_code"`
	StartedAt time.Time              `json:"started_at"`
	Duration  time.Duration          `json:"duration_ns"`
	Parsed    map[string]interface{} `json:"parsed,omitempty"`
	Success   bool                   `json:"success"`
}

// CommandLine renders the argv as a single display string.
func (r *ExecutionResult) CommandLine() string {
	return strings.Join(r.Command, " ")
}
