// pkg/engine/module.go
package engine

import (
	"context"
)

// OptionType is the declared type of a module option.
type OptionType string

const (
	OptionString OptionType = "string"
	OptionInt    OptionType = "int"
	OptionBool   OptionType = "bool"
)

// OptionSpec describes one configurable option of a module.
type OptionSpec struct {
	Name        string      // Option name as typed at the prompt (e.g., "ports")
	Description string      // Short human-readable description
	Type        OptionType  // Declared type; set values are coerced to it
	Default     interface{} // Default value, nil when the option has none
	Required    bool        // Run refuses to start while a required option is unset
}

// Metadata holds the descriptive attributes every module must expose.
// Options preserves declaration order so listings render stably.
type Metadata struct {
	Name        string
	Description string
	Version     string
	Author      string
	Options     []OptionSpec
}

// ResultKey is the key every module result mapping must contain. Its value
// is the human-readable outcome summary shown after a run.
const ResultKey = "result"

// ExecutionKey is the optional result key under which a module that ran an
// external tool attaches the underlying *toolexec.ExecutionResult. The
// session manager lifts it into run history.
const ExecutionKey = "execution"

// Result is the structured outcome of a module run. Modules may attach any
// additional keys (parsed findings, raw output, counters) next to ResultKey.
type Result map[string]interface{}

// Summary returns the value under ResultKey as a string.
func (r Result) Summary() string {
	if r == nil {
		return ""
	}
	if s, ok := r[ResultKey].(string); ok {
		return s
	}
	return ""
}

// Module is the contract every runnable module implements. Instances are
// created per session context by a Factory; a module must not assume it is
// the only live instance of its type.
type Module interface {
	// Metadata returns descriptive information about the module.
	Metadata() Metadata

	// Run executes the module against the resolved options. It blocks until
	// the run finishes or ctx is canceled. A non-nil Result must contain
	// ResultKey even when err is non-nil and partial output exists.
	Run(ctx context.Context, opts *Options) (Result, error)
}

// Factory is a no-argument constructor producing a fresh Module instance.
type Factory func() Module
