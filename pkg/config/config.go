// pkg/config/config.go
// Package config implements the layered configuration store backing the
// shell's `config` command. Values resolve through a fixed precedence
// (runtime overrides > flags > environment > user file > defaults) against
// a closed schema; keys outside the schema are rejected rather than
// silently accepted.
package config

import (
	"github.com/spf13/pflag"
)

// BindFlags defines command-line flags corresponding to configuration
// settings. Flag names match schema keys so the flag layer can map them
// directly; only flags the user actually changed override lower layers.
//
// Note: the main --config / -c flag for specifying the config file path
// is defined directly on the root Cobra command's PersistentFlags.
func BindFlags(flags *pflag.FlagSet) {
	var debug bool
	flags.BoolVar(&debug, "debug", false, "Enable debug logging")

	flags.String("log.level", "", "Log level (debug, info, warn, error)")
	flags.String("workdir", "", "Working directory for session data and artifacts")
}
