// pkg/config/source.go
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Layer labels reported for resolved configuration values.
const (
	LayerDefault = "default"
	LayerUser    = "user"
	LayerEnv     = "env"
	LayerFlag    = "flag"
	LayerRuntime = "runtime"
)

// Source represents a configuration source that can load values into koanf.
// Sources are loaded in priority order (lowest first), with higher priority
// sources overriding lower priority values.
//
// Built-in sources and their priorities:
//   - DefaultSource (10): Compiled schema defaults
//   - FileSource (20): User config file (e.g., ~/.penkit/config.yaml)
//   - EnvSource (30): Environment variables (PENKIT_*)
//   - FlagSource (40): Command-line flags
type Source interface {
	// Name returns a human-readable name for this source (for logging/debugging)
	Name() string

	// Layer returns the provenance label reported for values this source resolves.
	Layer() string

	// Priority returns the load priority. Lower values are loaded first,
	// higher values override lower ones.
	Priority() int

	// Load loads configuration values into the provided koanf instance.
	// Returns an error if loading fails.
	Load(k *koanf.Koanf) error
}

// DefaultSource provides the compiled schema default values.
// Priority: 10 (lowest, loaded first)
type DefaultSource struct{}

func (s *DefaultSource) Name() string  { return "defaults" }
func (s *DefaultSource) Layer() string { return LayerDefault }
func (s *DefaultSource) Priority() int { return 10 }

func (s *DefaultSource) Load(k *koanf.Koanf) error {
	if err := k.Load(confmap.Provider(DefaultConfigAsMap(), "."), nil); err != nil {
		return fmt.Errorf("error loading defaults: %w", err)
	}
	return nil
}

// FileSource loads configuration from a YAML file. The file is validated
// against the schema: any key outside it fails the load, which is fatal at
// startup per the closed-schema policy.
// Priority: 20
type FileSource struct {
	Path string // Path to config file (optional, silently skipped if empty or missing)
}

func (s *FileSource) Name() string  { return "file:" + s.Path }
func (s *FileSource) Layer() string { return LayerUser }
func (s *FileSource) Priority() int { return 20 }

func (s *FileSource) Load(k *koanf.Koanf) error {
	if s.Path == "" {
		return nil // No file specified, skip silently
	}

	if _, err := os.Stat(s.Path); err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, skip silently
		}
		return fmt.Errorf("error checking config file %s: %w", s.Path, err)
	}

	probe := koanf.New(".")
	if err := probe.Load(file.Provider(s.Path), yaml.Parser()); err != nil {
		return fmt.Errorf("error loading config file %s: %w", s.Path, err)
	}

	for _, key := range probe.Keys() {
		if _, ok := LookupEntry(key); !ok {
			return fmt.Errorf("config file %s: %w", s.Path, &UnknownKeyError{Key: key})
		}
	}

	if err := k.Merge(probe); err != nil {
		return fmt.Errorf("error merging config file %s: %w", s.Path, err)
	}
	return nil
}

// EnvSource loads configuration from environment variables.
// Variables must have the PENKIT_ prefix and use underscores for the dotted
// key separators:
//
//	PENKIT_LOG_LEVEL            -> log.level
//	PENKIT_TOOLS_NMAP_USE_CONTAINER -> tools.nmap.use_container
//
// Variables that do not map to a schema key are ignored, so unrelated
// PENKIT_* variables (e.g. PENKIT_WORKSPACE) never poison the layer.
// Priority: 30
type EnvSource struct {
	Prefix string // Environment variable prefix (default: "PENKIT_")
}

func (s *EnvSource) Name() string  { return "env" }
func (s *EnvSource) Layer() string { return LayerEnv }
func (s *EnvSource) Priority() int { return 30 }

func (s *EnvSource) Load(k *koanf.Koanf) error {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "PENKIT_"
	}

	if err := k.Load(env.Provider(prefix, ".", func(key string) string {
		suffix := strings.ToUpper(strings.TrimPrefix(key, prefix))
		if mapped, ok := envKeyIndex[suffix]; ok {
			return mapped
		}
		return "" // not a schema key, skip
	}), nil); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}
	return nil
}

// FlagSource loads configuration from command-line flags. Only flags the
// operator actually set are merged, so flag defaults never mask file or
// environment values.
// Priority: 40 (highest, overrides all other sources)
type FlagSource struct {
	Flags *pflag.FlagSet
}

func (s *FlagSource) Name() string  { return "flags" }
func (s *FlagSource) Layer() string { return LayerFlag }
func (s *FlagSource) Priority() int { return 40 }

func (s *FlagSource) Load(k *koanf.Koanf) error {
	if s.Flags == nil {
		return nil
	}

	changed := pflag.NewFlagSet("changed", pflag.ContinueOnError)
	s.Flags.Visit(func(f *pflag.Flag) {
		if _, ok := LookupEntry(f.Name); ok {
			changed.AddFlag(f)
		}
	})

	if err := k.Load(posflag.Provider(changed, ".", k), nil); err != nil {
		return fmt.Errorf("error loading command-line flags: %w", err)
	}

	// Handle --debug specially: it implies debug-level logging.
	if debugFlag := s.Flags.Lookup("debug"); debugFlag != nil && debugFlag.Changed && debugFlag.Value.String() == "true" {
		_ = k.Set("log.level", "debug")
	}

	return nil
}

// Sources returns the standard configuration sources.
// Order: defaults -> file -> env -> flags
func Sources(configPath string, flags *pflag.FlagSet) []Source {
	return []Source{
		&DefaultSource{},
		&FileSource{Path: configPath},
		&EnvSource{Prefix: "PENKIT_"},
		&FlagSource{Flags: flags},
	}
}
