// pkg/config/schema.go
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
)

// Type is the declared type of a configuration entry.
type Type string

const (
	TypeBool   Type = "bool"
	TypeInt    Type = "int"
	TypeString Type = "string"
)

// Entry describes one key of the closed configuration schema.
type Entry struct {
	Key         string
	Type        Type
	Default     interface{}
	Description string
}

// schema is the compiled configuration schema. Every key the application
// understands is declared here; anything else is rejected with ErrUnknownKey.
var schema = []Entry{
	{Key: "debug", Type: TypeBool, Default: false, Description: "Enable debug logging"},
	{Key: "workdir", Type: TypeString, Default: "", Description: "Working directory (defaults to ~/.penkit)"},
	{Key: "log.level", Type: TypeString, Default: "info", Description: "Log level (trace, debug, info, warn, error)"},
	{Key: "shell.history_size", Type: TypeInt, Default: 1000, Description: "Maximum retained shell history entries"},
	{Key: "scripts.continue_on_error", Type: TypeBool, Default: false, Description: "Keep executing a script after a failing line"},
	{Key: "sessions.path", Type: TypeString, Default: "", Description: "Session storage directory (defaults to <workdir>/sessions)"},
	{Key: "plugins.path", Type: TypeString, Default: "", Description: "Plugin manifest directory (defaults to <workdir>/plugins)"},
	{Key: "tools.nmap.path", Type: TypeString, Default: "", Description: "Explicit path to the nmap binary"},
	{Key: "tools.nmap.use_container", Type: TypeBool, Default: false, Description: "Force containerized execution for nmap"},
	{Key: "tools.nmap.container_image", Type: TypeString, Default: "instrumentisto/nmap:latest", Description: "Container image used when nmap runs containerized"},
	{Key: "tools.sqlmap.path", Type: TypeString, Default: "", Description: "Explicit path to the sqlmap binary"},
	{Key: "tools.sqlmap.use_container", Type: TypeBool, Default: false, Description: "Force containerized execution for sqlmap"},
	{Key: "tools.sqlmap.container_image", Type: TypeString, Default: "vulnerables/sqlmap-python3", Description: "Container image used when sqlmap runs containerized"},
}

var (
	schemaIndex map[string]Entry
	// envKeyIndex maps PENKIT_ environment suffixes (TOOLS_NMAP_USE_CONTAINER)
	// back to their dotted schema keys. A plain underscore-to-dot rewrite
	// cannot tell key separators from underscores inside a key segment.
	envKeyIndex map[string]string
)

func init() {
	schemaIndex = make(map[string]Entry, len(schema))
	envKeyIndex = make(map[string]string, len(schema))
	for _, e := range schema {
		schemaIndex[e.Key] = e
		envKey := strings.ToUpper(strings.ReplaceAll(e.Key, ".", "_"))
		envKeyIndex[envKey] = e.Key
	}
}

// Schema returns the schema entries in declaration order.
func Schema() []Entry {
	out := make([]Entry, len(schema))
	copy(out, schema)
	return out
}

// LookupEntry returns the schema entry for a key.
func LookupEntry(key string) (Entry, bool) {
	e, ok := schemaIndex[key]
	return e, ok
}

// DefaultConfigAsMap converts the schema defaults to a map for Koanf's
// confmap.Provider. This ensures Koanf knows all legal keys.
func DefaultConfigAsMap() map[string]interface{} {
	m := make(map[string]interface{}, len(schema))
	for _, e := range schema {
		m[e.Key] = e.Default
	}
	return m
}

// coerceValue converts a raw value (often a string typed by the operator)
// to the entry's declared type.
func coerceValue(e Entry, value interface{}) (interface{}, error) {
	switch e.Type {
	case TypeBool:
		v, err := cast.ToBoolE(value)
		if err != nil {
			return nil, &InvalidValueError{Key: e.Key, Type: e.Type, Value: value}
		}
		return v, nil
	case TypeInt:
		v, err := cast.ToIntE(value)
		if err != nil {
			return nil, &InvalidValueError{Key: e.Key, Type: e.Type, Value: value}
		}
		return v, nil
	default:
		v, err := cast.ToStringE(value)
		if err != nil {
			return nil, &InvalidValueError{Key: e.Key, Type: e.Type, Value: value}
		}
		return v, nil
	}
}

// DefaultConfigPath returns the default user config file location,
// ~/.penkit/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".penkit", "config.yaml")
}
