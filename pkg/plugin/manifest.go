// Copyright 2025 PenKit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package plugin loads external-tool module presets from YAML manifests.
// A manifest declares a module (name, options, argument template) and the
// tool it launches; discovery turns each valid manifest into a registered
// module without a line of Go. Built-in modules do not pass through here,
// they self-register from their packages.
package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Manifest is one YAML module preset.
type Manifest struct {
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description" validate:"required"`
	Version     string `yaml:"version" validate:"required,semver"`
	Author      string `yaml:"author" validate:"required"`

	// MinPenKitVersion gates loading on the running build. Empty loads
	// everywhere.
	MinPenKitVersion string `yaml:"min_penkit_version,omitempty" validate:"omitempty,semver"`

	Tool    ToolBlock    `yaml:"tool" validate:"required"`
	Options []OptionSpec `yaml:"options" validate:"dive"`
	Args    []ArgSpec    `yaml:"args" validate:"required,min=1,dive"`

	// Timeout bounds the tool run in seconds. A declared int option named
	// "timeout" takes precedence at run time.
	Timeout int `yaml:"timeout,omitempty" validate:"omitempty,min=1"`

	// Populated at load time.
	FilePath string    `yaml:"-"`
	LoadedAt time.Time `yaml:"-"`
}

// ToolBlock names the integration the module launches. When the name is
// not already registered, binary/container fields define a new one.
type ToolBlock struct {
	Name             string   `yaml:"name" validate:"required"`
	Binary           string   `yaml:"binary,omitempty"`
	DefaultArgs      []string `yaml:"default_args,omitempty"`
	ContainerImage   string   `yaml:"container_image,omitempty"`
	ContainerOptions []string `yaml:"container_options,omitempty"`
	VersionArgs      []string `yaml:"version_args,omitempty"`
}

// OptionSpec declares one module option.
type OptionSpec struct {
	Name        string      `yaml:"name" validate:"required"`
	Description string      `yaml:"description,omitempty"`
	Type        string      `yaml:"type,omitempty" validate:"omitempty,oneof=string int bool"`
	Default     interface{} `yaml:"default,omitempty"`
	Required    bool        `yaml:"required,omitempty"`
}

// ArgSpec is one element of the argument template. Exactly one form
// applies per element:
//   - arg: a literal token, with {option} placeholders substituted;
//   - option: the resolved value of that option as a token, preceded by
//     flag when set, the whole group dropped when the value is empty;
//   - flag with when: the flag token, emitted when the bool option is true.
type ArgSpec struct {
	Arg    string `yaml:"arg,omitempty"`
	Option string `yaml:"option,omitempty"`
	Flag   string `yaml:"flag,omitempty"`
	When   string `yaml:"when,omitempty"`
}

// validateShape rejects template elements that mix or miss forms, and
// option references that no declared option satisfies.
func (m *Manifest) validateShape() error {
	declared := make(map[string]string, len(m.Options))
	for _, opt := range m.Options {
		declared[opt.Name] = opt.effectiveType()
	}

	for i, a := range m.Args {
		switch {
		case a.Arg != "":
			if a.Option != "" || a.When != "" {
				return fmt.Errorf("args[%d]: arg is literal, option/when do not apply", i)
			}
			for _, ref := range placeholders(a.Arg) {
				if _, ok := declared[ref]; !ok {
					return fmt.Errorf("args[%d]: placeholder {%s} references an undeclared option", i, ref)
				}
			}
		case a.Option != "":
			if a.When != "" {
				return fmt.Errorf("args[%d]: option and when are mutually exclusive", i)
			}
			if _, ok := declared[a.Option]; !ok {
				return fmt.Errorf("args[%d]: option %q is not declared", i, a.Option)
			}
		case a.When != "":
			if a.Flag == "" {
				return fmt.Errorf("args[%d]: when requires a flag to emit", i)
			}
			if t, ok := declared[a.When]; !ok || t != "bool" {
				return fmt.Errorf("args[%d]: when %q must reference a declared bool option", i, a.When)
			}
		default:
			return fmt.Errorf("args[%d]: element declares neither arg, option nor when", i)
		}
	}
	return nil
}

func (o OptionSpec) effectiveType() string {
	if o.Type == "" {
		return "string"
	}
	return o.Type
}

// placeholders extracts {name} references from a literal template token.
func placeholders(token string) []string {
	var out []string
	rest := token
	for {
		open := strings.Index(rest, "{")
		if open < 0 {
			return out
		}
		end := strings.Index(rest[open:], "}")
		if end < 0 {
			return out
		}
		out = append(out, rest[open+1:open+end])
		rest = rest[open+end+1:]
	}
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", filepath.Base(path), err)
	}

	if err := validate.Struct(&m); err != nil {
		return nil, fmt.Errorf("manifest %s invalid: %w", filepath.Base(path), err)
	}
	if err := m.validateShape(); err != nil {
		return nil, fmt.Errorf("manifest %s invalid: %w", filepath.Base(path), err)
	}

	m.FilePath = path
	m.LoadedAt = time.Now()
	return &m, nil
}
