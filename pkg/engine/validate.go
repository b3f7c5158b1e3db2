// pkg/engine/validate.go
package engine

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// moduleNamePattern matches valid module names:
// - Lowercase alphanumeric, hyphens, underscores
// - Must start with letter
// - Length: 3-63 characters (total)
var moduleNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{2,62}$`)

// optionNamePattern matches valid option names (lowercase, underscores).
var optionNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// validateContract checks a freshly constructed module instance against the
// module contract. Violations are reported as ContractError so registration
// can refuse the module with a precise reason.
func validateContract(m Module) error {
	if m == nil {
		return &ContractError{Reason: "factory returned nil"}
	}

	meta := m.Metadata()

	if meta.Name == "" {
		return &ContractError{Reason: "metadata has no name"}
	}
	if !moduleNamePattern.MatchString(meta.Name) {
		return &ContractError{Name: meta.Name, Reason: "invalid name (must be lowercase alphanumeric with hyphens/underscores, 3-63 chars, starting with letter)"}
	}
	if meta.Description == "" {
		return &ContractError{Name: meta.Name, Reason: "metadata has no description"}
	}
	if meta.Version == "" {
		return &ContractError{Name: meta.Name, Reason: "metadata has no version"}
	}
	if _, err := semver.NewVersion(meta.Version); err != nil {
		return &ContractError{Name: meta.Name, Reason: fmt.Sprintf("invalid version %q (must be valid semver)", meta.Version)}
	}
	if meta.Author == "" {
		return &ContractError{Name: meta.Name, Reason: "metadata has no author"}
	}

	seen := make(map[string]struct{}, len(meta.Options))
	for _, spec := range meta.Options {
		if spec.Name == "" {
			return &ContractError{Name: meta.Name, Reason: "option with empty name"}
		}
		if !optionNamePattern.MatchString(spec.Name) {
			return &ContractError{Name: meta.Name, Reason: fmt.Sprintf("invalid option name %q", spec.Name)}
		}
		if _, dup := seen[spec.Name]; dup {
			return &ContractError{Name: meta.Name, Reason: fmt.Sprintf("duplicate option %q", spec.Name)}
		}
		seen[spec.Name] = struct{}{}

		switch spec.Type {
		case OptionString, OptionInt, OptionBool:
		default:
			return &ContractError{Name: meta.Name, Reason: fmt.Sprintf("option %q has unsupported type %q", spec.Name, spec.Type)}
		}

		if spec.Default != nil {
			if _, err := coerceOption(spec, spec.Default); err != nil {
				return &ContractError{Name: meta.Name, Reason: fmt.Sprintf("option %q default does not match declared type %s", spec.Name, spec.Type)}
			}
		}
	}

	return nil
}
