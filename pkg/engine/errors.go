// pkg/engine/errors.go
package engine

import (
	"errors"
	"fmt"
)

// Module registry and option errors. All are checkable with errors.Is();
// the typed variants carry the offending names for error messages.

var (
	// ErrContract is returned when a module fails contract validation at
	// registration time (missing metadata, malformed option specs).
	// CLI exit code: 2
	ErrContract = errors.New("module contract violation")

	// ErrDuplicateName is returned when registering a module whose name is
	// already taken. The earlier registration stays intact.
	// CLI exit code: 2
	ErrDuplicateName = errors.New("module name already registered")

	// ErrNotFound is returned when a requested module is not registered.
	// CLI exit code: 4
	ErrNotFound = errors.New("module not found")

	// ErrInvalidOption is returned when setting an option a module does not
	// declare, or a value that cannot be coerced to the declared type.
	// CLI exit code: 2
	ErrInvalidOption = errors.New("invalid option")

	// ErrMissingRequiredOption is returned by option validation before a run
	// when a required option has neither a value nor a default.
	// CLI exit code: 2
	ErrMissingRequiredOption = errors.New("missing required option")
)

// ContractError reports why a module failed contract validation.
type ContractError struct {
	Name   string // module name, may be empty when the name itself is the problem
	Reason string
}

func (e *ContractError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("module contract violation: %s", e.Reason)
	}
	return fmt.Sprintf("module %q contract violation: %s", e.Name, e.Reason)
}

func (e *ContractError) Unwrap() error {
	return ErrContract
}

// DuplicateNameError reports a name collision during registration.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("module name already registered: %s", e.Name)
}

func (e *DuplicateNameError) Unwrap() error {
	return ErrDuplicateName
}

// NotFoundError reports a lookup for an unregistered module name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("module not found: %s", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// InvalidOptionError reports an undeclared option name or an uncoercible value.
type InvalidOptionError struct {
	Option string
	Reason string
}

func (e *InvalidOptionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid option: %s", e.Option)
	}
	return fmt.Sprintf("invalid option %s: %s", e.Option, e.Reason)
}

func (e *InvalidOptionError) Unwrap() error {
	return ErrInvalidOption
}

// MissingRequiredOptionError names the first required option found unset.
type MissingRequiredOptionError struct {
	Option string
}

func (e *MissingRequiredOptionError) Error() string {
	return fmt.Sprintf("missing required option: %s", e.Option)
}

func (e *MissingRequiredOptionError) Unwrap() error {
	return ErrMissingRequiredOption
}
