// pkg/engine/errors_test.go
package engine

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestTypedErrors_UnwrapToSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"contract", &ContractError{Name: "bad-module", Reason: "metadata has no version"}, ErrContract},
		{"duplicate", &DuplicateNameError{Name: "port-scanner"}, ErrDuplicateName},
		{"not found", &NotFoundError{Name: "ghost"}, ErrNotFound},
		{"invalid option", &InvalidOptionError{Option: "timing", Reason: "x is not a valid int"}, ErrInvalidOption},
		{"missing required", &MissingRequiredOptionError{Option: "target"}, ErrMissingRequiredOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, sentinel) = false", tt.err)
			}
			// Wrapping through fmt must preserve the chain.
			wrapped := fmt.Errorf("running module: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("wrapped error lost its sentinel: %v", wrapped)
			}
		})
	}
}

func TestTypedErrors_MessagesNameTheSubject(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ContractError{Name: "bad-module", Reason: "metadata has no version"}, "bad-module"},
		{&ContractError{Reason: "nil factory"}, "nil factory"},
		{&DuplicateNameError{Name: "port-scanner"}, "port-scanner"},
		{&NotFoundError{Name: "ghost"}, "ghost"},
		{&InvalidOptionError{Option: "timing"}, "timing"},
		{&MissingRequiredOptionError{Option: "target"}, "target"},
	}

	for _, tt := range tests {
		if !strings.Contains(tt.err.Error(), tt.want) {
			t.Errorf("error message %q does not mention %q", tt.err.Error(), tt.want)
		}
	}
}
