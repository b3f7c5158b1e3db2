// pkg/config/errors.go
package config

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKey indicates a key that is not part of the compiled schema.
	// The schema is closed: arbitrary keys cannot be introduced at runtime
	// or smuggled in through the user config file.
	ErrUnknownKey = errors.New("unknown configuration key")

	// ErrInvalidValue indicates a value that cannot be coerced to the
	// schema-declared type of its key.
	ErrInvalidValue = errors.New("invalid configuration value")
)

// UnknownKeyError reports which key failed the schema check.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown configuration key: %s", e.Key)
}

func (e *UnknownKeyError) Unwrap() error {
	return ErrUnknownKey
}

// InvalidValueError reports a failed type coercion for a key.
type InvalidValueError struct {
	Key   string
	Type  Type
	Value interface{}
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for %s: %v is not a valid %s", e.Key, e.Value, e.Type)
}

func (e *InvalidValueError) Unwrap() error {
	return ErrInvalidValue
}
