package conf

import (
	"errors"
	"fmt"
)

// Configuration errors. Every load failure wraps exactly one of these
// sentinels so callers can tell them apart with errors.Is.
var (
	ErrMissingKey            = errors.New("missing required key")
	ErrDuplicateKey          = errors.New("duplicate key")
	ErrEmptyValue            = errors.New("empty value")
	ErrInvalidEnumValue      = errors.New("invalid enum value")
	ErrInvalidBooleanLiteral = errors.New("invalid boolean literal")
	ErrUnresolvedVariable    = errors.New("unresolved variable")
)

// KeyError ties a sentinel to the configuration key it occurred on.
// Value holds the rejected literal, or the variable name for
// ErrUnresolvedVariable; it is empty when the key has no value at all.
type KeyError struct {
	Key   string
	Value string
	Err   error
}

func (e *KeyError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %v: %q", e.Key, e.Err, e.Value)
	}
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

func (e *KeyError) Unwrap() error {
	return e.Err
}
