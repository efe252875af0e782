package dynamo

import (
	"errors"
	"fmt"
)

// Configuration errors. They are only returned when a simulator is built;
// nothing inside a running frame can fail.
var (
	// ErrInvalidCapacity indicates a particle capacity that is not positive.
	ErrInvalidCapacity = errors.New("dynamo: capacity must be positive")

	// ErrInvalidBoundary indicates a boundary radius that is not positive.
	ErrInvalidBoundary = errors.New("dynamo: boundary radius must be positive")

	// ErrInvalidRadiusRange indicates an empty, non-positive or oversized spawn radius range.
	ErrInvalidRadiusRange = errors.New("dynamo: invalid spawn radius range")

	// ErrInvalidSubSteps indicates a sub-step count below one.
	ErrInvalidSubSteps = errors.New("dynamo: sub-steps must be at least 1")

	// ErrInvalidResponse indicates a collision response coefficient outside (0, 1].
	ErrInvalidResponse = errors.New("dynamo: response coefficient must be in (0, 1]")

	// ErrInvalidFillCeiling indicates a fill ceiling outside (0, 100].
	ErrInvalidFillCeiling = errors.New("dynamo: fill ceiling must be in (0, 100]")

	// ErrInvalidInterval indicates a negative minimum spawn interval.
	ErrInvalidInterval = errors.New("dynamo: spawn interval must not be negative")

	// ErrUnknownPolicy indicates an unrecognised collision response policy.
	ErrUnknownPolicy = errors.New("dynamo: unknown collision policy")
)

// ConfigError wraps a configuration error with the offending field.
type ConfigError struct {
	Field   string
	Value   any
	Wrapped error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s=%v: %v", e.Field, e.Value, e.Wrapped)
}

func (e *ConfigError) Unwrap() error {
	return e.Wrapped
}

// NewConfigError builds a ConfigError for field.
func NewConfigError(field string, value any, err error) error {
	return &ConfigError{Field: field, Value: value, Wrapped: err}
}
