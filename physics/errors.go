package physics

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is matched by every *ConfigError.
	ErrInvalidConfig = errors.New("physics: invalid joint configuration")
	ErrStaleHandle   = errors.New("physics: stale handle")
	ErrBodyKind      = errors.New("physics: wrong body kind")
)

// ConfigError reports an internally inconsistent joint or shape description.
type ConfigError struct {
	Axis   *JointAxis
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Axis != nil {
		return fmt.Sprintf("physics: %s on %s: %s", e.Field, *e.Axis, e.Reason)
	}
	return fmt.Sprintf("physics: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func axisError(axis JointAxis, field, reason string) *ConfigError {
	return &ConfigError{Axis: &axis, Field: field, Reason: reason}
}
