package drive

import (
	"errors"
	"fmt"
)

// Sentinel reasons for rejected command updates.
// Use errors.Is to classify a ValidationError.
var (
	ErrOutOfRange  = errors.New("value out of range")
	ErrUnknownMode = errors.New("unknown mode")
)

// ValidationError reports a rejected field update. The state cell is left
// unchanged whenever one of these is returned.
type ValidationError struct {
	Field  string // "speed", "direction" or "mode"
	Value  string // offending value, as received
	Reason error  // ErrOutOfRange or ErrUnknownMode
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

func outOfRange(field string, value int) error {
	return &ValidationError{
		Field:  field,
		Value:  fmt.Sprintf("%d", value),
		Reason: ErrOutOfRange,
	}
}
