package model

import "fmt"

// ValidationError reports malformed input that the caller should surface to the user
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for the given field
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError reports an event that the shift lifecycle does not allow
type InvalidTransitionError struct {
	From  ShiftStatus
	Event ShiftEvent
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a shift in status %q", e.Event, e.From)
}
