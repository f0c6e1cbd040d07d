package accrual

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidTime is returned when a work window bound is not HH:MM.
	ErrInvalidTime = errors.New("invalid time of day")

	// ErrInvalidSalary is returned when the monthly salary is not positive.
	ErrInvalidSalary = errors.New("monthly salary must be positive")

	// ErrDegenerateSchedule is returned when the work window has no minutes
	// (end at or before start).
	ErrDegenerateSchedule = errors.New("work window has zero length")

	// ErrNoWorkdays is returned when the month contains no workdays.
	ErrNoWorkdays = errors.New("no workdays in month")

	// ErrUnclassified wraps unexpected failures (recovered panics).
	ErrUnclassified = errors.New("unexpected accrual failure")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// TimeParseError names the offending field and value.
type TimeParseError struct {
	Field string
	Value string
}

func (e *TimeParseError) Error() string {
	return fmt.Sprintf("invalid %s %q: expected HH:MM", e.Field, e.Value)
}

func (e *TimeParseError) Unwrap() error {
	return ErrInvalidTime
}

// IsConfigError returns true if the error stems from the configuration
// rather than the computation.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidTime) || errors.Is(err, ErrInvalidSalary)
}
