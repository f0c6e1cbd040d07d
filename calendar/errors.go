package calendar

import (
	"errors"
	"fmt"
	"net/http"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrRateLimited is returned when the calendar service answers 429.
	ErrRateLimited = errors.New("calendar service rate limited the request")

	// ErrHTMLResponse is returned when the body is an HTML page instead of JSON.
	// Usually a captive portal or an error page from a proxy.
	ErrHTMLResponse = errors.New("calendar service returned HTML instead of JSON")

	// ErrUnexpectedPayload is returned when the JSON parses but lacks the
	// success code or the holiday mapping.
	ErrUnexpectedPayload = errors.New("unexpected calendar payload")

	// ErrTimeout is returned when a single request exceeds the request timeout.
	ErrTimeout = errors.New("calendar request timed out")

	// ErrAttemptsExhausted is returned by fetchWithRetry when maxAttempts < 1
	// leaves no error to report.
	ErrAttemptsExhausted = errors.New("calendar fetch attempts exhausted")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// StatusError reports a non-200 response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	if e.Code == http.StatusTooManyRequests {
		return fmt.Sprintf("calendar service rate limited, retry later (HTTP %d)", e.Code)
	}
	return fmt.Sprintf("calendar service error: HTTP %s", e.Status)
}

func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	return nil
}

// InitWarning is the non-fatal outcome of an initialization whose fetches
// all failed. The year has been cached as empty; classification falls back
// to manual and weekly rules.
type InitWarning struct {
	Year int
	Err  error
}

func (w *InitWarning) Error() string {
	return fmt.Sprintf("holiday data for %d unavailable, using local rules: %v", w.Year, w.Err)
}

func (w *InitWarning) Unwrap() error { return w.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRateLimited returns true if the service rejected the request with 429.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsWarning returns true if err only signals degraded (fallback) data.
func IsWarning(err error) bool {
	var w *InitWarning
	return errors.As(err, &w)
}
