package accrual

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// TIME OF DAY
// =============================================================================

// TimeOfDay is a wall-clock time with minute resolution.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM": exactly two colon-separated numeric
// tokens, hour 0-23, minute 0-59. Single-digit tokens ("9:05") are accepted.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	hour, ok := parseToken(parts[0])
	if !ok || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	minute, ok := parseToken(parts[1])
	if !ok || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

func parseToken(s string) (int, bool) {
	if s == "" || len(s) > 2 {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int { return t.Hour*60 + t.Minute }

// On returns the instant t on the civil day of ref, in ref's location.
func (t TimeOfDay) On(ref time.Time) time.Time {
	y, m, d := ref.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, ref.Location())
}

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

// =============================================================================
// SCHEDULE
// =============================================================================

// Schedule is the daily work window as configured.
type Schedule struct {
	WorkStart string
	WorkEnd   string
}

// Window is a parsed Schedule.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Parse validates both bounds.
func (s Schedule) Parse() (Window, error) {
	start, err := ParseTimeOfDay(s.WorkStart)
	if err != nil {
		return Window{}, &TimeParseError{Field: "work start", Value: s.WorkStart}
	}
	end, err := ParseTimeOfDay(s.WorkEnd)
	if err != nil {
		return Window{}, &TimeParseError{Field: "work end", Value: s.WorkEnd}
	}
	return Window{Start: start, End: end}, nil
}
