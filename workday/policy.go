/*
Package workday decides which calendar days carry a work obligation.

PURPOSE:

	Combines remote holiday data, manual override lists and a weekly pattern
	into a single yes/no per day, and counts workdays per month.

PRECEDENCE:
 1. AutoFetch:  makeup workday -> work, holiday -> off
    otherwise:  manual workday -> work, manual holiday -> off
 2. Weekly pattern by WorkdaysPerWeek (5 Mon-Fri, 6 Mon-Sat, 7 every day,
    anything else Mon-Fri)

SEE ALSO:
  - classifier.go: Classify
  - counter.go:    Memoized per-month counts
  - calendar/resolver.go: Remote holiday source
*/
package workday

import (
	"fmt"
	"sort"
	"strings"

	"github.com/warp/salary-meter/calendar"
)

// =============================================================================
// DATE SET
// =============================================================================

// DateSet is an unordered set of days.
type DateSet map[calendar.Date]struct{}

// NewDateSet builds a set from dates.
func NewDateSet(dates ...calendar.Date) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

// ParseDateSet parses ISO date strings. Blank entries are skipped.
func ParseDateSet(values []string) (DateSet, error) {
	s := make(DateSet, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		d, err := calendar.ParseDate(v)
		if err != nil {
			return nil, err
		}
		s[d] = struct{}{}
	}
	return s, nil
}

func (s DateSet) Has(d calendar.Date) bool {
	_, ok := s[d]
	return ok
}

// Sorted returns the members in date order.
func (s DateSet) Sorted() []calendar.Date {
	out := make([]calendar.Date, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (s DateSet) String() string {
	parts := make([]string, 0, len(s))
	for _, d := range s.Sorted() {
		parts = append(parts, d.String())
	}
	return strings.Join(parts, ",")
}

// =============================================================================
// POLICY
// =============================================================================

// Policy is the classifier-affecting configuration. It is read-only once
// handed to the classifier.
type Policy struct {
	AutoFetch       bool
	ManualHolidays  DateSet
	ManualWorkdays  DateSet
	WorkdaysPerWeek int
}

// Fingerprint is a stable serialization of every field that can change a
// classification result. Equal policies always produce equal fingerprints,
// regardless of set iteration order.
func (p Policy) Fingerprint() string {
	return fmt.Sprintf("auto=%t;week=%d;holidays=%s;workdays=%s",
		p.AutoFetch, p.WorkdaysPerWeek, p.ManualHolidays, p.ManualWorkdays)
}
