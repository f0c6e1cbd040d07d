/*
Package calendar resolves public holidays and makeup workdays for a year.

PURPOSE:

	Fetches year-scoped holiday data from a remote calendar service, caches
	it for the life of the process, and answers point lookups for the
	workday classifier.

KEY CONCEPTS:
  - Entry:        One special day (holiday or makeup workday)
  - YearCalendar: Immutable set of entries for one year, indexed by date
  - Client:       One HTTP fetch of a year (timeout, decoding, parsing)
  - Resolver:     Cache + single-flight initialization + bounded retries

CACHE LIFECYCLE:
  - A year's calendar is stored once, on the first successful or exhausted
    fetch. Exhaustion stores an empty calendar.
  - Entries are replaced wholesale by UpdateYear, never mutated in place.
  - ClearAll drops everything (full reset only).

SEE ALSO:
  - resolver.go: Initialization guard, retries, lookups
  - client.go:   Remote API wire format
  - workday/classifier.go: Consumer of IsHoliday / IsMakeupWorkday
*/
package calendar

import "sort"

// =============================================================================
// ENTRY - A single special day
// =============================================================================

type Kind string

const (
	KindHoliday       Kind = "holiday"
	KindMakeupWorkday Kind = "makeup_workday"
)

// Entry is immutable once produced.
type Entry struct {
	Date  Date   `json:"date"`
	Kind  Kind   `json:"kind"`
	Label string `json:"label"`
}

// =============================================================================
// YEAR CALENDAR - Immutable per-year entry set
// =============================================================================

// YearCalendar holds the entries for one year. The zero value is a valid
// empty calendar.
type YearCalendar struct {
	year    int
	entries []Entry
	byDate  map[Date]Entry
}

// NewYearCalendar builds a calendar from entries, ordered by date. Later
// duplicates of the same date win.
func NewYearCalendar(year int, entries []Entry) YearCalendar {
	byDate := make(map[Date]Entry, len(entries))
	for _, e := range entries {
		byDate[e.Date] = e
	}

	ordered := make([]Entry, 0, len(byDate))
	for _, e := range byDate {
		ordered = append(ordered, e)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	return YearCalendar{year: year, entries: ordered, byDate: byDate}
}

// EmptyYear is the fallback calendar stored when a year cannot be fetched.
func EmptyYear(year int) YearCalendar {
	return YearCalendar{year: year}
}

func (c YearCalendar) Year() int   { return c.year }
func (c YearCalendar) Len() int    { return len(c.entries) }
func (c YearCalendar) Empty() bool { return len(c.entries) == 0 }

// Entries returns a copy of the entries in date order.
func (c YearCalendar) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup returns the entry for d, if any.
func (c YearCalendar) Lookup(d Date) (Entry, bool) {
	e, ok := c.byDate[d]
	return e, ok
}

func (c YearCalendar) IsHoliday(d Date) bool {
	e, ok := c.byDate[d]
	return ok && e.Kind == KindHoliday
}

func (c YearCalendar) IsMakeupWorkday(d Date) bool {
	e, ok := c.byDate[d]
	return ok && e.Kind == KindMakeupWorkday
}

// Holidays returns the holiday dates in order.
func (c YearCalendar) Holidays() []Date { return c.datesOf(KindHoliday) }

// MakeupWorkdays returns the makeup workday dates in order.
func (c YearCalendar) MakeupWorkdays() []Date { return c.datesOf(KindMakeupWorkday) }

func (c YearCalendar) datesOf(kind Kind) []Date {
	var out []Date
	for _, e := range c.entries {
		if e.Kind == kind {
			out = append(out, e.Date)
		}
	}
	return out
}
