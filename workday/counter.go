package workday

import (
	"sync"
	"time"

	"github.com/warp/salary-meter/calendar"
)

// =============================================================================
// WORKDAY COUNTER - Memoized per-month counts
// =============================================================================

// Counter memoizes workday counts per (year, month, policy fingerprint).
//
// BOUNDING:
//
//	Whenever a query arrives for a month that no cached key shares, the
//	whole memo is dropped first. The memo therefore only ever holds policy
//	variants of a single month.
type Counter struct {
	classifier *Classifier

	mu   sync.Mutex
	memo map[countKey]int
}

type countKey struct {
	year        int
	month       time.Month
	fingerprint string
}

func NewCounter(classifier *Classifier) *Counter {
	return &Counter{
		classifier: classifier,
		memo:       make(map[countKey]int),
	}
}

// CountWorkdaysInMonth returns how many days of the month classify as
// workdays under p.
func (c *Counter) CountWorkdaysInMonth(year int, month time.Month, p Policy) int {
	key := countKey{year: year, month: month, fingerprint: p.Fingerprint()}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.memo) > 0 && !c.hasMonth(year, month) {
		c.memo = make(map[countKey]int)
	}

	if n, ok := c.memo[key]; ok {
		return n
	}

	n := 0
	for _, d := range calendar.MonthDays(year, month) {
		if c.classifier.Classify(d, p) {
			n++
		}
	}
	c.memo[key] = n
	return n
}

func (c *Counter) hasMonth(year int, month time.Month) bool {
	for k := range c.memo {
		if k.year == year && k.month == month {
			return true
		}
	}
	return false
}

// Reset drops every memoized count. Called when the underlying calendar
// data changes.
func (c *Counter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memo = make(map[countKey]int)
}

// Len returns the number of memoized entries.
func (c *Counter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.memo)
}
