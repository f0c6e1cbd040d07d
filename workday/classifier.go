package workday

import (
	"time"

	"github.com/warp/salary-meter/calendar"
)

// CalendarLookup answers point questions about remote holiday data.
// Implementations must not block on the network.
type CalendarLookup interface {
	IsHoliday(d calendar.Date) bool
	IsMakeupWorkday(d calendar.Date) bool
}

// Classifier decides whether a date is a workday under a policy.
type Classifier struct {
	Calendar CalendarLookup
}

func NewClassifier(lookup CalendarLookup) *Classifier {
	return &Classifier{Calendar: lookup}
}

// Classify is pure for a fixed calendar snapshot.
func (c *Classifier) Classify(d calendar.Date, p Policy) bool {
	if p.AutoFetch {
		if c.Calendar != nil {
			if c.Calendar.IsMakeupWorkday(d) {
				return true
			}
			if c.Calendar.IsHoliday(d) {
				return false
			}
		}
	} else {
		if p.ManualWorkdays.Has(d) {
			return true
		}
		if p.ManualHolidays.Has(d) {
			return false
		}
	}

	return WeeklyPattern(d.Weekday(), p.WorkdaysPerWeek)
}

// WeeklyPattern is the fallback rule when no calendar data applies.
func WeeklyPattern(wd time.Weekday, workdaysPerWeek int) bool {
	switch workdaysPerWeek {
	case 7:
		return true
	case 6:
		return wd != time.Sunday
	default:
		return wd != time.Saturday && wd != time.Sunday
	}
}
