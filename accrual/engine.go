package accrual

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/salary-meter/calendar"
	"github.com/warp/salary-meter/workday"
)

// =============================================================================
// ENGINE DEPENDENCIES
// =============================================================================

// DayClassifier decides whether a date is a workday.
type DayClassifier interface {
	Classify(d calendar.Date, p workday.Policy) bool
}

// MonthCounter counts workdays in a month.
type MonthCounter interface {
	CountWorkdaysInMonth(year int, month time.Month, p workday.Policy) int
}

// =============================================================================
// ENGINE
// =============================================================================

var millisPerMinute = decimal.NewFromInt(int64(time.Minute / time.Millisecond))

// Engine computes the display state for one tick. It holds no state of its
// own; memoization lives in the MonthCounter.
type Engine struct {
	Classifier DayClassifier
	Counter    MonthCounter
}

func NewEngine(classifier DayClassifier, counter MonthCounter) *Engine {
	return &Engine{Classifier: classifier, Counter: counter}
}

// Recompute derives the State for now. It never panics and never returns
// an amount produced by a division by zero.
func (e *Engine) Recompute(now time.Time, policy workday.Policy, schedule Schedule, monthlySalary decimal.Decimal) (state State) {
	defer func() {
		if r := recover(); r != nil {
			state = ComputeError(now, fmt.Errorf("%w: %v", ErrUnclassified, r))
		}
	}()

	window, err := schedule.Parse()
	if err != nil {
		return ConfigError(now, err)
	}
	if !monthlySalary.IsPositive() {
		return ConfigError(now, fmt.Errorf("%w: %s", ErrInvalidSalary, monthlySalary))
	}

	if !e.Classifier.Classify(calendar.DateOf(now), policy) {
		return NonWorkday(now)
	}

	todayStart := window.Start.On(now)
	todayEnd := window.End.On(now)

	totalMinutes := max(0, int64(todayEnd.Sub(todayStart)/time.Minute))
	if totalMinutes == 0 {
		return ComputeError(now, fmt.Errorf("%w: %s-%s", ErrDegenerateSchedule, window.Start, window.End))
	}

	workdays := e.Counter.CountWorkdaysInMonth(now.Year(), now.Month(), policy)
	if workdays <= 0 {
		return ComputeError(now, fmt.Errorf("%w: %d-%02d", ErrNoWorkdays, now.Year(), now.Month()))
	}

	perMinute := monthlySalary.Div(decimal.NewFromInt(int64(workdays) * totalMinutes))

	switch {
	case now.Before(todayStart):
		return PreWork(now)
	case now.After(todayEnd):
		return PostWork(now, decimal.NewFromInt(totalMinutes).Mul(perMinute))
	default:
		return Working(now, elapsedMinutes(todayStart, now).Mul(perMinute))
	}
}

// elapsedMinutes is fractional at millisecond resolution, clamped at zero.
func elapsedMinutes(from, to time.Time) decimal.Decimal {
	ms := to.Sub(from).Milliseconds()
	if ms < 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(ms).Div(millisPerMinute)
}

// DailyShare is the amount earned over a full workday for the month.
func DailyShare(monthlySalary decimal.Decimal, workdaysInMonth int) decimal.Decimal {
	if workdaysInMonth <= 0 {
		return decimal.Zero
	}
	return monthlySalary.Div(decimal.NewFromInt(int64(workdaysInMonth)))
}
