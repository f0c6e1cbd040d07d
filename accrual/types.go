/*
Package accrual turns "now" into the amount of salary earned today.

PURPOSE:
  A stateless per-tick transformation. Given the current instant, the
  workday policy, the work window and the monthly salary, it produces a
  State: how much of today's share has accrued, or why nothing can be
  shown.

MODEL (strictly linear):
  perMinute = monthlySalary / (workdaysInMonth * minutesInWorkWindow)
  earned    = minutesElapsedSinceStart * perMinute

STATES:
  PreWork       now <  start          amount 0
  Working       start <= now <= end   elapsed * perMinute
  PostWork      now >  end            full day (same formula)
  NonWorkday    today is not a workday
  ConfigError   work window cannot be parsed / salary invalid
  ComputeError  zero-length window, zero workdays, unexpected failure

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for money, no float rounding drift
  2. Totality: every input maps to a State, division by zero is impossible

SEE ALSO:
  - engine.go:     Recompute
  - schedule.go:   HH:MM parsing
  - display/render.go: State -> text
*/
package accrual

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STATE - Result of one recompute
// =============================================================================

type Kind int

const (
	KindPreWork Kind = iota
	KindWorking
	KindPostWork
	KindNonWorkday
	KindConfigError
	KindComputeError
)

func (k Kind) String() string {
	switch k {
	case KindPreWork:
		return "pre_work"
	case KindWorking:
		return "working"
	case KindPostWork:
		return "post_work"
	case KindNonWorkday:
		return "non_workday"
	case KindConfigError:
		return "config_error"
	case KindComputeError:
		return "compute_error"
	default:
		return "unknown"
	}
}

// IsError reports whether the kind carries an error instead of an amount.
func (k Kind) IsError() bool {
	return k == KindConfigError || k == KindComputeError
}

// State is derived per tick and never persisted.
type State struct {
	Kind   Kind
	Amount decimal.Decimal
	Err    error
	At     time.Time
}

func PreWork(at time.Time) State { return State{Kind: KindPreWork, Amount: decimal.Zero, At: at} }
func NonWorkday(at time.Time) State {
	return State{Kind: KindNonWorkday, Amount: decimal.Zero, At: at}
}

func Working(at time.Time, amount decimal.Decimal) State {
	return State{Kind: KindWorking, Amount: amount, At: at}
}

func PostWork(at time.Time, amount decimal.Decimal) State {
	return State{Kind: KindPostWork, Amount: amount, At: at}
}

func ConfigError(at time.Time, err error) State {
	return State{Kind: KindConfigError, Amount: decimal.Zero, Err: err, At: at}
}

func ComputeError(at time.Time, err error) State {
	return State{Kind: KindComputeError, Amount: decimal.Zero, Err: err, At: at}
}
