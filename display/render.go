/*
Package display renders accrual states and delivers them to sinks.

PURPOSE:
  The core only knows "text + style". This package owns the templates that
  turn an accrual.State into that pair, and the sinks that show it:

    Latest   last frame in memory (HTTP status endpoint)
    Console  one styled, self-overwriting terminal line (lipgloss)
    Hub      websocket fan-out to connected clients
    Fanout   several sinks behind one

SEE ALSO:
  - scheduler/scheduler.go: Pushes a frame every tick
  - api/handlers.go: Status endpoint and websocket route
*/
package display

import (
	"time"

	"github.com/warp/salary-meter/accrual"
)

// =============================================================================
// STYLE AND FRAME
// =============================================================================

type Style string

const (
	StyleInactive  Style = "inactive"
	StyleActive    Style = "active"
	StyleProminent Style = "prominent"
	StyleError     Style = "error"
)

// Frame is one rendered state.
type Frame struct {
	Text   string    `json:"text"`
	Style  Style     `json:"style"`
	State  string    `json:"state"`
	Amount string    `json:"amount"`
	Error  string    `json:"error,omitempty"`
	At     time.Time `json:"at"`
	Hidden bool      `json:"hidden,omitempty"`
}

// Sink shows frames. Implementations must be safe for concurrent use.
type Sink interface {
	Update(f Frame)
	Hide()
}

// =============================================================================
// TEMPLATES
// =============================================================================

// Templates are opaque formatting inputs supplied by settings.
type Templates struct {
	Prefix         string
	Currency       string
	OffWorkMessage string
}

const (
	textNonWorkday   = "Non-workday"
	textConfigError  = "Invalid work settings"
	textComputeError = "Calculation error"
)

// Render turns a state into a frame. Amounts are shown with two decimals.
func Render(s accrual.State, t Templates) Frame {
	f := Frame{
		State:  s.Kind.String(),
		Amount: s.Amount.StringFixed(2),
		At:     s.At,
	}
	if s.Err != nil {
		f.Error = s.Err.Error()
	}

	money := t.Prefix + t.Currency + f.Amount

	switch s.Kind {
	case accrual.KindPreWork:
		f.Text, f.Style = money, StyleInactive
	case accrual.KindWorking:
		f.Text, f.Style = money, StyleActive
	case accrual.KindPostWork:
		f.Text, f.Style = money+t.OffWorkMessage, StyleProminent
	case accrual.KindNonWorkday:
		f.Text, f.Style = textNonWorkday, StyleInactive
	case accrual.KindConfigError:
		f.Text, f.Style = textConfigError, StyleError
	default:
		f.Text, f.Style = textComputeError, StyleError
	}
	return f
}

// =============================================================================
// FANOUT
// =============================================================================

// Fanout forwards every call to each sink in order.
type Fanout []Sink

func (f Fanout) Update(frame Frame) {
	for _, s := range f {
		s.Update(frame)
	}
}

func (f Fanout) Hide() {
	for _, s := range f {
		s.Hide()
	}
}
