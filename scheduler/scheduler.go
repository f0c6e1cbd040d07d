/*
Package scheduler drives the meter: it owns the calendar resolver and the
workday caches, and republishes the accrual state once per second.

PURPOSE:
  Turns the pure pieces (calendar, workday, accrual, display) into a
  running system with a Stopped/Running lifecycle.

DESIGN:
  - Start: mark Running, kick off calendar initialization in the
    background, publish one frame synchronously, then repeat every
    Interval through the injected Repeater.
  - Stop: mark Stopped, cancel the repeat handle, hide the display.
    Initialization is NOT cancelled; it still fills the cache.
  - Ticks are serialized by tickMu and never block on the network.
  - A frame published after Stop is impossible: Stop hides under tickMu
    and every tick re-checks the running flag under the same lock.

CACHE COHERENCE:
  Every resolver cache change resets the workday counters, so counts
  computed before the calendar arrived are never reused. Ad-hoc month
  queries (WorkdaysInMonth) use their own counter and never evict the
  month the ticks are working in.

USAGE:
  s := scheduler.New(scheduler.Config{...})
  s.Start(ctx)
  // ... later
  s.Close()

SEE ALSO:
  - repeater.go: Cron-backed Repeater
  - api/handlers.go: Start/Stop/Refresh endpoints
*/
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/warp/salary-meter/accrual"
	"github.com/warp/salary-meter/calendar"
	"github.com/warp/salary-meter/display"
	"github.com/warp/salary-meter/settings"
	"github.com/warp/salary-meter/workday"
)

const DefaultInterval = time.Second

// SettingsSource supplies the active settings to each tick.
type SettingsSource interface {
	Current() settings.Settings
}

// Config carries the scheduler's injected capabilities.
type Config struct {
	Fetcher  calendar.Fetcher
	Repeater Repeater
	Sink     display.Sink
	Settings SettingsSource
	Logger   zerolog.Logger
	Now      func() time.Time
	Interval time.Duration
}

// Scheduler is safe for concurrent use.
type Scheduler struct {
	repeater Repeater
	sink     display.Sink
	settings SettingsSource
	log      zerolog.Logger
	now      func() time.Time
	interval time.Duration

	resolver   *calendar.Resolver
	classifier *workday.Classifier
	counter    *workday.Counter
	queries    *workday.Counter
	engine     *accrual.Engine

	mu      sync.Mutex // guards lifecycle transitions
	running atomic.Bool
	handle  Handle

	tickMu sync.Mutex
	last   display.Frame
	ticked bool
}

// New wires the resolver, classifier, counter and engine together.
func New(cfg Config) *Scheduler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}

	resolver := calendar.NewResolver(cfg.Fetcher, cfg.Logger)
	resolver.Now = cfg.Now
	classifier := workday.NewClassifier(resolver)
	counter := workday.NewCounter(classifier)
	queries := workday.NewCounter(classifier)
	resolver.OnChange(func(int) {
		counter.Reset()
		queries.Reset()
	})

	return &Scheduler{
		repeater:   cfg.Repeater,
		sink:       cfg.Sink,
		settings:   cfg.Settings,
		log:        cfg.Logger.With().Str("component", "scheduler").Logger(),
		now:        cfg.Now,
		interval:   cfg.Interval,
		resolver:   resolver,
		classifier: classifier,
		counter:    counter,
		queries:    queries,
		engine:     accrual.NewEngine(classifier, counter),
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start is a no-op when already running. ctx is only used to detach the
// background initialization from; cancelling it does not stop the meter.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return nil
	}

	handle, err := s.repeater.Every(s.interval, s.tick)
	if err != nil {
		return fmt.Errorf("schedule tick: %w", err)
	}
	s.handle = handle
	s.running.Store(true)

	go s.initialize(context.WithoutCancel(ctx))

	s.tick()

	s.log.Info().Dur("interval", s.interval).Msg("Scheduler started")
	return nil
}

// Stop is a no-op when already stopped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return
	}
	s.running.Store(false)
	if s.handle != nil {
		s.handle.Cancel()
		s.handle = nil
	}

	s.tickMu.Lock()
	s.sink.Hide()
	s.tickMu.Unlock()

	s.log.Info().Msg("Scheduler stopped")
}

// Close stops the meter and drops every cached calendar.
func (s *Scheduler) Close() {
	s.Stop()
	s.resolver.ClearAll()
}

func (s *Scheduler) Running() bool { return s.running.Load() }

// =============================================================================
// CALENDAR
// =============================================================================

func (s *Scheduler) initialize(ctx context.Context) {
	if err := s.resolver.Initialize(ctx); err != nil && !calendar.IsWarning(err) {
		s.log.Error().Err(err).Msg("Calendar initialization aborted")
	}
}

// Refresh refetches the current year in a single attempt, whether or not
// the meter is running. On success a running meter republishes at once.
func (s *Scheduler) Refresh(ctx context.Context) (calendar.YearCalendar, error) {
	year := s.now().Year()

	cal, err := s.resolver.UpdateYear(ctx, year)
	if err != nil {
		return calendar.YearCalendar{}, fmt.Errorf("refresh %d: %w", year, err)
	}

	s.Tick()
	return cal, nil
}

// =============================================================================
// TICK
// =============================================================================

// Tick publishes one frame now if the meter is running.
func (s *Scheduler) Tick() { s.tick() }

func (s *Scheduler) tick() {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	if !s.running.Load() {
		return
	}
	s.publish()
}

// publish must be called with tickMu held.
func (s *Scheduler) publish() {
	now := s.now()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("Tick panicked")
			frame := display.Render(accrual.ComputeError(now, fmt.Errorf("%w: %v", accrual.ErrUnclassified, r)), display.Templates{})
			s.last, s.ticked = frame, true
			s.sink.Update(frame)
		}
	}()

	cfg := s.settings.Current()
	state := s.engine.Recompute(now, cfg.Policy(), cfg.Schedule(), cfg.Salary())
	if state.Kind.IsError() {
		s.log.Debug().Err(state.Err).Str("state", state.Kind.String()).Msg("Tick produced error state")
	}

	frame := display.Render(state, cfg.Templates())
	s.last, s.ticked = frame, true
	s.sink.Update(frame)
}

// Last returns the most recently published frame.
func (s *Scheduler) Last() (display.Frame, bool) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	return s.last, s.ticked
}

// =============================================================================
// ACCESSORS
// =============================================================================

func (s *Scheduler) Resolver() *calendar.Resolver { return s.resolver }
func (s *Scheduler) Counter() *workday.Counter    { return s.counter }

// WorkdaysInMonth counts workdays under the current settings.
func (s *Scheduler) WorkdaysInMonth(year int, month time.Month) int {
	return s.queries.CountWorkdaysInMonth(year, month, s.settings.Current().Policy())
}
