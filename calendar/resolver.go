/*
resolver.go - Cached, single-flight holiday calendar resolution

PURPOSE:

	Owns the year -> YearCalendar cache. Fetches the current year once at
	initialization (with bounded retries) and on explicit refresh only.

INITIALIZATION GUARD:

	Three states, transitioned under initMu:

	  NotStarted --Initialize--> InProgress(done chan) --fetch ends--> Done(result)

	The first caller starts the fetch on a context detached from its own
	cancellation; every caller (first included) waits on the same done
	channel. Done is terminal: initialization never re-runs.

RETRIES:

	Up to MaxAttempts (3) attempts, a fixed RetryDelay (3s) between failures.
	Exhaustion caches an empty calendar so lookups fall back to local rules,
	unless a refresh already stored that year while the retries ran.

READ PATH:

	IsHoliday / IsMakeupWorkday never block and never fetch: a year that is
	not cached yet simply has no entries.

DEDUPLICATION:

	Every network fetch goes through a singleflight group keyed by year, so a
	refresh racing an initialization attempt for the same year shares it.
	The shared fetch ignores the starting caller's cancellation (the client's
	own timeout still bounds it); each caller only stops waiting on its own
	ctx.

SEE ALSO:
  - client.go: The single-attempt HTTP fetch
  - scheduler/scheduler.go: Owns the Resolver, triggers Initialize/UpdateYear
*/
package calendar

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 3 * time.Second
)

type initPhase int

const (
	initNotStarted initPhase = iota
	initInProgress
	initDone
)

// Resolver caches year calendars and answers point lookups.
type Resolver struct {
	MaxAttempts int
	RetryDelay  time.Duration
	Now         func() time.Time

	fetcher Fetcher
	log     zerolog.Logger

	mu        sync.RWMutex
	cache     map[int]YearCalendar
	listeners []func(year int)

	initMu   sync.Mutex
	phase    initPhase
	initDone chan struct{}
	initErr  error

	flights singleflight.Group
}

// NewResolver creates a resolver backed by fetcher.
func NewResolver(fetcher Fetcher, log zerolog.Logger) *Resolver {
	return &Resolver{
		MaxAttempts: DefaultMaxAttempts,
		RetryDelay:  DefaultRetryDelay,
		Now:         time.Now,
		fetcher:     fetcher,
		log:         log.With().Str("component", "calendar").Logger(),
		cache:       make(map[int]YearCalendar),
	}
}

// OnChange registers fn to run after any cache replacement. year is 0
// after ClearAll.
func (r *Resolver) OnChange(fn func(year int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// Initialize fetches the current year once per process. Concurrent callers
// share the in-flight attempt. A nil or *InitWarning result both mean the
// resolver is usable; ctx only bounds how long this caller waits.
func (r *Resolver) Initialize(ctx context.Context) error {
	r.initMu.Lock()
	switch r.phase {
	case initDone:
		err := r.initErr
		r.initMu.Unlock()
		return err
	case initNotStarted:
		r.phase = initInProgress
		r.initDone = make(chan struct{})
		go r.runInitialization(context.WithoutCancel(ctx))
	}
	done := r.initDone
	r.initMu.Unlock()

	select {
	case <-done:
		r.initMu.Lock()
		defer r.initMu.Unlock()
		return r.initErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Initialized reports whether initialization has completed (either way).
func (r *Resolver) Initialized() bool {
	r.initMu.Lock()
	defer r.initMu.Unlock()
	return r.phase == initDone
}

func (r *Resolver) runInitialization(ctx context.Context) {
	year := r.Now().Year()
	r.log.Info().Int("year", year).Msg("Initializing holiday calendar")

	var result error
	cal, err := r.fetchWithRetry(ctx, year, r.MaxAttempts)
	if err != nil {
		result = &InitWarning{Year: year, Err: err}
		r.log.Warn().Err(err).Int("year", year).Msg("Holiday calendar unavailable, falling back to local rules")
	} else {
		r.log.Info().Int("year", year).Int("entries", cal.Len()).Msg("Holiday calendar initialized")
	}

	r.initMu.Lock()
	r.initErr = result
	r.phase = initDone
	close(r.initDone)
	r.initMu.Unlock()
}

// fetchWithRetry tries up to maxAttempts times with a fixed delay between
// failures. On exhaustion it caches an empty calendar and returns the last
// error.
func (r *Resolver) fetchWithRetry(ctx context.Context, year, maxAttempts int) (YearCalendar, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		cal, err := r.fetchOnce(ctx, year)
		if err == nil {
			r.store(year, cal)
			return cal, nil
		}
		lastErr = err
		r.log.Warn().Err(err).Int("year", year).Int("attempt", attempt).Msg("Holiday calendar fetch failed")

		if attempt < maxAttempts {
			if err := sleep(ctx, r.RetryDelay); err != nil {
				lastErr = err
				break
			}
		}
	}

	if lastErr == nil {
		lastErr = ErrAttemptsExhausted
	}
	cal, stored := r.storeIfAbsent(year, EmptyYear(year))
	if !stored {
		r.log.Info().Int("year", year).Msg("Keeping calendar stored by a refresh")
	}
	return cal, lastErr
}

func (r *Resolver) fetchOnce(ctx context.Context, year int) (YearCalendar, error) {
	ch := r.flights.DoChan(strconv.Itoa(year), func() (any, error) {
		return r.fetcher.Fetch(context.WithoutCancel(ctx), year)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return YearCalendar{}, res.Err
		}
		return res.Val.(YearCalendar), nil
	case <-ctx.Done():
		return YearCalendar{}, ctx.Err()
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// =============================================================================
// EXPLICIT UPDATES
// =============================================================================

// UpdateYear refetches year in a single attempt and replaces the cached
// entry. On failure the previous entry is kept and the error is returned.
func (r *Resolver) UpdateYear(ctx context.Context, year int) (YearCalendar, error) {
	cal, err := r.fetchOnce(ctx, year)
	if err != nil {
		r.log.Error().Err(err).Int("year", year).Msg("Holiday calendar refresh failed")
		return YearCalendar{}, err
	}
	r.store(year, cal)
	r.log.Info().Int("year", year).Int("entries", cal.Len()).Msg("Holiday calendar refreshed")
	return cal, nil
}

// ClearAll drops every cached year.
func (r *Resolver) ClearAll() {
	r.mu.Lock()
	r.cache = make(map[int]YearCalendar)
	listeners := append([]func(int){}, r.listeners...)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(0)
	}
}

func (r *Resolver) store(year int, cal YearCalendar) {
	r.mu.Lock()
	r.cache[year] = cal
	listeners := append([]func(int){}, r.listeners...)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(year)
	}
}

// storeIfAbsent caches cal unless year already has an entry, which it
// returns instead.
func (r *Resolver) storeIfAbsent(year int, cal YearCalendar) (YearCalendar, bool) {
	r.mu.Lock()
	if existing, ok := r.cache[year]; ok {
		r.mu.Unlock()
		return existing, false
	}
	r.cache[year] = cal
	listeners := append([]func(int){}, r.listeners...)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(year)
	}
	return cal, true
}

// =============================================================================
// LOOKUPS
// =============================================================================

// YearCalendar waits for initialization, then returns the cached calendar
// for year, or an empty one. It never fetches.
func (r *Resolver) YearCalendar(ctx context.Context, year int) (YearCalendar, error) {
	if err := r.Initialize(ctx); err != nil && !IsWarning(err) {
		return EmptyYear(year), err
	}
	if cal, ok := r.Cached(year); ok {
		return cal, nil
	}
	return EmptyYear(year), nil
}

// Cached returns the cached calendar for year without waiting.
func (r *Resolver) Cached(year int) (YearCalendar, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cal, ok := r.cache[year]
	return cal, ok
}

// Years returns the cached years in ascending order.
func (r *Resolver) Years() []int {
	r.mu.RLock()
	years := make([]int, 0, len(r.cache))
	for y := range r.cache {
		years = append(years, y)
	}
	r.mu.RUnlock()
	sort.Ints(years)
	return years
}

func (r *Resolver) IsHoliday(d Date) bool {
	cal, _ := r.Cached(d.Year)
	return cal.IsHoliday(d)
}

func (r *Resolver) IsMakeupWorkday(d Date) bool {
	cal, _ := r.Cached(d.Year)
	return cal.IsMakeupWorkday(d)
}
