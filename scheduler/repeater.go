package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// =============================================================================
// REPEATER INTERFACES
// =============================================================================

// Repeater invokes fn every interval until the returned Handle is
// cancelled.
type Repeater interface {
	Every(interval time.Duration, fn func()) (Handle, error)
}

type Handle interface {
	Cancel()
}

// =============================================================================
// CRON REPEATER
// =============================================================================

// CronRepeater runs repeating jobs on a robfig/cron scheduler. Overlapping
// runs of the same job are skipped and panics are recovered and logged.
type CronRepeater struct {
	cron *cron.Cron
	log  zerolog.Logger
}

func NewCronRepeater(log zerolog.Logger) *CronRepeater {
	log = log.With().Str("component", "repeater").Logger()
	cl := cronLogger{log: log}

	return &CronRepeater{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: log,
	}
}

// Start starts the underlying cron loop.
func (r *CronRepeater) Start() {
	r.cron.Start()
	r.log.Info().Msg("Repeater started")
}

// Stop stops the cron loop and waits for running jobs.
func (r *CronRepeater) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.log.Info().Msg("Repeater stopped")
}

// Every registers fn as an "@every" entry. Intervals below one second are
// rounded up to one second by cron.
func (r *CronRepeater) Every(interval time.Duration, fn func()) (Handle, error) {
	spec := fmt.Sprintf("@every %s", interval)
	id, err := r.cron.AddFunc(spec, fn)
	if err != nil {
		return nil, fmt.Errorf("register %q: %w", spec, err)
	}
	r.log.Debug().Str("schedule", spec).Int("entry", int(id)).Msg("Job registered")
	return cronHandle{cron: r.cron, id: id}, nil
}

type cronHandle struct {
	cron *cron.Cron
	id   cron.EntryID
}

func (h cronHandle) Cancel() { h.cron.Remove(h.id) }

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
