package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store persists a single settings document.
type Store interface {
	// Load returns ErrNotFound when nothing has been saved yet.
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}

// =============================================================================
// PROVIDER
// =============================================================================

// Provider serves the current settings from memory and writes changes
// through to a Store.
type Provider struct {
	store Store
	log   zerolog.Logger

	mu        sync.RWMutex
	current   Settings
	listeners []func(Settings)
}

// NewProvider loads persisted settings, seeding the store with seed when it
// is empty.
func NewProvider(ctx context.Context, store Store, seed Settings, log zerolog.Logger) (*Provider, error) {
	p := &Provider{
		store: store,
		log:   log.With().Str("component", "settings").Logger(),
	}

	s, err := store.Load(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		if err := seed.Validate(); err != nil {
			return nil, err
		}
		if err := store.Save(ctx, seed); err != nil {
			return nil, fmt.Errorf("seed settings: %w", err)
		}
		p.log.Info().Msg("Settings store seeded")
		s = seed
	case err != nil:
		return nil, fmt.Errorf("load settings: %w", err)
	}

	p.current = s
	return p, nil
}

// Current returns a copy of the active settings.
func (p *Provider) Current() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return clone(p.current)
}

// OnUpdate registers fn to run after every successful Update.
func (p *Provider) OnUpdate(fn func(Settings)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Update validates, persists, then swaps in s. Nothing changes on error.
func (p *Provider) Update(ctx context.Context, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	s = clone(s)
	if err := p.store.Save(ctx, s); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	p.mu.Lock()
	p.current = s
	listeners := append([]func(Settings){}, p.listeners...)
	p.mu.Unlock()

	p.log.Info().
		Float64("monthly_salary", s.MonthlySalary).
		Str("hours", s.WorkStartTime+"-"+s.WorkEndTime).
		Int("days_per_week", s.WorkDaysPerWeek).
		Msg("Settings updated")

	for _, fn := range listeners {
		fn(clone(s))
	}
	return nil
}

func clone(s Settings) Settings {
	s.CustomHolidays = append([]string{}, s.CustomHolidays...)
	s.CustomWorkdays = append([]string{}, s.CustomWorkdays...)
	return s
}
