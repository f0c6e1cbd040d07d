// Package store provides settings.Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/salary-meter/settings"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	value *settings.Settings
	saves int
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) (settings.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.value == nil {
		return settings.Settings{}, settings.ErrNotFound
	}
	return *m.value, nil
}

func (m *Memory) Save(_ context.Context, s settings.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = &s
	m.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
