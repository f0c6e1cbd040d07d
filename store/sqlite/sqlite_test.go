package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/salary-meter/settings"
	"github.com/warp/salary-meter/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_LoadEmpty(t *testing.T) {
	store := newStore(t)

	_, err := store.Load(context.Background())

	assert.ErrorIs(t, err, settings.ErrNotFound)
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	s := settings.Defaults()
	s.MonthlySalary = 23456.5
	s.CustomHolidays = []string{"2025-10-01", "2025-10-02"}
	require.NoError(t, store.Save(ctx, s))

	// Overwrite: still a single row.
	s.CurrencySymbol = "€"
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salary.db")
	ctx := context.Background()

	first, err := sqlite.New(path)
	require.NoError(t, err)
	s := settings.Defaults()
	s.WorkStartTime = "08:30"
	require.NoError(t, first.Save(ctx, s))
	require.NoError(t, first.Close())

	second, err := sqlite.New(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "08:30", got.WorkStartTime)
}

func TestStore_BacksSettingsProvider(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	p, err := settings.NewProvider(ctx, store, settings.Defaults(), zerolog.Nop())
	require.NoError(t, err)

	next := settings.Defaults()
	next.WorkDaysPerWeek = 6
	require.NoError(t, p.Update(ctx, next))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, got.WorkDaysPerWeek)
}
