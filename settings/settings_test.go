package settings_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/salary-meter/calendar"
	"github.com/warp/salary-meter/settings"
	"github.com/warp/salary-meter/settings/store"
)

// =============================================================================
// DEFAULTS AND VALIDATION
// =============================================================================

func TestDefaults(t *testing.T) {
	s := settings.Defaults()

	assert.Equal(t, 10000.0, s.MonthlySalary)
	assert.Equal(t, "09:00", s.WorkStartTime)
	assert.Equal(t, "18:00", s.WorkEndTime)
	assert.Equal(t, 5, s.WorkDaysPerWeek)
	assert.True(t, s.AutoFetchHolidays)
	assert.Empty(t, s.CustomHolidays)
	assert.NoError(t, s.Validate())
}

func TestValidate_Rejects(t *testing.T) {
	tests := map[string]func(*settings.Settings){
		"negative salary": func(s *settings.Settings) { s.MonthlySalary = -1 },
		"zero days":       func(s *settings.Settings) { s.WorkDaysPerWeek = 0 },
		"three days":      func(s *settings.Settings) { s.WorkDaysPerWeek = 3 },
		"four days":       func(s *settings.Settings) { s.WorkDaysPerWeek = 4 },
		"eight days":      func(s *settings.Settings) { s.WorkDaysPerWeek = 8 },
		"bad holiday":     func(s *settings.Settings) { s.CustomHolidays = []string{"2025-13-01"} },
		"bad workday":     func(s *settings.Settings) { s.CustomWorkdays = []string{"tomorrow"} },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			s := settings.Defaults()
			mutate(&s)
			assert.ErrorIs(t, s.Validate(), settings.ErrInvalidSettings)
		})
	}
}

func TestValidate_LeavesWorkHoursToTheEngine(t *testing.T) {
	s := settings.Defaults()
	s.WorkStartTime = "25:00"

	assert.NoError(t, s.Validate())
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func TestPolicy(t *testing.T) {
	s := settings.Defaults()
	s.AutoFetchHolidays = false
	s.WorkDaysPerWeek = 6
	s.CustomHolidays = []string{"2025-05-01", " ", "junk"}
	s.CustomWorkdays = []string{"2025-04-27"}

	p := s.Policy()

	assert.False(t, p.AutoFetch)
	assert.Equal(t, 6, p.WorkdaysPerWeek)
	assert.True(t, p.ManualHolidays.Has(calendar.NewDate(2025, time.May, 1)))
	assert.Len(t, p.ManualHolidays, 1, "blank and unparseable entries dropped")
	assert.True(t, p.ManualWorkdays.Has(calendar.NewDate(2025, time.April, 27)))
}

func TestSalaryTemplatesSchedule(t *testing.T) {
	s := settings.Defaults()
	s.MonthlySalary = 12345.67

	assert.Equal(t, "12345.67", s.Salary().String())
	assert.Equal(t, "¥", s.Templates().Currency)
	assert.Equal(t, "18:00", s.Schedule().WorkEnd)
}

// =============================================================================
// YAML
// =============================================================================

func TestLoadFile_PartialOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
monthly_salary: 20000
work_start_time: "10:00"
custom_holidays:
  - "2025-05-02"
`), 0o600))

	s, err := settings.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 20000.0, s.MonthlySalary)
	assert.Equal(t, "10:00", s.WorkStartTime)
	assert.Equal(t, "18:00", s.WorkEndTime, "default kept")
	assert.Equal(t, []string{"2025-05-02"}, s.CustomHolidays)
}

func TestParseYAML_RoundTrip(t *testing.T) {
	in := settings.Defaults()
	in.CustomWorkdays = []string{"2025-09-28"}

	data, err := in.YAML()
	require.NoError(t, err)

	out, err := settings.ParseYAML(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParseYAML_Invalid(t *testing.T) {
	_, err := settings.ParseYAML([]byte("work_days_per_week: 9"))
	assert.ErrorIs(t, err, settings.ErrInvalidSettings)

	_, err = settings.ParseYAML([]byte("monthly_salary: [oops"))
	assert.ErrorIs(t, err, settings.ErrInvalidSettings)
}

// =============================================================================
// PROVIDER
// =============================================================================

func TestProvider_SeedsEmptyStore(t *testing.T) {
	mem := store.NewMemory()
	seed := settings.Defaults()
	seed.MonthlySalary = 8000

	p, err := settings.NewProvider(context.Background(), mem, seed, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 8000.0, p.Current().MonthlySalary)
	assert.Equal(t, 1, mem.Saves())
}

func TestProvider_PrefersPersistedValue(t *testing.T) {
	mem := store.NewMemory()
	persisted := settings.Defaults()
	persisted.CurrencySymbol = "$"
	require.NoError(t, mem.Save(context.Background(), persisted))

	p, err := settings.NewProvider(context.Background(), mem, settings.Defaults(), zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "$", p.Current().CurrencySymbol)
	assert.Equal(t, 1, mem.Saves(), "no reseed")
}

func TestProvider_UpdateValidatesPersistsAndNotifies(t *testing.T) {
	mem := store.NewMemory()
	p, err := settings.NewProvider(context.Background(), mem, settings.Defaults(), zerolog.Nop())
	require.NoError(t, err)

	var seen []float64
	p.OnUpdate(func(s settings.Settings) { seen = append(seen, s.MonthlySalary) })

	bad := settings.Defaults()
	bad.WorkDaysPerWeek = 0
	assert.ErrorIs(t, p.Update(context.Background(), bad), settings.ErrInvalidSettings)
	assert.Equal(t, 10000.0, p.Current().MonthlySalary, "unchanged on error")

	good := settings.Defaults()
	good.MonthlySalary = 15000
	require.NoError(t, p.Update(context.Background(), good))

	assert.Equal(t, 15000.0, p.Current().MonthlySalary)
	stored, err := mem.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 15000.0, stored.MonthlySalary)
	assert.Equal(t, []float64{15000}, seen)
}

type failingStore struct{ store.Memory }

func (f *failingStore) Save(context.Context, settings.Settings) error {
	return errors.New("disk full")
}

func TestProvider_SaveFailureKeepsCurrent(t *testing.T) {
	fs := &failingStore{}
	require.NoError(t, fs.Memory.Save(context.Background(), settings.Defaults()))

	p, err := settings.NewProvider(context.Background(), fs, settings.Defaults(), zerolog.Nop())
	require.NoError(t, err)

	next := settings.Defaults()
	next.MonthlySalary = 1
	assert.Error(t, p.Update(context.Background(), next))
	assert.Equal(t, 10000.0, p.Current().MonthlySalary)
}

func TestProvider_CurrentIsACopy(t *testing.T) {
	seed := settings.Defaults()
	seed.CustomHolidays = []string{"2025-01-01"}
	p, err := settings.NewProvider(context.Background(), store.NewMemory(), seed, zerolog.Nop())
	require.NoError(t, err)

	c := p.Current()
	c.CustomHolidays[0] = "1999-01-01"

	assert.Equal(t, "2025-01-01", p.Current().CustomHolidays[0])
}
