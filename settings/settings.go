/*
Package settings holds the user-facing configuration of the meter.

PURPOSE:
  One explicit, validated struct replaces ad-hoc key lookups. Every other
  component receives a converted view of it (workday.Policy,
  accrual.Schedule, display.Templates, a decimal salary) and never reads
  raw fields.

SOURCES:
  Defaults() -> optional YAML file (LoadFile) -> persisted Store.
  The Provider caches the current value; Update validates, persists and
  swaps it atomically.

VALIDATION:
  Validate rejects structurally impossible values (negative salary, bad
  ISO dates, days-per-week other than 5, 6 or 7). Work-hour strings are NOT
  checked here: a malformed time is shown to the user as a ConfigError on
  the next tick.

SEE ALSO:
  - provider.go: Cached current settings
  - store/sqlite/sqlite.go: Persistent Store
*/
package settings

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/shopspring/decimal"
	"github.com/warp/salary-meter/accrual"
	"github.com/warp/salary-meter/display"
	"github.com/warp/salary-meter/workday"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidSettings = errors.New("invalid settings")
	ErrNotFound        = errors.New("settings not found")
)

// =============================================================================
// SETTINGS
// =============================================================================

type Settings struct {
	MonthlySalary     float64  `json:"monthlySalary" yaml:"monthly_salary"`
	WorkStartTime     string   `json:"workStartTime" yaml:"work_start_time"`
	WorkEndTime       string   `json:"workEndTime" yaml:"work_end_time"`
	WorkDaysPerWeek   int      `json:"workDaysPerWeek" yaml:"work_days_per_week"`
	AutoFetchHolidays bool     `json:"autoFetchHolidays" yaml:"auto_fetch_holidays"`
	CustomHolidays    []string `json:"customHolidays" yaml:"custom_holidays"`
	CustomWorkdays    []string `json:"customWorkdays" yaml:"custom_workdays"`
	DisplayPrefix     string   `json:"displayPrefix" yaml:"display_prefix"`
	CurrencySymbol    string   `json:"currencySymbol" yaml:"currency_symbol"`
	OffWorkMessage    string   `json:"offWorkMessage" yaml:"off_work_message"`
}

func Defaults() Settings {
	return Settings{
		MonthlySalary:     10000,
		WorkStartTime:     "09:00",
		WorkEndTime:       "18:00",
		WorkDaysPerWeek:   5,
		AutoFetchHolidays: true,
		CustomHolidays:    []string{},
		CustomWorkdays:    []string{},
		DisplayPrefix:     "Earned: ",
		CurrencySymbol:    "¥",
		OffWorkMessage:    " 💰 Off work!",
	}
}

// Validate returns an error wrapping ErrInvalidSettings naming the first
// offending field.
func (s Settings) Validate() error {
	if math.IsNaN(s.MonthlySalary) || math.IsInf(s.MonthlySalary, 0) || s.MonthlySalary < 0 {
		return fmt.Errorf("%w: monthlySalary must be a non-negative number", ErrInvalidSettings)
	}
	switch s.WorkDaysPerWeek {
	case 5, 6, 7:
	default:
		return fmt.Errorf("%w: workDaysPerWeek must be 5, 6 or 7, got %d", ErrInvalidSettings, s.WorkDaysPerWeek)
	}
	if _, err := workday.ParseDateSet(s.CustomHolidays); err != nil {
		return fmt.Errorf("%w: customHolidays: %v", ErrInvalidSettings, err)
	}
	if _, err := workday.ParseDateSet(s.CustomWorkdays); err != nil {
		return fmt.Errorf("%w: customWorkdays: %v", ErrInvalidSettings, err)
	}
	return nil
}

// =============================================================================
// CONVERSIONS
// =============================================================================

// Policy converts to the classifier view. Unparseable dates are dropped;
// call Validate first to reject them instead.
func (s Settings) Policy() workday.Policy {
	return workday.Policy{
		AutoFetch:       s.AutoFetchHolidays,
		ManualHolidays:  lenientDateSet(s.CustomHolidays),
		ManualWorkdays:  lenientDateSet(s.CustomWorkdays),
		WorkdaysPerWeek: s.WorkDaysPerWeek,
	}
}

func lenientDateSet(values []string) workday.DateSet {
	set := workday.NewDateSet()
	for _, v := range values {
		one, err := workday.ParseDateSet([]string{v})
		if err != nil {
			continue
		}
		for d := range one {
			set[d] = struct{}{}
		}
	}
	return set
}

func (s Settings) Schedule() accrual.Schedule {
	return accrual.Schedule{WorkStart: s.WorkStartTime, WorkEnd: s.WorkEndTime}
}

func (s Settings) Templates() display.Templates {
	return display.Templates{
		Prefix:         s.DisplayPrefix,
		Currency:       s.CurrencySymbol,
		OffWorkMessage: s.OffWorkMessage,
	}
}

func (s Settings) Salary() decimal.Decimal {
	if math.IsNaN(s.MonthlySalary) || math.IsInf(s.MonthlySalary, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(s.MonthlySalary)
}

// =============================================================================
// YAML FILE
// =============================================================================

// LoadFile reads a YAML settings file. Fields missing from the file keep
// their default values.
func LoadFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings file: %w", err)
	}
	return ParseYAML(data)
}

func ParseYAML(data []byte) (Settings, error) {
	s := Defaults()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// YAML renders s in the format LoadFile reads.
func (s Settings) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}
