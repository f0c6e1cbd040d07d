package calendar_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/salary-meter/calendar"
)

func TestDate_ParseAndFormat(t *testing.T) {
	d, err := calendar.ParseDate("2025-02-28")
	require.NoError(t, err)

	assert.Equal(t, calendar.Date{Year: 2025, Month: time.February, Day: 28}, d)
	assert.Equal(t, "2025-02-28", d.String())
	assert.Equal(t, calendar.NewDate(2025, time.March, 1), d.AddDays(1))
	assert.Equal(t, time.Friday, d.Weekday())
}

func TestDate_ParseRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "2025-13-01", "2025/01/01", "01-01"} {
		_, err := calendar.ParseDate(s)
		assert.Error(t, err, s)
	}
}

func TestDate_DateOfUsesLocalCivilDay(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	// 23:30 UTC on Dec 31 is already Jan 1 in UTC+8
	instant := time.Date(2024, time.December, 31, 23, 30, 0, 0, time.UTC).In(shanghai)

	assert.Equal(t, calendar.NewDate(2025, time.January, 1), calendar.DateOf(instant))
}

func TestDate_JSONRoundTrip(t *testing.T) {
	in := calendar.Entry{Date: calendar.NewDate(2025, time.October, 1), Kind: calendar.KindHoliday, Label: "National Day"}

	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"date":"2025-10-01"`)

	var out calendar.Entry
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}

func TestMonthDays(t *testing.T) {
	assert.Equal(t, 29, calendar.DaysIn(2024, time.February))
	assert.Equal(t, 28, calendar.DaysIn(2025, time.February))
	assert.Equal(t, 31, calendar.DaysIn(2025, time.December))

	days := calendar.MonthDays(2025, time.April)
	require.Len(t, days, 30)
	assert.Equal(t, calendar.NewDate(2025, time.April, 1), days[0])
	assert.Equal(t, calendar.NewDate(2025, time.April, 30), days[29])
}

func TestYearCalendar_OrderedAndIndexed(t *testing.T) {
	cal := calendar.NewYearCalendar(2025, []calendar.Entry{
		{Date: calendar.NewDate(2025, time.October, 1), Kind: calendar.KindHoliday},
		{Date: calendar.NewDate(2025, time.September, 28), Kind: calendar.KindMakeupWorkday},
		{Date: calendar.NewDate(2025, time.January, 1), Kind: calendar.KindHoliday},
	})

	assert.Equal(t, []calendar.Date{
		calendar.NewDate(2025, time.January, 1),
		calendar.NewDate(2025, time.October, 1),
	}, cal.Holidays())
	assert.Equal(t, []calendar.Date{calendar.NewDate(2025, time.September, 28)}, cal.MakeupWorkdays())

	var zero calendar.YearCalendar
	assert.True(t, zero.Empty())
	assert.False(t, zero.IsHoliday(calendar.NewDate(2025, time.January, 1)))
}
