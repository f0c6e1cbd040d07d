/*
handlers_test.go - Tests for API handlers

Tests for:
- Meter lifecycle endpoints (status, start, stop)
- Holiday refresh success and failure mapping
- Settings read/update/validation
- Calendar and workday read models
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/salary-meter/calendar"
	"github.com/warp/salary-meter/display"
	"github.com/warp/salary-meter/scheduler"
	"github.com/warp/salary-meter/settings"
	"github.com/warp/salary-meter/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type stubFetcher struct {
	mu  sync.Mutex
	cal calendar.YearCalendar
	err error
}

func (f *stubFetcher) Fetch(_ context.Context, year int) (calendar.YearCalendar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return calendar.YearCalendar{}, f.err
	}
	return f.cal, nil
}

func (f *stubFetcher) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type noopRepeater struct{}

func (noopRepeater) Every(time.Duration, func()) (scheduler.Handle, error) { return noopHandle{}, nil }

type noopHandle struct{}

func (noopHandle) Cancel() {}

// Tuesday 2025-09-30 at 12:00.
var testNow = time.Date(2025, time.September, 30, 12, 0, 0, 0, time.UTC)

type testServer struct {
	router  http.Handler
	handler *Handler
	fetcher *stubFetcher
	latest  *display.Latest
	store   *sqlite.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	provider, err := settings.NewProvider(context.Background(), store, settings.Defaults(), zerolog.Nop())
	require.NoError(t, err)

	fetcher := &stubFetcher{cal: calendar.NewYearCalendar(2025, []calendar.Entry{
		{Date: calendar.NewDate(2025, time.October, 1), Kind: calendar.KindHoliday, Label: "National Day"},
		{Date: calendar.NewDate(2025, time.September, 28), Kind: calendar.KindMakeupWorkday, Label: "National Day makeup"},
	})}
	latest := display.NewLatest()

	sched := scheduler.New(scheduler.Config{
		Fetcher:  fetcher,
		Repeater: noopRepeater{},
		Sink:     latest,
		Settings: provider,
		Logger:   zerolog.Nop(),
		Now:      func() time.Time { return testNow },
	})
	sched.Resolver().RetryDelay = 0
	t.Cleanup(sched.Close)

	h := NewHandler(sched, provider, zerolog.Nop())

	return &testServer{router: NewRouter(h), handler: h, fetcher: fetcher, latest: latest, store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// =============================================================================
// METER
// =============================================================================

func TestStatus_Stopped(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/status", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[StatusDTO](t, rec)
	assert.False(t, status.Running)
	assert.Nil(t, status.Frame)
}

func TestStartStop(t *testing.T) {
	// GIVEN: A stopped meter with default settings
	// WHEN: It is started at 12:00 on a Tuesday
	// THEN: A working frame is published; stopping hides it

	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[StatusDTO](t, rec)
	assert.True(t, status.Running)
	require.NotNil(t, status.Frame)
	assert.Equal(t, "working", status.Frame.State)
	assert.True(t, strings.HasPrefix(status.Frame.Text, "Earned: ¥"))

	frame, visible := s.latest.Frame()
	assert.True(t, visible)
	assert.Equal(t, status.Frame.Text, frame.Text)

	rec = s.do(t, http.MethodPost, "/api/stop", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[StatusDTO](t, rec).Running)

	_, visible = s.latest.Frame()
	assert.False(t, visible)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestRefreshHolidays_Success(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/holidays/refresh", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[RefreshResponse](t, rec)
	assert.Equal(t, 2025, resp.Year)
	assert.Equal(t, 2, resp.Entries)
}

func TestRefreshHolidays_FailureIs502(t *testing.T) {
	s := newTestServer(t)
	s.fetcher.Fail(&calendar.StatusError{Code: http.StatusTooManyRequests, Status: "429 Too Many Requests"})

	rec := s.do(t, http.MethodPost, "/api/holidays/refresh", nil)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "rate_limited", resp.Code)
	assert.Contains(t, resp.Details, "rate limited")
}

func TestRefreshHolidays_RateLimitedPerClient(t *testing.T) {
	s := newTestServer(t)

	for i := 0; i < refreshLimit; i++ {
		require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/holidays/refresh", nil).Code)
	}

	rec := s.do(t, http.MethodPost, "/api/holidays/refresh", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestSettings_GetAndUpdate(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10000.0, decode[settings.Settings](t, rec).MonthlySalary)

	rec = s.do(t, http.MethodPut, "/api/settings", map[string]any{
		"monthlySalary":  30000,
		"currencySymbol": "$",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[settings.Settings](t, rec)
	assert.Equal(t, 30000.0, updated.MonthlySalary)
	assert.Equal(t, "$", updated.CurrencySymbol)
	assert.Equal(t, "09:00", updated.WorkStartTime, "omitted fields keep their values")

	persisted, err := s.store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 30000.0, persisted.MonthlySalary)
}

func TestSettings_UpdateRepublishesWhileRunning(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/start", nil)

	s.do(t, http.MethodPut, "/api/settings", map[string]any{"currencySymbol": "€"})

	frame, ok := s.latest.Frame()
	require.True(t, ok)
	assert.Contains(t, frame.Text, "€")
}

func TestSettings_UpdateRejectsInvalid(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPut, "/api/settings", map[string]any{"workDaysPerWeek": 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/settings", map[string]any{"salary": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown field")

	assert.Equal(t, 5, s.handler.Settings.Current().WorkDaysPerWeek)
}

// =============================================================================
// CALENDAR AND WORKDAYS
// =============================================================================

func TestGetCalendar(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/calendar/2025", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	cal := decode[CalendarDTO](t, rec)
	assert.Equal(t, 2025, cal.Year)
	assert.Len(t, cal.Entries, 2)
	assert.Equal(t, 1, cal.Holidays)
	assert.Equal(t, 1, cal.MakeupWorkdays)
}

func TestGetCalendar_UncachedYearIsEmpty(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/calendar/2031", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[CalendarDTO](t, rec).Entries)
}

func TestGetWorkdays(t *testing.T) {
	s := newTestServer(t)
	_, err := s.handler.Scheduler.Refresh(context.Background())
	require.NoError(t, err)

	// October 2025: 23 weekdays, minus the 1st.
	rec := s.do(t, http.MethodGet, "/api/workdays/2025/10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 22, decode[WorkdaysDTO](t, rec).Workdays)

	// September 2025: 22 weekdays plus the makeup Sunday.
	rec = s.do(t, http.MethodGet, "/api/workdays/2025/9", nil)
	assert.Equal(t, 23, decode[WorkdaysDTO](t, rec).Workdays)
}

func TestBadPathParams(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{
		"/api/calendar/abc",
		"/api/calendar/0",
		"/api/workdays/2025/13",
		"/api/workdays/2025/x",
	} {
		assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, path, nil).Code, path)
	}
}
