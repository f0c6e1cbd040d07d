/*
handlers.go - HTTP API handlers for the salary meter

PURPOSE:
  Exposes the meter's commands (start, stop, refresh holidays) and its
  read models (status, settings, calendar, workday counts) over REST.

ENDPOINTS:
  Meter:
    GET    /api/status                     Running flag + latest frame
    POST   /api/start                      Start the meter
    POST   /api/stop                       Stop the meter

  Holidays:
    POST   /api/holidays/refresh           Refetch the current year

  Settings:
    GET    /api/settings                   Current settings
    PUT    /api/settings                   Replace settings (merged onto current)

  Calendar:
    GET    /api/calendar/{year}            Cached holiday entries
    GET    /api/workdays/{year}/{month}    Workday count

  Stream:
    GET    /ws                             Websocket frame stream

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 502: Calendar service failed during refresh
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/warp/salary-meter/calendar"
	"github.com/warp/salary-meter/scheduler"
	"github.com/warp/salary-meter/settings"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Scheduler *scheduler.Scheduler
	Settings  *settings.Provider
	Stream    http.Handler // optional websocket endpoint

	log zerolog.Logger
}

func NewHandler(sched *scheduler.Scheduler, provider *settings.Provider, log zerolog.Logger) *Handler {
	return &Handler{
		Scheduler: sched,
		Settings:  provider,
		log:       log.With().Str("component", "api").Logger(),
	}
}

// =============================================================================
// METER HANDLERS
// =============================================================================

// GetStatus returns the running flag and the latest frame.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.status())
}

func (h *Handler) status() StatusDTO {
	resolver := h.Scheduler.Resolver()
	dto := StatusDTO{
		Running:             h.Scheduler.Running(),
		CalendarInitialized: resolver.Initialized(),
		CachedYears:         resolver.Years(),
	}
	if frame, ok := h.Scheduler.Last(); ok && dto.Running {
		dto.Frame = &frame
	}
	return dto
}

// Start starts the meter. Starting a running meter is a no-op.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	if err := h.Scheduler.Start(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to start meter", err)
		return
	}
	writeJSON(w, http.StatusOK, h.status())
}

// Stop stops the meter. Stopping a stopped meter is a no-op.
func (h *Handler) Stop(w http.ResponseWriter, r *http.Request) {
	h.Scheduler.Stop()
	writeJSON(w, http.StatusOK, h.status())
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// RefreshHolidays refetches the current year once. Failures leave the
// cached calendar untouched and surface as 502.
func (h *Handler) RefreshHolidays(w http.ResponseWriter, r *http.Request) {
	cal, err := h.Scheduler.Refresh(r.Context())
	if err != nil {
		resp := ErrorResponse{Error: "Holiday refresh failed", Code: "fetch_failed", Details: err.Error()}
		if calendar.IsRateLimited(err) {
			resp.Code = "rate_limited"
		}
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	writeJSON(w, http.StatusOK, RefreshResponse{Year: cal.Year(), Entries: cal.Len()})
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Settings.Current())
}

// UpdateSettings decodes the body onto the current settings, so omitted
// fields keep their values.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	next := h.Settings.Current()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&next); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Settings.Update(r.Context(), next); err != nil {
		if errors.Is(err, settings.ErrInvalidSettings) {
			writeError(w, http.StatusBadRequest, "Invalid settings", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}

	h.Scheduler.Tick()
	writeJSON(w, http.StatusOK, h.Settings.Current())
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// GetCalendar returns the cached calendar for a year. It waits for the
// initial fetch (bounded by the request) but never fetches itself.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	cal, err := h.Scheduler.Resolver().YearCalendar(r.Context(), year)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Calendar not ready", err)
		return
	}
	writeJSON(w, http.StatusOK, toCalendarDTO(cal))
}

// GetWorkdays returns the workday count for a month.
func (h *Handler) GetWorkdays(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}

	writeJSON(w, http.StatusOK, WorkdaysDTO{
		Year:     year,
		Month:    month,
		Workdays: h.Scheduler.WorkdaysInMonth(year, time.Month(month)),
	})
}

func parseYear(s string) (int, error) {
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if year < 1 || year > 9999 {
		return 0, errors.New("year out of range")
	}
	return year, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
