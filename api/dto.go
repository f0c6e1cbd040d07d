/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers (and settings.Validate), not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/salary-meter/calendar"
	"github.com/warp/salary-meter/display"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// StatusDTO describes the meter as a client sees it.
type StatusDTO struct {
	Running             bool           `json:"running"`
	CalendarInitialized bool           `json:"calendarInitialized"`
	CachedYears         []int          `json:"cachedYears"`
	Frame               *display.Frame `json:"frame,omitempty"`
}

// CalendarDTO is one cached year.
type CalendarDTO struct {
	Year           int              `json:"year"`
	Entries        []calendar.Entry `json:"entries"`
	Holidays       int              `json:"holidays"`
	MakeupWorkdays int              `json:"makeupWorkdays"`
}

// RefreshResponse is returned after a successful refresh.
type RefreshResponse struct {
	Year    int `json:"year"`
	Entries int `json:"entries"`
}

// WorkdaysDTO is the workday count for one month under current settings.
type WorkdaysDTO struct {
	Year     int `json:"year"`
	Month    int `json:"month"`
	Workdays int `json:"workdays"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func toCalendarDTO(cal calendar.YearCalendar) CalendarDTO {
	return CalendarDTO{
		Year:           cal.Year(),
		Entries:        cal.Entries(),
		Holidays:       len(cal.Holidays()),
		MakeupWorkdays: len(cal.MakeupWorkdays()),
	}
}
