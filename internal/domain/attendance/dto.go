package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/worktime-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// CLOCK DTOs
// ========================================

// ClockRequest is the inbound payload of clock-in, clock-out, break-start and break-end.
// EmployeeID comes from the access token, never from the body.
type ClockRequest struct {
	EmployeeID string `json:"-"`
	Device     string `json:"device"`
	Location   string `json:"location"`
}

func (r *ClockRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if len(r.Device) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "device",
			Message: "device must not exceed 100 characters",
		})
	}

	if len(r.Location) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "location must not exceed 255 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// DeleteEventRequest removes one event from a record (correction path).
type DeleteEventRequest struct {
	RecordID string `json:"-"`
	EventID  string `json:"-"`
}

func (r *DeleteEventRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RecordID) {
		errs = append(errs, validator.ValidationError{
			Field:   "record_id",
			Message: "record_id is required",
		})
	}

	if validator.IsEmpty(r.EventID) {
		errs = append(errs, validator.ValidationError{
			Field:   "event_id",
			Message: "event_id is required",
		})
	} else if !validator.IsValidUUID(r.EventID) {
		errs = append(errs, validator.ValidationError{
			Field:   "event_id",
			Message: "event_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// QUERY DTOs
// ========================================

// RecordFilter narrows computed records and summaries. Dates are inclusive, YYYY-MM-DD;
// Month (YYYY-MM) combines with the date bounds.
type RecordFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"`
	EndDate    *string `json:"end_date,omitempty"`
	Month      *string `json:"month,omitempty"`
}

func (f *RecordFilter) Validate() error {
	var errs validator.ValidationErrors

	var start, end time.Time
	var hasStart, hasEnd bool

	if f.StartDate != nil && *f.StartDate != "" {
		if start, hasStart = validator.IsValidDate(*f.StartDate); !hasStart {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if end, hasEnd = validator.IsValidDate(*f.EndDate); !hasEnd {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.Month != nil && *f.Month != "" {
		if _, ok := validator.IsValidMonth(*f.Month); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "month",
				Message: "month must be in YYYY-MM format",
			})
		}
	}

	if hasStart && hasEnd && start.After(end) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: ErrInvalidDateRange.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Matches reports whether a record falls inside the filter.
func (f RecordFilter) Matches(r DailyRecord) bool {
	if f.EmployeeID != nil && *f.EmployeeID != "" && r.EmployeeID != *f.EmployeeID {
		return false
	}
	key := r.DateKey()
	if f.StartDate != nil && *f.StartDate != "" && key < *f.StartDate {
		return false
	}
	if f.EndDate != nil && *f.EndDate != "" && key > *f.EndDate {
		return false
	}
	if f.Month != nil && *f.Month != "" && !strings.HasPrefix(key, *f.Month+"-") {
		return false
	}
	return true
}

// ========================================
// RESPONSE DTOs
// ========================================

type ClockEventResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Device    string `json:"device,omitempty"`
	Location  string `json:"location,omitempty"`
}

type DailyRecordResponse struct {
	ID                     string               `json:"id"`
	EmployeeID             string               `json:"employee_id"`
	Date                   string               `json:"date"`
	Events                 []ClockEventResponse `json:"events"`
	WorkedMinutes          int                  `json:"worked_minutes"`
	WorkedHours            decimal.Decimal      `json:"worked_hours"`
	BreakMinutes           int                  `json:"break_minutes"`
	RecordedBreakMinutes   int                  `json:"recorded_break_minutes"`
	ScheduledBreakMinutes  int                  `json:"scheduled_break_minutes"`
	PendingBreakMinutes    int                  `json:"pending_break_minutes"`
	IgnoredBreakMinutes    int                  `json:"ignored_break_minutes"`
	AutomaticBreakDetected bool                 `json:"automatic_break_detected"`
}

type ListDailyRecordResponse struct {
	TotalCount int                   `json:"total_count"`
	Records    []DailyRecordResponse `json:"records"`
}

// LiveStatusResponse is today's record for one employee plus the "right now" total.
type LiveStatusResponse struct {
	EmployeeID        string               `json:"employee_id"`
	Date              string               `json:"date"`
	State             LiveState            `json:"state"`
	LiveWorkedMinutes int                  `json:"live_worked_minutes"`
	LiveWorkedHours   decimal.Decimal      `json:"live_worked_hours"`
	LastEvent         *ClockEventResponse  `json:"last_event,omitempty"`
	Record            *DailyRecordResponse `json:"record,omitempty"`
	AsOf              string               `json:"as_of"`
}

type PeriodTotalResponse struct {
	Key             string          `json:"key"`
	Label           string          `json:"label"`
	Minutes         int             `json:"minutes"`
	Hours           decimal.Decimal `json:"hours"`
	RegularMinutes  int             `json:"regular_minutes"`
	OvertimeMinutes int             `json:"overtime_minutes"`
	RecordedDays    int             `json:"recorded_days"`
}

type EmployeeSummaryResponse struct {
	EmployeeID   string                `json:"employee_id"`
	EmployeeName string                `json:"employee_name"`
	Daily        []PeriodTotalResponse `json:"daily"`
	Monthly      []PeriodTotalResponse `json:"monthly"`
	Yearly       []PeriodTotalResponse `json:"yearly"`
}

type SummaryResponse struct {
	StandardDayMinutes int                       `json:"standard_day_minutes"`
	Employees          []EmployeeSummaryResponse `json:"employees"`
}

type StreamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// MinutesToHours converts a minute count to hours rounded to two decimals.
func MinutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60)).Round(2)
}
