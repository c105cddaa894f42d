package attendance

import "errors"

// Attendance domain errors. The computation core never returns these; they only
// surface from lookups on the HTTP side.
var (
	ErrRecordNotFound   = errors.New("attendance record not found")
	ErrEventNotFound    = errors.New("clock event not found")
	ErrEmployeeRequired = errors.New("employee_id is required")
	ErrInvalidDateRange = errors.New("start_date must not be after end_date")
)
