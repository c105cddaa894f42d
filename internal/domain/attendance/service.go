package attendance

import (
	"context"
	"io"
)

// AttendanceService defines the clocking and reporting operations exposed over HTTP
type AttendanceService interface {
	// ClockIn appends a clock-in event to today's record of the employee
	ClockIn(ctx context.Context, req ClockRequest) (LiveStatusResponse, error)

	// ClockOut appends a clock-out event
	ClockOut(ctx context.Context, req ClockRequest) (LiveStatusResponse, error)

	// StartBreak appends a break-start event
	StartBreak(ctx context.Context, req ClockRequest) (LiveStatusResponse, error)

	// EndBreak appends a break-end event
	EndBreak(ctx context.Context, req ClockRequest) (LiveStatusResponse, error)

	// GetLiveStatus returns today's computed record and live-adjusted minutes
	GetLiveStatus(ctx context.Context, employeeID string) (LiveStatusResponse, error)

	// ListRecords returns computed records matching the filter, ordered by date then employee
	ListRecords(ctx context.Context, filter RecordFilter) (ListDailyRecordResponse, error)

	// GetRecord returns one computed record by ID
	GetRecord(ctx context.Context, id string) (DailyRecordResponse, error)

	// DeleteEvent removes a single event; the record disappears with its last event
	DeleteEvent(ctx context.Context, req DeleteEventRequest) error

	// DeleteRecord removes a whole record (operator path)
	DeleteRecord(ctx context.Context, id string) error

	// GetSummary aggregates computed records into daily, monthly and yearly totals
	GetSummary(ctx context.Context, filter RecordFilter) (SummaryResponse, error)

	// ExportRecords writes the computed records matching the filter as CSV
	ExportRecords(ctx context.Context, filter RecordFilter, w io.Writer) error
}
