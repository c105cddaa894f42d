package attendance

import (
	"time"
)

// EventType is the kind of clock action an employee performed.
type EventType string

const (
	EventClockIn    EventType = "clock-in"
	EventClockOut   EventType = "clock-out"
	EventBreakStart EventType = "break-start"
	EventBreakEnd   EventType = "break-end"
)

// IsValid reports whether t is one of the four known clock actions.
func (t EventType) IsValid() bool {
	switch t {
	case EventClockIn, EventClockOut, EventBreakStart, EventBreakEnd:
		return true
	}
	return false
}

// DateLayout is the calendar date format used for record dates and bucket keys.
const DateLayout = "2006-01-02"

// MonthLayout is the bucket key format for monthly totals.
const MonthLayout = "2006-01"

// ClockEvent is a single timestamped attendance action. Immutable once created.
type ClockEvent struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	Device    string
	Location  string
}

// DailyRecord holds every event of one employee on one calendar date.
// Events keep insertion order; they are sorted only when computed.
type DailyRecord struct {
	ID         string
	EmployeeID string
	Date       time.Time // civil date, midnight UTC
	Events     []ClockEvent
}

// DateKey returns the record date formatted as YYYY-MM-DD.
func (r DailyRecord) DateKey() string {
	return r.Date.Format(DateLayout)
}

// Clone returns a copy that does not share its event slice with r.
func (r DailyRecord) Clone() DailyRecord {
	events := make([]ClockEvent, len(r.Events))
	copy(events, r.Events)
	r.Events = events
	return r
}

// ComputedDailyRecord is a DailyRecord plus the totals derived from its events.
// It is never stored.
type ComputedDailyRecord struct {
	DailyRecord

	WorkedMinutes          int
	BreakMinutes           int
	RecordedBreakMinutes   int
	ScheduledBreakMinutes  int
	PendingBreakMinutes    int
	IgnoredBreakMinutes    int
	AutomaticBreakDetected bool
}

// LiveState describes what the employee is doing according to the last event of the day.
type LiveState string

const (
	StateOff     LiveState = "off"
	StateWorking LiveState = "working"
	StateOnBreak LiveState = "on_break"
)

// PeriodTotal is one bucket (a day, a month or a year) with a summed minute count.
type PeriodTotal struct {
	Key     string
	Label   string
	Minutes int
}

// EmployeeAggregation holds the daily and monthly buckets of one employee.
type EmployeeAggregation struct {
	EmployeeID   string
	EmployeeName string
	Daily        []PeriodTotal
	Monthly      []PeriodTotal
}

// PeriodSplit classifies a period total against the standard working day.
type PeriodSplit struct {
	TotalMinutes    int
	RegularMinutes  int
	OvertimeMinutes int
	RecordedDays    int
}

// CivilDate truncates t to its calendar date in loc and returns it as midnight UTC.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// RecordID derives the stable record identifier for an employee on a date.
func RecordID(employeeID string, date time.Time) string {
	return employeeID + "_" + date.Format(DateLayout)
}
