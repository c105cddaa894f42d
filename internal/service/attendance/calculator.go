package attendance

import (
	"math"
	"sort"
	"time"

	"github.com/cmlabs-hris/worktime-go/internal/domain/attendance"
)

// DefaultBreakMinutes is the mandatory break quota on a scheduled-break day.
const DefaultBreakMinutes = 120

// BreakPolicy decides which weekdays carry a mandatory break and how long it is.
type BreakPolicy struct {
	Weekdays map[time.Weekday]bool
	Minutes  int
}

// DefaultBreakPolicy marks Tuesday, Wednesday and Friday (the 2nd, 3rd and 5th day of a
// Monday-start week) with a 120 minute break.
func DefaultBreakPolicy() BreakPolicy {
	return BreakPolicy{
		Weekdays: map[time.Weekday]bool{
			time.Tuesday:   true,
			time.Wednesday: true,
			time.Friday:    true,
		},
		Minutes: DefaultBreakMinutes,
	}
}

// ScheduledBreakMinutes returns the break quota for the weekday of date.
func (p BreakPolicy) ScheduledBreakMinutes(date time.Time) int {
	if p.Weekdays[date.Weekday()] {
		return p.Minutes
	}
	return 0
}

// WorkTimeCalculator turns a day's raw events into worked and break totals.
// It holds no state besides the policy and is safe for concurrent use.
type WorkTimeCalculator struct {
	policy BreakPolicy
}

func NewWorkTimeCalculator(policy BreakPolicy) *WorkTimeCalculator {
	return &WorkTimeCalculator{policy: policy}
}

// Policy returns the break policy in use.
func (c *WorkTimeCalculator) Policy() BreakPolicy {
	return c.policy
}

// SortedEvents returns the events ordered by timestamp. Ties keep insertion order.
func SortedEvents(events []attendance.ClockEvent) []attendance.ClockEvent {
	sorted := make([]attendance.ClockEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// minutesBetween rounds the interval to the nearest minute, never below zero.
func minutesBetween(from, to time.Time) int {
	d := to.Sub(from)
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Minutes()))
}

// ComputeDailyRecord derives the totals of one record. It never fails: events that arrive
// without their expected predecessor contribute nothing.
func (c *WorkTimeCalculator) ComputeDailyRecord(record attendance.DailyRecord) attendance.ComputedDailyRecord {
	events := SortedEvents(record.Events)

	var (
		openSegmentStart *time.Time
		breakStart       *time.Time
		worked           int
		recordedBreak    int
	)

	for i := range events {
		ts := events[i].Timestamp

		switch events[i].Type {
		case attendance.EventClockIn:
			openSegmentStart = &ts

		case attendance.EventBreakStart:
			if openSegmentStart != nil {
				worked += minutesBetween(*openSegmentStart, ts)
				openSegmentStart = nil
			}
			breakStart = &ts

		case attendance.EventBreakEnd:
			if breakStart != nil {
				recordedBreak += minutesBetween(*breakStart, ts)
				breakStart = nil
				openSegmentStart = &ts
			}

		case attendance.EventClockOut:
			if openSegmentStart != nil {
				worked += minutesBetween(*openSegmentStart, ts)
				openSegmentStart = nil
			}
		}
	}

	scheduled := c.policy.ScheduledBreakMinutes(record.Date)

	computed := attendance.ComputedDailyRecord{
		DailyRecord:           record.Clone(),
		RecordedBreakMinutes:  recordedBreak,
		ScheduledBreakMinutes: scheduled,
	}

	if scheduled > 0 {
		switch {
		case recordedBreak < scheduled:
			// the missing part of the quota is treated as taken but not clocked
			worked -= scheduled - recordedBreak
			if worked < 0 {
				worked = 0
			}
			computed.AutomaticBreakDetected = true
		case recordedBreak > scheduled:
			worked += recordedBreak - scheduled
		}
		computed.BreakMinutes = scheduled
	} else if recordedBreak > 0 {
		// off-policy breaks count as work; flagged for product review, see DESIGN.md
		worked += recordedBreak
		computed.IgnoredBreakMinutes = recordedBreak
	}

	computed.WorkedMinutes = worked
	computed.PendingBreakMinutes = max(0, scheduled-recordedBreak)

	return computed
}

// ComputeAll computes every record, preserving input order.
func (c *WorkTimeCalculator) ComputeAll(records []attendance.DailyRecord) []attendance.ComputedDailyRecord {
	out := make([]attendance.ComputedDailyRecord, 0, len(records))
	for _, r := range records {
		out = append(out, c.ComputeDailyRecord(r))
	}
	return out
}

// LastEvent returns the chronologically last event of the record.
func LastEvent(record attendance.DailyRecord) (attendance.ClockEvent, bool) {
	if len(record.Events) == 0 {
		return attendance.ClockEvent{}, false
	}
	sorted := SortedEvents(record.Events)
	return sorted[len(sorted)-1], true
}

// LiveAdjustedMinutes extends WorkedMinutes with the time elapsed since the last event when
// the employee is inside an open working segment today. The value is for display only.
func LiveAdjustedMinutes(computed attendance.ComputedDailyRecord, now time.Time, loc *time.Location) int {
	last, ok := LastEvent(computed.DailyRecord)
	if !ok {
		return computed.WorkedMinutes
	}
	if last.Type != attendance.EventClockIn && last.Type != attendance.EventBreakEnd {
		return computed.WorkedMinutes
	}
	if !attendance.CivilDate(now, loc).Equal(computed.Date) {
		return computed.WorkedMinutes
	}
	return computed.WorkedMinutes + minutesBetween(last.Timestamp, now)
}

// LiveStateOf classifies the employee from the last event of the day. An unmatched
// break-start keeps the employee on break until a break-end or clock-out appears.
func LiveStateOf(record attendance.DailyRecord) attendance.LiveState {
	last, ok := LastEvent(record)
	if !ok {
		return attendance.StateOff
	}
	switch last.Type {
	case attendance.EventClockIn, attendance.EventBreakEnd:
		return attendance.StateWorking
	case attendance.EventBreakStart:
		return attendance.StateOnBreak
	}
	return attendance.StateOff
}
