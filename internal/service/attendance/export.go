package attendance

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cmlabs-hris/worktime-go/internal/domain/attendance"
)

var csvHeader = []string{
	"Record ID",
	"Employee ID",
	"Employee",
	"Date",
	"First Clock In",
	"Last Clock Out",
	"Worked (min)",
	"Worked",
	"Recorded Break (min)",
	"Scheduled Break (min)",
	"Pending Break (min)",
	"Ignored Break (min)",
	"Automatic Break",
}

// WriteCSV writes one row per computed record. Timestamps are rendered in loc.
func WriteCSV(out io.Writer, records []attendance.ComputedDailyRecord, lookup func(employeeID string) string, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	w := csv.NewWriter(out)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range records {
		name := r.EmployeeID
		if lookup != nil {
			if n := lookup(r.EmployeeID); n != "" {
				name = n
			}
		}

		first, last := boundaryEvents(r.DailyRecord)
		row := []string{
			r.ID,
			r.EmployeeID,
			name,
			r.DateKey(),
			formatEventTime(first, loc),
			formatEventTime(last, loc),
			strconv.Itoa(r.WorkedMinutes),
			formatMinutes(r.WorkedMinutes),
			strconv.Itoa(r.RecordedBreakMinutes),
			strconv.Itoa(r.ScheduledBreakMinutes),
			strconv.Itoa(r.PendingBreakMinutes),
			strconv.Itoa(r.IgnoredBreakMinutes),
			strconv.FormatBool(r.AutomaticBreakDetected),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// boundaryEvents returns the earliest clock-in and the latest clock-out of the day.
func boundaryEvents(record attendance.DailyRecord) (first, last *attendance.ClockEvent) {
	for _, e := range SortedEvents(record.Events) {
		switch e.Type {
		case attendance.EventClockIn:
			if first == nil {
				first = &e
			}
		case attendance.EventClockOut:
			last = &e
		}
	}
	return first, last
}

func formatEventTime(e *attendance.ClockEvent, loc *time.Location) string {
	if e == nil {
		return ""
	}
	return e.Timestamp.In(loc).Format(time.RFC3339)
}

func formatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
