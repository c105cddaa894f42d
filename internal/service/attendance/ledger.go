package attendance

import (
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/worktime-go/internal/domain/attendance"
)

// AppendEvent adds event to the record of (employeeID, event date) and returns the
// updated collection plus the affected record. The record is created when absent.
// Event-type sequencing is not validated here; ComputeDailyRecord tolerates any order.
func AppendEvent(records []attendance.DailyRecord, employeeID string, event attendance.ClockEvent, loc *time.Location) ([]attendance.DailyRecord, attendance.DailyRecord) {
	date := attendance.CivilDate(event.Timestamp, loc)
	id := attendance.RecordID(employeeID, date)

	out := make([]attendance.DailyRecord, len(records), len(records)+1)
	copy(out, records)

	for i, r := range out {
		if r.EmployeeID == employeeID && r.Date.Equal(date) {
			updated := r.Clone()
			updated.Events = append(updated.Events, event)
			out[i] = updated
			return out, updated.Clone()
		}
	}

	created := attendance.DailyRecord{
		ID:         id,
		EmployeeID: employeeID,
		Date:       date,
		Events:     []attendance.ClockEvent{event},
	}
	out = append(out, created)
	return out, created.Clone()
}

// DeleteEvent removes one event from a record. When the record loses its last event
// it is dropped from the collection and removed is true.
func DeleteEvent(records []attendance.DailyRecord, recordID, eventID string) (out []attendance.DailyRecord, updated attendance.DailyRecord, removed bool, found bool) {
	out = make([]attendance.DailyRecord, 0, len(records))
	for _, r := range records {
		if r.ID != recordID || found {
			out = append(out, r)
			continue
		}

		idx := -1
		for i, e := range r.Events {
			if e.ID == eventID {
				idx = i
				break
			}
		}
		if idx < 0 {
			out = append(out, r)
			continue
		}

		found = true
		next := r.Clone()
		next.Events = append(next.Events[:idx], next.Events[idx+1:]...)
		if len(next.Events) == 0 {
			removed = true
			updated = next
			continue
		}
		updated = next
		out = append(out, next)
	}

	if !found {
		return records, attendance.DailyRecord{}, false, false
	}
	return out, updated.Clone(), removed, true
}

// DeleteRecord drops a whole record from the collection.
func DeleteRecord(records []attendance.DailyRecord, recordID string) ([]attendance.DailyRecord, bool) {
	out := make([]attendance.DailyRecord, 0, len(records))
	found := false
	for _, r := range records {
		if r.ID == recordID {
			found = true
			continue
		}
		out = append(out, r)
	}
	if !found {
		return records, false
	}
	return out, true
}

// Ledger is the single, sequentially updated in-memory collection of daily records.
// Writers are serialized; readers get copies.
type Ledger struct {
	mu      sync.RWMutex
	records []attendance.DailyRecord
	loc     *time.Location
}

// NewLedger creates an empty ledger whose calendar dates are taken in loc.
func NewLedger(loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.UTC
	}
	return &Ledger{loc: loc}
}

// Location returns the time zone used to assign events to calendar dates.
func (l *Ledger) Location() *time.Location {
	return l.loc
}

// Load replaces the ledger content, typically with records read from the repository.
// Duplicate (employee, date) pairs are merged so the one-record-per-day invariant holds.
func (l *Ledger) Load(records []attendance.DailyRecord) int {
	merged := make([]attendance.DailyRecord, 0, len(records))
	index := make(map[string]int, len(records))
	for _, r := range records {
		key := attendance.RecordID(r.EmployeeID, r.Date)
		if i, ok := index[key]; ok {
			merged[i].Events = append(merged[i].Events, r.Events...)
			continue
		}
		if len(r.Events) == 0 {
			continue
		}
		index[key] = len(merged)
		merged = append(merged, r.Clone())
	}

	l.mu.Lock()
	l.records = merged
	l.mu.Unlock()
	return len(merged)
}

// Append adds a fully formed event to the employee's record for the event date.
// onCommit hooks run before the lock is released, so they observe changes in the order
// they were applied.
func (l *Ledger) Append(employeeID string, event attendance.ClockEvent, onCommit ...func(record attendance.DailyRecord)) attendance.DailyRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	var record attendance.DailyRecord
	l.records, record = AppendEvent(l.records, employeeID, event, l.loc)
	for _, fn := range onCommit {
		fn(record.Clone())
	}
	return record
}

// DeleteEvent removes one event; see the package-level DeleteEvent. onCommit hooks run
// under the lock and only when the event was found.
func (l *Ledger) DeleteEvent(recordID, eventID string, onCommit ...func(updated attendance.DailyRecord, removed bool)) (attendance.DailyRecord, bool, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var (
		updated      attendance.DailyRecord
		removed, hit bool
	)
	l.records, updated, removed, hit = DeleteEvent(l.records, recordID, eventID)
	if hit {
		for _, fn := range onCommit {
			fn(updated.Clone(), removed)
		}
	}
	return updated, removed, hit
}

// DeleteRecord removes a record by ID. onCommit hooks receive the removed record under
// the lock.
func (l *Ledger) DeleteRecord(recordID string, onCommit ...func(removed attendance.DailyRecord)) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	var removed attendance.DailyRecord
	for _, r := range l.records {
		if r.ID == recordID {
			removed = r.Clone()
			break
		}
	}

	var found bool
	l.records, found = DeleteRecord(l.records, recordID)
	if found {
		for _, fn := range onCommit {
			fn(removed)
		}
	}
	return found
}

// Get returns a copy of the record with the given ID.
func (l *Ledger) Get(recordID string) (attendance.DailyRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, r := range l.records {
		if r.ID == recordID {
			return r.Clone(), true
		}
	}
	return attendance.DailyRecord{}, false
}

// Find returns a copy of the record of employeeID on date.
func (l *Ledger) Find(employeeID string, date time.Time) (attendance.DailyRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, r := range l.records {
		if r.EmployeeID == employeeID && r.Date.Equal(date) {
			return r.Clone(), true
		}
	}
	return attendance.DailyRecord{}, false
}

// Snapshot returns copies of every record accepted by keep (all records when keep is nil),
// ordered by date then employee.
func (l *Ledger) Snapshot(keep func(attendance.DailyRecord) bool) []attendance.DailyRecord {
	l.mu.RLock()
	out := make([]attendance.DailyRecord, 0, len(l.records))
	for _, r := range l.records {
		if keep == nil || keep(r) {
			out = append(out, r.Clone())
		}
	}
	l.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out
}

// Len returns the number of records held.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
