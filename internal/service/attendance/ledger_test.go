package attendance

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/worktime-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendEvent_CreatesRecordForNewDate(t *testing.T) {
	event := ev("e1", attendance.EventClockIn, at(monday, "09:00"))

	out, record := AppendEvent(nil, "emp-1", event, time.UTC)

	require.Len(t, out, 1)
	assert.Equal(t, "emp-1_2026-10-19", record.ID)
	assert.Equal(t, "emp-1", record.EmployeeID)
	assert.Equal(t, monday, record.Date)
	assert.Equal(t, []attendance.ClockEvent{event}, record.Events)
}

func TestAppendEvent_AppendsToExistingRecord(t *testing.T) {
	records, _ := AppendEvent(nil, "emp-1", ev("e1", attendance.EventClockIn, at(monday, "09:00")), time.UTC)
	records, _ = AppendEvent(records, "emp-2", ev("e2", attendance.EventClockIn, at(monday, "09:05")), time.UTC)

	out, record := AppendEvent(records, "emp-1", ev("e3", attendance.EventClockOut, at(monday, "17:00")), time.UTC)

	require.Len(t, out, 2)
	require.Len(t, record.Events, 2)
	assert.Equal(t, "e1", record.Events[0].ID)
	assert.Equal(t, "e3", record.Events[1].ID)
}

func TestAppendEvent_DoesNotMutateInput(t *testing.T) {
	records, _ := AppendEvent(nil, "emp-1", ev("e1", attendance.EventClockIn, at(monday, "09:00")), time.UTC)

	out, _ := AppendEvent(records, "emp-1", ev("e2", attendance.EventClockOut, at(monday, "17:00")), time.UTC)

	assert.Len(t, records[0].Events, 1)
	assert.Len(t, out[0].Events, 2)
}

func TestAppendEvent_NextDayGetsOwnRecord(t *testing.T) {
	records, _ := AppendEvent(nil, "emp-1", ev("e1", attendance.EventClockIn, at(monday, "22:00")), time.UTC)

	// an overnight shift is split by calendar date
	out, record := AppendEvent(records, "emp-1", ev("e2", attendance.EventClockOut, at(tuesday, "02:00")), time.UTC)

	require.Len(t, out, 2)
	assert.Equal(t, tuesday, record.Date)
	assert.Len(t, record.Events, 1)
}

func TestAppendEvent_UsesLocationForCalendarDate(t *testing.T) {
	wib := time.FixedZone("WIB", 7*60*60)
	// 20:00 UTC on Monday is 03:00 on Tuesday in WIB
	ts := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)

	_, record := AppendEvent(nil, "emp-1", ev("e1", attendance.EventClockIn, ts), wib)

	assert.Equal(t, tuesday, record.Date)
	assert.Equal(t, "emp-1_2026-10-20", record.ID)
}

func TestDeleteEvent(t *testing.T) {
	records, _ := AppendEvent(nil, "emp-1", ev("e1", attendance.EventClockIn, at(monday, "09:00")), time.UTC)
	records, _ = AppendEvent(records, "emp-1", ev("e2", attendance.EventClockOut, at(monday, "17:00")), time.UTC)
	id := attendance.RecordID("emp-1", monday)

	t.Run("removes one event", func(t *testing.T) {
		out, updated, removed, found := DeleteEvent(records, id, "e2")
		require.True(t, found)
		assert.False(t, removed)
		require.Len(t, out, 1)
		require.Len(t, updated.Events, 1)
		assert.Equal(t, "e1", updated.Events[0].ID)
		assert.Len(t, records[0].Events, 2, "input must not change")
	})

	t.Run("drops the record with its last event", func(t *testing.T) {
		out, _, _, _ := DeleteEvent(records, id, "e2")
		out, updated, removed, found := DeleteEvent(out, id, "e1")
		require.True(t, found)
		assert.True(t, removed)
		assert.Empty(t, out)
		assert.Empty(t, updated.Events)
	})

	t.Run("unknown event", func(t *testing.T) {
		out, _, removed, found := DeleteEvent(records, id, "missing")
		assert.False(t, found)
		assert.False(t, removed)
		assert.Equal(t, records, out)
	})

	t.Run("unknown record", func(t *testing.T) {
		_, _, _, found := DeleteEvent(records, "emp-9_2026-10-19", "e1")
		assert.False(t, found)
	})
}

func TestDeleteRecord(t *testing.T) {
	records, _ := AppendEvent(nil, "emp-1", ev("e1", attendance.EventClockIn, at(monday, "09:00")), time.UTC)
	records, _ = AppendEvent(records, "emp-1", ev("e2", attendance.EventClockIn, at(tuesday, "09:00")), time.UTC)

	out, found := DeleteRecord(records, attendance.RecordID("emp-1", monday))
	require.True(t, found)
	require.Len(t, out, 1)
	assert.Equal(t, tuesday, out[0].Date)
	assert.Len(t, records, 2)

	_, found = DeleteRecord(records, "nope")
	assert.False(t, found)
}

func TestLedger_AppendAndFind(t *testing.T) {
	l := NewLedger(time.UTC)

	l.Append("emp-1", ev("e1", attendance.EventClockIn, at(monday, "09:00")))
	l.Append("emp-1", ev("e2", attendance.EventClockOut, at(monday, "17:00")))

	record, ok := l.Find("emp-1", monday)
	require.True(t, ok)
	assert.Len(t, record.Events, 2)

	byID, ok := l.Get(record.ID)
	require.True(t, ok)
	assert.Equal(t, record, byID)

	_, ok = l.Find("emp-1", tuesday)
	assert.False(t, ok)
	assert.Equal(t, 1, l.Len())
}

func TestLedger_ReturnsCopies(t *testing.T) {
	l := NewLedger(time.UTC)
	l.Append("emp-1", ev("e1", attendance.EventClockIn, at(monday, "09:00")))

	record, _ := l.Find("emp-1", monday)
	record.Events[0].ID = "tampered"

	again, _ := l.Find("emp-1", monday)
	assert.Equal(t, "e1", again.Events[0].ID)
}

func TestLedger_Load_MergesDuplicatesAndSkipsEmpty(t *testing.T) {
	l := NewLedger(time.UTC)

	n := l.Load([]attendance.DailyRecord{
		dayRecord("emp-1", monday, ev("e1", attendance.EventClockIn, at(monday, "09:00"))),
		dayRecord("emp-1", monday, ev("e2", attendance.EventClockOut, at(monday, "17:00"))),
		dayRecord("emp-2", monday),
	})

	assert.Equal(t, 1, n)
	record, ok := l.Find("emp-1", monday)
	require.True(t, ok)
	assert.Len(t, record.Events, 2)
}

func TestLedger_SnapshotOrderAndFilter(t *testing.T) {
	l := NewLedger(time.UTC)
	l.Append("emp-b", ev("e1", attendance.EventClockIn, at(tuesday, "09:00")))
	l.Append("emp-b", ev("e2", attendance.EventClockIn, at(monday, "09:00")))
	l.Append("emp-a", ev("e3", attendance.EventClockIn, at(monday, "09:00")))

	all := l.Snapshot(nil)
	require.Len(t, all, 3)
	assert.Equal(t, "emp-a_2026-10-19", all[0].ID)
	assert.Equal(t, "emp-b_2026-10-19", all[1].ID)
	assert.Equal(t, "emp-b_2026-10-20", all[2].ID)

	onlyB := l.Snapshot(func(r attendance.DailyRecord) bool { return r.EmployeeID == "emp-b" })
	assert.Len(t, onlyB, 2)
}

func TestLedger_DeleteEventAndRecord(t *testing.T) {
	l := NewLedger(time.UTC)
	rec := l.Append("emp-1", ev("e1", attendance.EventClockIn, at(monday, "09:00")))
	l.Append("emp-1", ev("e2", attendance.EventClockOut, at(monday, "17:00")))

	updated, removed, hit := l.DeleteEvent(rec.ID, "e1")
	require.True(t, hit)
	assert.False(t, removed)
	assert.Len(t, updated.Events, 1)

	assert.True(t, l.DeleteRecord(rec.ID))
	assert.False(t, l.DeleteRecord(rec.ID))
	assert.Equal(t, 0, l.Len())
}

// Concurrent appends must never lose an event
func TestLedger_ConcurrentAppends(t *testing.T) {
	l := NewLedger(time.UTC)
	const employees, perEmployee = 8, 50

	var wg sync.WaitGroup
	for e := 0; e < employees; e++ {
		wg.Add(1)
		go func(e int) {
			defer wg.Done()
			employeeID := fmt.Sprintf("emp-%d", e)
			for i := 0; i < perEmployee; i++ {
				l.Append(employeeID, ev(fmt.Sprintf("%d-%d", e, i), attendance.EventClockIn, at(monday, "09:00").Add(time.Duration(i)*time.Second)))
			}
		}(e)
	}
	wg.Wait()

	snapshot := l.Snapshot(nil)
	require.Len(t, snapshot, employees)
	for _, r := range snapshot {
		assert.Len(t, r.Events, perEmployee)
	}
}

func TestLedger_CommitHooksSeeChangesInOrder(t *testing.T) {
	l := NewLedger(time.UTC)

	var (
		mu   sync.Mutex
		seen []int
	)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				id := fmt.Sprintf("e%d-%d", g, i)
				l.Append("emp-1", ev(id, attendance.EventClockIn, at(monday, "09:00")), func(r attendance.DailyRecord) {
					mu.Lock()
					seen = append(seen, len(r.Events))
					mu.Unlock()
				})
			}
		}(g)
	}
	wg.Wait()

	require.Len(t, seen, 80)
	for i, n := range seen {
		assert.Equal(t, i+1, n)
	}

	rec, ok := l.Find("emp-1", monday)
	require.True(t, ok)

	var removed attendance.DailyRecord
	require.True(t, l.DeleteRecord(rec.ID, func(r attendance.DailyRecord) { removed = r }))
	assert.Equal(t, rec.ID, removed.ID)
	assert.Len(t, removed.Events, 80)

	called := false
	assert.False(t, l.DeleteRecord(rec.ID, func(attendance.DailyRecord) { called = true }))
	assert.False(t, called)
}
