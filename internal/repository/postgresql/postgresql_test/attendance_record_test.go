package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/worktime-go/internal/domain/attendance"
	"github.com/cmlabs-hris/worktime-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent(t *testing.T, typ attendance.EventType, ts time.Time) attendance.ClockEvent {
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return attendance.ClockEvent{ID: id.String(), Type: typ, Timestamp: ts, Device: "kiosk-1", Location: "HQ"}
}

func TestAttendanceRecordRepository_UpsertListDelete(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	repo := postgresql.NewAttendanceRecordRepository(db)

	date := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	record := attendance.DailyRecord{
		ID:         attendance.RecordID("emp-1", date),
		EmployeeID: "emp-1",
		Date:       date,
		Events: []attendance.ClockEvent{
			newEvent(t, attendance.EventClockIn, date.Add(9*time.Hour)),
		},
	}
	require.NoError(t, repo.Upsert(ctx, record))

	// second upsert replaces the event set
	record.Events = append(record.Events, newEvent(t, attendance.EventClockOut, date.Add(17*time.Hour)))
	require.NoError(t, repo.Upsert(ctx, record))

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record.ID, records[0].ID)
	assert.True(t, date.Equal(records[0].Date))
	require.Len(t, records[0].Events, 2)
	assert.Equal(t, attendance.EventClockIn, records[0].Events[0].Type)
	assert.Equal(t, "kiosk-1", records[0].Events[0].Device)
	assert.True(t, record.Events[1].Timestamp.Equal(records[0].Events[1].Timestamp))

	require.NoError(t, repo.Delete(ctx, record.ID))
	require.NoError(t, repo.Delete(ctx, record.ID), "deleting a missing record is not an error")

	records, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestEmployeeDirectory_ListNames(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	_, err := db.Exec(ctx, `
		INSERT INTO employees (id, full_name, deleted_at) VALUES
			('emp-1', 'Budi Santoso', NULL),
			('emp-2', 'Former Employee', NOW())
	`)
	require.NoError(t, err)

	names, err := postgresql.NewEmployeeDirectory(db).ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"emp-1": "Budi Santoso"}, names)
}
