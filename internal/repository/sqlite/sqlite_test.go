package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmlabs-hris/worktime-go/internal/domain/attendance"
	"github.com/cmlabs-hris/worktime-go/internal/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.NewSQLiteDB(database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(context.Background(), db))
	return db
}

var testDate = time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

func sampleRecord(employeeID string, date time.Time, n int) attendance.DailyRecord {
	types := []attendance.EventType{
		attendance.EventClockIn,
		attendance.EventBreakStart,
		attendance.EventBreakEnd,
		attendance.EventClockOut,
	}
	r := attendance.DailyRecord{
		ID:         attendance.RecordID(employeeID, date),
		EmployeeID: employeeID,
		Date:       date,
	}
	for i := 0; i < n; i++ {
		r.Events = append(r.Events, attendance.ClockEvent{
			ID:        r.ID + "-" + string(types[i%4]),
			Type:      types[i%4],
			Timestamp: date.Add(time.Duration(9+i) * time.Hour).Add(123 * time.Millisecond),
			Device:    "kiosk-1",
			Location:  "HQ",
		})
	}
	return r
}

func TestMigrate_IsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Migrate(context.Background(), db))

	var version int
	require.NoError(t, db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentVersion, version)
}

func TestAttendanceRecordRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRecordRepository(newTestDB(t))

	want := sampleRecord("emp-1", testDate, 4)
	require.NoError(t, repo.Upsert(ctx, want))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want.ID, got[0].ID)
	assert.Equal(t, want.EmployeeID, got[0].EmployeeID)
	assert.True(t, want.Date.Equal(got[0].Date))
	require.Len(t, got[0].Events, 4)
	for i := range want.Events {
		assert.Equal(t, want.Events[i].ID, got[0].Events[i].ID)
		assert.Equal(t, want.Events[i].Type, got[0].Events[i].Type)
		assert.True(t, want.Events[i].Timestamp.Equal(got[0].Events[i].Timestamp))
	}
}

func TestAttendanceRecordRepository_UpsertReplacesEvents(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRecordRepository(newTestDB(t))

	require.NoError(t, repo.Upsert(ctx, sampleRecord("emp-1", testDate, 4)))
	require.NoError(t, repo.Upsert(ctx, sampleRecord("emp-1", testDate, 1)))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Events, 1)
}

func TestAttendanceRecordRepository_ListOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRecordRepository(newTestDB(t))

	require.NoError(t, repo.Upsert(ctx, sampleRecord("emp-b", testDate, 1)))
	require.NoError(t, repo.Upsert(ctx, sampleRecord("emp-a", testDate, 1)))
	require.NoError(t, repo.Upsert(ctx, sampleRecord("emp-a", testDate.AddDate(0, 0, -1), 2)))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "emp-a_2026-10-19", got[0].ID)
	assert.Equal(t, "emp-a_2026-10-20", got[1].ID)
	assert.Equal(t, "emp-b_2026-10-20", got[2].ID)
}

func TestAttendanceRecordRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewAttendanceRecordRepository(db)

	record := sampleRecord("emp-1", testDate, 2)
	require.NoError(t, repo.Upsert(ctx, record))
	require.NoError(t, repo.Delete(ctx, record.ID))
	require.NoError(t, repo.Delete(ctx, record.ID))

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM clock_events").Scan(&n))
	assert.Equal(t, 0, n)

	got, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEmployeeDirectory_ListNames(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	require.NoError(t, PutEmployee(ctx, db, "emp-1", "Budi"))
	require.NoError(t, PutEmployee(ctx, db, "emp-2", "Ani"))
	require.NoError(t, PutEmployee(ctx, db, "emp-1", "Budi Santoso"))
	_, err := db.Exec(`UPDATE employees SET deleted_at = '2026-01-01' WHERE id = 'emp-2'`)
	require.NoError(t, err)

	names, err := NewEmployeeDirectory(db).ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"emp-1": "Budi Santoso"}, names)
}

func TestNewSQLiteDB_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "worktime.db")
	db, err := database.NewSQLiteDB(path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(context.Background(), db))
	repo := NewAttendanceRecordRepository(db)
	require.NoError(t, repo.Upsert(context.Background(), sampleRecord("emp-1", testDate, 1)))
}
