package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/worktime-go/internal/domain/attendance"
	"github.com/cmlabs-hris/worktime-go/internal/pkg/database"
	"github.com/cmlabs-hris/worktime-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTransaction_RollsBackRepositoryWrites(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	repo := postgresql.NewAttendanceRecordRepository(db)

	date := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)
	record := attendance.DailyRecord{
		ID:         attendance.RecordID("emp-1", date),
		EmployeeID: "emp-1",
		Date:       date,
		Events:     []attendance.ClockEvent{newEvent(t, attendance.EventClockIn, date.Add(8*time.Hour))},
	}

	errAbort := errors.New("abort")
	err := postgresql.WithTransaction(ctx, db, func(ctx context.Context, q database.Querier) error {
		// joins the outer transaction through ctx
		require.NoError(t, repo.Upsert(ctx, record))

		records, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 1)
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	records, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}
