package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/worktime-go/internal/domain/attendance"
	"github.com/cmlabs-hris/worktime-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRecordRepository struct {
	db *database.DB
}

// Upsert implements attendance.RecordRepository.
// The record row is created or touched and its events are replaced as a whole.
func (r *attendanceRecordRepository) Upsert(ctx context.Context, record attendance.DailyRecord) error {
	return WithTransaction(ctx, r.db, func(ctx context.Context, tx database.Querier) error {
		query := `
			INSERT INTO attendance_records (id, employee_id, date)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET updated_at = NOW()
		`
		if _, err := tx.Exec(ctx, query, record.ID, record.EmployeeID, record.Date); err != nil {
			return fmt.Errorf("failed to upsert attendance record: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM clock_events WHERE record_id = $1`, record.ID); err != nil {
			return fmt.Errorf("failed to clear clock events: %w", err)
		}

		if len(record.Events) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for i, e := range record.Events {
			batch.Queue(`
				INSERT INTO clock_events (id, record_id, seq, type, occurred_at, device, location)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, e.ID, record.ID, i, string(e.Type), e.Timestamp, e.Device, e.Location)
		}

		results := tx.SendBatch(ctx, batch)
		for range record.Events {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("failed to insert clock event: %w", err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to close clock event batch: %w", err)
		}

		return nil
	})
}

// Delete implements attendance.RecordRepository.
func (r *attendanceRecordRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM attendance_records WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete attendance record: %w", err)
	}
	return nil
}

// List implements attendance.RecordRepository.
func (r *attendanceRecordRepository) List(ctx context.Context) ([]attendance.DailyRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT r.id, r.employee_id, r.date,
			   e.id, e.type, e.occurred_at, e.device, e.location
		FROM attendance_records r
		LEFT JOIN clock_events e ON e.record_id = r.id
		ORDER BY r.date, r.employee_id, e.seq
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var (
		records []attendance.DailyRecord
		index   = make(map[string]int)
	)

	for rows.Next() {
		var (
			id, employeeID string
			date           time.Time
			eventID        *string
			eventType      *string
			occurredAt     *time.Time
			device         *string
			location       *string
		)
		if err := rows.Scan(&id, &employeeID, &date, &eventID, &eventType, &occurredAt, &device, &location); err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}

		i, ok := index[id]
		if !ok {
			i = len(records)
			index[id] = i
			records = append(records, attendance.DailyRecord{
				ID:         id,
				EmployeeID: employeeID,
				Date:       time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
			})
		}

		if eventID == nil {
			continue
		}
		records[i].Events = append(records[i].Events, attendance.ClockEvent{
			ID:        *eventID,
			Type:      attendance.EventType(deref(eventType)),
			Timestamp: occurredAt.UTC(),
			Device:    deref(device),
			Location:  deref(location),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance records: %w", err)
	}

	return records, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func NewAttendanceRecordRepository(db *database.DB) attendance.RecordRepository {
	return &attendanceRecordRepository{
		db: db,
	}
}
