package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cmlabs-hris/worktime-go/internal/domain/attendance"
)

type attendanceRecordRepository struct {
	db *sql.DB
}

func NewAttendanceRecordRepository(db *sql.DB) attendance.RecordRepository {
	return &attendanceRecordRepository{db: db}
}

// Upsert implements attendance.RecordRepository.
func (r *attendanceRecordRepository) Upsert(ctx context.Context, record attendance.DailyRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO attendance_records (id, employee_id, date)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET updated_at = strftime('%Y-%m-%dT%H:%M:%SZ','now')`,
		record.ID, record.EmployeeID, record.DateKey(),
	)
	if err != nil {
		return fmt.Errorf("upsert attendance record: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM clock_events WHERE record_id = ?`, record.ID); err != nil {
		return fmt.Errorf("clear clock events: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO clock_events (id, record_id, seq, type, occurred_at, device, location)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare clock event insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range record.Events {
		_, err := stmt.ExecContext(ctx,
			e.ID, record.ID, i, string(e.Type),
			e.Timestamp.UTC().Format(time.RFC3339Nano), e.Device, e.Location,
		)
		if err != nil {
			return fmt.Errorf("insert clock event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Delete implements attendance.RecordRepository.
func (r *attendanceRecordRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM attendance_records WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete attendance record: %w", err)
	}
	return nil
}

// List implements attendance.RecordRepository.
func (r *attendanceRecordRepository) List(ctx context.Context) ([]attendance.DailyRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.employee_id, r.date,
			e.id, e.type, e.occurred_at, e.device, e.location
		FROM attendance_records r
		LEFT JOIN clock_events e ON e.record_id = r.id
		ORDER BY r.date, r.employee_id, e.seq`)
	if err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	defer rows.Close()

	var (
		records []attendance.DailyRecord
		index   = make(map[string]int)
	)

	for rows.Next() {
		var (
			id, employeeID, dateStr string
			eventID, eventType      sql.NullString
			occurredAt              sql.NullString
			device, location        sql.NullString
		)
		if err := rows.Scan(&id, &employeeID, &dateStr, &eventID, &eventType, &occurredAt, &device, &location); err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}

		i, ok := index[id]
		if !ok {
			date, err := time.Parse(attendance.DateLayout, dateStr)
			if err != nil {
				return nil, fmt.Errorf("parse record date %q: %w", dateStr, err)
			}
			i = len(records)
			index[id] = i
			records = append(records, attendance.DailyRecord{
				ID:         id,
				EmployeeID: employeeID,
				Date:       date,
			})
		}

		if !eventID.Valid {
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, occurredAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse event time %q: %w", occurredAt.String, err)
		}
		records[i].Events = append(records[i].Events, attendance.ClockEvent{
			ID:        eventID.String,
			Type:      attendance.EventType(eventType.String),
			Timestamp: ts,
			Device:    device.String,
			Location:  location.String,
		})
	}

	return records, rows.Err()
}
