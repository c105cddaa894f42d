package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/worktime-go/internal/pkg/database"
)

// schema is idempotent. employees is owned by the identity service; the table is only
// created so a standalone deployment can resolve names.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		id          TEXT PRIMARY KEY,
		full_name   TEXT NOT NULL,
		deleted_at  TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_records (
		id           TEXT PRIMARY KEY,
		employee_id  TEXT NOT NULL,
		date         DATE NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (employee_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS clock_events (
		id           TEXT PRIMARY KEY,
		record_id    TEXT NOT NULL REFERENCES attendance_records(id) ON DELETE CASCADE,
		seq          INTEGER NOT NULL,
		type         TEXT NOT NULL CHECK (type IN ('clock-in', 'clock-out', 'break-start', 'break-end')),
		occurred_at  TIMESTAMPTZ NOT NULL,
		device       TEXT NOT NULL DEFAULT '',
		location     TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_clock_events_record ON clock_events(record_id, seq)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_records_date ON attendance_records(date)`,
}

// Migrate creates the attendance tables when they do not exist.
func Migrate(ctx context.Context, db *database.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
