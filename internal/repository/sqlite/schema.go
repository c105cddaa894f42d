package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

const currentVersion = 1

// Migrate brings the schema to the current version, tracked in PRAGMA user_version.
func Migrate(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := migrateV1(ctx, db); err != nil {
			return err
		}
	}

	_, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func migrateV1(ctx context.Context, db *sql.DB) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS employees (
		id          TEXT PRIMARY KEY,
		full_name   TEXT NOT NULL,
		deleted_at  TEXT
	);

	CREATE TABLE IF NOT EXISTS attendance_records (
		id           TEXT PRIMARY KEY,
		employee_id  TEXT NOT NULL,
		date         TEXT NOT NULL,
		created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		UNIQUE(employee_id, date)
	);

	CREATE TABLE IF NOT EXISTS clock_events (
		id           TEXT PRIMARY KEY,
		record_id    TEXT NOT NULL REFERENCES attendance_records(id) ON DELETE CASCADE,
		seq          INTEGER NOT NULL,
		type         TEXT NOT NULL,
		occurred_at  TEXT NOT NULL,
		device       TEXT NOT NULL DEFAULT '',
		location     TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_clock_events_record ON clock_events(record_id, seq);
	CREATE INDEX IF NOT EXISTS idx_attendance_records_date ON attendance_records(date);
	`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("migrate v1: %w", err)
	}
	return nil
}
