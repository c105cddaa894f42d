package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cmlabs-hris/worktime-go/internal/domain/attendance"
)

type employeeDirectory struct {
	db *sql.DB
}

func NewEmployeeDirectory(db *sql.DB) attendance.EmployeeDirectory {
	return &employeeDirectory{db: db}
}

// ListNames implements attendance.EmployeeDirectory.
func (d *employeeDirectory) ListNames(ctx context.Context) (map[string]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id, full_name FROM employees WHERE deleted_at IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}

// PutEmployee inserts or renames an employee. Used to seed standalone deployments.
func PutEmployee(ctx context.Context, db *sql.DB, id, fullName string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO employees (id, full_name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET full_name = excluded.full_name, deleted_at = NULL`,
		id, fullName,
	)
	if err != nil {
		return fmt.Errorf("put employee: %w", err)
	}
	return nil
}
