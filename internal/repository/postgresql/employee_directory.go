package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/worktime-go/internal/domain/attendance"
	"github.com/cmlabs-hris/worktime-go/internal/pkg/database"
)

type employeeDirectory struct {
	db *database.DB
}

// ListNames implements attendance.EmployeeDirectory.
func (d *employeeDirectory) ListNames(ctx context.Context) (map[string]string, error) {
	q := GetQuerier(ctx, d.db)

	rows, err := q.Query(ctx, `SELECT id, full_name FROM employees WHERE deleted_at IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		names[id] = name
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employees: %w", err)
	}

	return names, nil
}

func NewEmployeeDirectory(db *database.DB) attendance.EmployeeDirectory {
	return &employeeDirectory{
		db: db,
	}
}
