package attendance

import (
	"context"
)

// RecordRepository is the persistence collaborator for daily records.
// Records are stored as a whole, keyed by record ID.
type RecordRepository interface {
	// Upsert creates the record or replaces its events when it already exists
	Upsert(ctx context.Context, record DailyRecord) error

	// Delete removes the record and its events. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// List returns every stored record, used to hydrate the in-memory ledger
	List(ctx context.Context) ([]DailyRecord, error)
}

// EmployeeDirectory resolves employee display names. Identity management lives elsewhere.
type EmployeeDirectory interface {
	// ListNames returns employee ID -> full name for every known employee
	ListNames(ctx context.Context) (map[string]string, error)
}
