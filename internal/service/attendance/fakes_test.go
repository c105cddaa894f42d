package attendance

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/cmlabs-hris/worktime-go/internal/domain/attendance"
)

var errStoreDown = errors.New("store down")

// memoryRepo is an in-memory RecordRepository for service tests.
type memoryRepo struct {
	mu       sync.Mutex
	records  map[string]attendance.DailyRecord
	upserts  []string
	deletes  []string
	failNext bool
}

func newMemoryRepo(records ...attendance.DailyRecord) *memoryRepo {
	r := &memoryRepo{records: make(map[string]attendance.DailyRecord)}
	for _, rec := range records {
		r.records[rec.ID] = rec.Clone()
	}
	return r
}

func (r *memoryRepo) Upsert(ctx context.Context, record attendance.DailyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return errStoreDown
	}
	r.records[record.ID] = record.Clone()
	r.upserts = append(r.upserts, record.ID)
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return errStoreDown
	}
	delete(r.records, id)
	r.deletes = append(r.deletes, id)
	return nil
}

func (r *memoryRepo) List(ctx context.Context) ([]attendance.DailyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return nil, errStoreDown
	}
	out := make([]attendance.DailyRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepo) get(id string) (attendance.DailyRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	return rec, ok
}

type staticDirectory struct {
	names map[string]string
	err   error
}

func (d staticDirectory) ListNames(ctx context.Context) (map[string]string, error) {
	if d.err != nil {
		return nil, d.err
	}
	out := make(map[string]string, len(d.names))
	for k, v := range d.names {
		out[k] = v
	}
	return out, nil
}
