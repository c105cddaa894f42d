package attendance

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/worktime-go/internal/domain/attendance"
	"github.com/cmlabs-hris/worktime-go/internal/pkg/metrics"
	"github.com/google/uuid"
)

// Replication operations.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// ReplicatorConfig holds the background persistence settings.
type ReplicatorConfig struct {
	WorkerCount    int           // default: 2
	QueueSize      int           // per worker, default: 256
	JobTimeout     time.Duration // default: 10 seconds
	EnqueueTimeout time.Duration // default: 2 seconds
	DeleteRetries  int           // extra attempts for a failed delete, default: 2
	RetryBackoff   time.Duration // default: 200 milliseconds
}

type replicationJob struct {
	ID       string
	Op       string
	RecordID string
	Record   attendance.DailyRecord
	QueuedAt time.Time
}

// Replicator mirrors ledger changes into the RecordRepository in the background.
// Jobs for one record always land on the same worker so they are applied in order.
// Failures are logged and counted; the ledger stays authoritative. A failed upsert is
// superseded by the next snapshot of the record, a failed delete is retried.
type Replicator struct {
	repo    attendance.RecordRepository
	metrics *metrics.Metrics
	config  ReplicatorConfig

	queues  []chan replicationJob
	pending atomic.Int64
	wg      sync.WaitGroup
	stopCh  chan struct{}
	mu      sync.RWMutex
	stopped bool
	once    sync.Once
}

// NewReplicator starts the workers. Call Stop to drain them.
func NewReplicator(repo attendance.RecordRepository, m *metrics.Metrics, cfg ReplicatorConfig) *Replicator {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 10 * time.Second
	}
	if cfg.EnqueueTimeout <= 0 {
		cfg.EnqueueTimeout = 2 * time.Second
	}
	if cfg.DeleteRetries <= 0 {
		cfg.DeleteRetries = 2
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}

	r := &Replicator{
		repo:    repo,
		metrics: m,
		config:  cfg,
		queues:  make([]chan replicationJob, cfg.WorkerCount),
		stopCh:  make(chan struct{}),
	}

	for i := range r.queues {
		r.queues[i] = make(chan replicationJob, cfg.QueueSize)
		r.wg.Add(1)
		go r.worker(i, r.queues[i])
	}

	slog.Info("Replicator started", "workers", cfg.WorkerCount, "queue_size", cfg.QueueSize)
	return r
}

// EnqueueUpsert schedules the record to be written as a whole.
func (r *Replicator) EnqueueUpsert(record attendance.DailyRecord) {
	r.enqueue(replicationJob{Op: OpUpsert, RecordID: record.ID, Record: record.Clone()})
}

// EnqueueDelete schedules the record to be removed.
func (r *Replicator) EnqueueDelete(recordID string) {
	r.enqueue(replicationJob{Op: OpDelete, RecordID: recordID})
}

// Pending returns the number of queued jobs not yet handled.
func (r *Replicator) Pending() int {
	return int(r.pending.Load())
}

func (r *Replicator) enqueue(job replicationJob) {
	job.ID = uuid.NewString()
	job.QueuedAt = time.Now()

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stopped {
		slog.Warn("Replicator stopped, dropping job", "op", job.Op, "record_id", job.RecordID)
		r.metrics.ObserveReplication(job.Op, metrics.ResultDropped, 0)
		return
	}

	queue := r.queues[r.shard(job.RecordID)]
	r.metrics.SetQueueDepth(int(r.pending.Add(1)))

	select {
	case queue <- job:
		return
	default:
	}

	// Queue full: wait a bounded time rather than writing out of order.
	timer := time.NewTimer(r.config.EnqueueTimeout)
	defer timer.Stop()

	select {
	case queue <- job:
	case <-timer.C:
		r.metrics.SetQueueDepth(int(r.pending.Add(-1)))
		r.metrics.ObserveReplication(job.Op, metrics.ResultDropped, 0)
		slog.Error("Replication queue full, dropping job", "job_id", job.ID, "op", job.Op, "record_id", job.RecordID)
	}
}

func (r *Replicator) shard(recordID string) int {
	h := fnv.New32a()
	h.Write([]byte(recordID))
	return int(h.Sum32() % uint32(len(r.queues)))
}

func (r *Replicator) worker(id int, queue chan replicationJob) {
	defer r.wg.Done()

	for {
		select {
		case job := <-queue:
			r.process(id, job)
		case <-r.stopCh:
			// drain what is already queued
			for {
				select {
				case job := <-queue:
					r.process(id, job)
				default:
					return
				}
			}
		}
	}
}

func (r *Replicator) process(workerID int, job replicationJob) {
	defer func() {
		r.metrics.SetQueueDepth(int(r.pending.Add(-1)))
	}()

	attempts := 1
	if job.Op == OpDelete {
		attempts += r.config.DeleteRetries
	}

	start := time.Now()
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			slog.Warn("Retrying replication",
				"worker", workerID,
				"job_id", job.ID,
				"op", job.Op,
				"record_id", job.RecordID,
				"attempt", attempt,
				"error", err,
			)
			time.Sleep(time.Duration(attempt-1) * r.config.RetryBackoff)
		}
		if err = r.apply(job); err == nil {
			break
		}
	}
	elapsed := time.Since(start)

	if err != nil {
		r.metrics.ObserveReplication(job.Op, metrics.ResultError, elapsed.Seconds())
		slog.Error("Replication failed",
			"worker", workerID,
			"job_id", job.ID,
			"op", job.Op,
			"record_id", job.RecordID,
			"error", err,
		)
		return
	}

	r.metrics.ObserveReplication(job.Op, metrics.ResultSuccess, elapsed.Seconds())
	slog.Debug("Replication done",
		"worker", workerID,
		"op", job.Op,
		"record_id", job.RecordID,
		"lag", time.Since(job.QueuedAt),
	)
}

func (r *Replicator) apply(job replicationJob) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.JobTimeout)
	defer cancel()

	switch job.Op {
	case OpUpsert:
		return r.repo.Upsert(ctx, job.Record)
	case OpDelete:
		return r.repo.Delete(ctx, job.RecordID)
	}
	return nil
}

// Stop rejects new jobs, waits for queued ones to finish and returns.
func (r *Replicator) Stop() {
	r.once.Do(func() {
		slog.Info("Stopping replicator...", "pending", r.Pending())
		r.mu.Lock()
		r.stopped = true
		r.mu.Unlock()

		close(r.stopCh)
		r.wg.Wait()
		slog.Info("Replicator stopped")
	})
}
