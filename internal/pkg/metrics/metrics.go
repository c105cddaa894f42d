package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "worktime"

// Replication outcomes.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultDropped = "dropped"
)

// Metrics groups the attendance collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	eventsAppended  *prometheus.CounterVec
	eventsDeleted   prometheus.Counter
	recordsDeleted  prometheus.Counter
	replications    *prometheus.CounterVec
	replicationTime *prometheus.HistogramVec
	queueDepth      prometheus.Gauge
	ledgerRecords   prometheus.Gauge
	liveSubscribers prometheus.Gauge
}

// New creates the collectors on a private registry, together with the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		eventsAppended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clock_events_appended_total",
			Help:      "Clock events appended to the ledger by type.",
		}, []string{"type"}),
		eventsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clock_events_deleted_total",
			Help:      "Clock events removed through corrections.",
		}),
		recordsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "daily_records_deleted_total",
			Help:      "Daily records removed through corrections.",
		}),
		replications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replications_total",
			Help:      "Background persistence jobs by operation and result.",
		}, []string{"op", "result"}),
		replicationTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "replication_duration_seconds",
			Help:      "Latency of background persistence jobs.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"op"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "replication_queue_depth",
			Help:      "Persistence jobs waiting for a worker.",
		}),
		ledgerRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ledger_records",
			Help:      "Daily records held in memory.",
		}),
		liveSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_subscribers",
			Help:      "Open live attendance streams.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.eventsAppended,
		m.eventsDeleted,
		m.recordsDeleted,
		m.replications,
		m.replicationTime,
		m.queueDepth,
		m.ledgerRecords,
		m.liveSubscribers,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) EventAppended(eventType string) {
	if m == nil {
		return
	}
	m.eventsAppended.WithLabelValues(eventType).Inc()
}

func (m *Metrics) EventDeleted() {
	if m == nil {
		return
	}
	m.eventsDeleted.Inc()
}

func (m *Metrics) RecordDeleted() {
	if m == nil {
		return
	}
	m.recordsDeleted.Inc()
}

// ObserveReplication records one finished persistence job.
func (m *Metrics) ObserveReplication(op, result string, seconds float64) {
	if m == nil {
		return
	}
	m.replications.WithLabelValues(op, result).Inc()
	if result != ResultDropped {
		m.replicationTime.WithLabelValues(op).Observe(seconds)
	}
}

func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

func (m *Metrics) SetLedgerRecords(n int) {
	if m == nil {
		return
	}
	m.ledgerRecords.Set(float64(n))
}

func (m *Metrics) SetLiveSubscribers(n int) {
	if m == nil {
		return
	}
	m.liveSubscribers.Set(float64(n))
}
