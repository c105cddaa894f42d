package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.EventAppended("clock-in")
	m.EventAppended("clock-in")
	m.EventAppended("clock-out")
	m.ObserveReplication("upsert", ResultSuccess, 0.01)
	m.ObserveReplication("upsert", ResultDropped, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.eventsAppended.WithLabelValues("clock-in")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsAppended.WithLabelValues("clock-out")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.replications.WithLabelValues("upsert", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.replications.WithLabelValues("upsert", ResultDropped)))
}

func TestMetrics_Gauges(t *testing.T) {
	m := New()

	m.SetQueueDepth(7)
	m.SetLedgerRecords(3)
	m.SetLiveSubscribers(2)

	assert.Equal(t, 7.0, testutil.ToFloat64(m.queueDepth))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ledgerRecords))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.liveSubscribers))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.EventAppended("clock-in")
		m.EventDeleted()
		m.RecordDeleted()
		m.ObserveReplication("delete", ResultError, 1)
		m.SetQueueDepth(1)
		m.SetLedgerRecords(1)
		m.SetLiveSubscribers(1)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.EventDeleted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "worktime_clock_events_deleted_total 1"))
}
