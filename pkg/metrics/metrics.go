package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics encapsulates Prometheus instrumentation for the document store and
// services, plus lightweight aggregates for host-side snapshots.
type Metrics struct {
	registry       *prometheus.Registry
	persistTotal   prometheus.Counter
	loginTotal     *prometheus.CounterVec
	importTotal    *prometheus.CounterVec
	mutationTotal  *prometheus.CounterVec
	exportTotal    *prometheus.CounterVec
	documentBytes  prometheus.Gauge
	persistLatency prometheus.Observer

	persistCount  uint64
	mutationCount uint64
}

// New registers the core collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	persistTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "document_persists_total",
		Help: "Total whole-document writes to persistent storage",
	})

	persistLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "document_persist_seconds",
		Help:    "Latency of whole-document writes",
		Buckets: prometheus.DefBuckets,
	})

	documentBytes := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "document_size_bytes",
		Help: "Serialized size of the last persisted document",
	})

	loginTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "Login attempts by method and result",
	}, []string{"method", "result"})

	importTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "document_imports_total",
		Help: "Whole-document imports by result",
	}, []string{"result"})

	mutationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "entity_mutations_total",
		Help: "Entity writes by collection and operation",
	}, []string{"entity", "op"})

	exportTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collection_exports_total",
		Help: "Rendered collection exports by format",
	}, []string{"format"})

	registry.MustRegister(persistTotal, persistLatency, documentBytes, loginTotal, importTotal, mutationTotal, exportTotal)

	return &Metrics{
		registry:       registry,
		persistTotal:   persistTotal,
		persistLatency: persistLatency,
		documentBytes:  documentBytes,
		loginTotal:     loginTotal,
		importTotal:    importTotal,
		mutationTotal:  mutationTotal,
		exportTotal:    exportTotal,
	}
}

// Registry exposes the underlying registry so hosts can gather or serve it.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObservePersist records one whole-document write.
func (m *Metrics) ObservePersist(size int, duration time.Duration) {
	if m == nil {
		return
	}
	m.persistTotal.Inc()
	m.persistLatency.Observe(duration.Seconds())
	m.documentBytes.Set(float64(size))
	atomic.AddUint64(&m.persistCount, 1)
}

// RecordLogin counts a login attempt.
func (m *Metrics) RecordLogin(method string, ok bool) {
	if m == nil {
		return
	}
	m.loginTotal.WithLabelValues(method, resultLabel(ok)).Inc()
}

// RecordImport counts a whole-document import attempt.
func (m *Metrics) RecordImport(ok bool) {
	if m == nil {
		return
	}
	m.importTotal.WithLabelValues(resultLabel(ok)).Inc()
}

// RecordMutation counts an entity write.
func (m *Metrics) RecordMutation(entity, op string) {
	if m == nil {
		return
	}
	m.mutationTotal.WithLabelValues(entity, op).Inc()
	atomic.AddUint64(&m.mutationCount, 1)
}

// RecordExport counts a rendered collection export.
func (m *Metrics) RecordExport(format string) {
	if m == nil {
		return
	}
	m.exportTotal.WithLabelValues(format).Inc()
}

// Snapshot reports simple aggregate counts.
type Snapshot struct {
	Persists  uint64 `json:"persists"`
	Mutations uint64 `json:"mutations"`
}

// Stats returns the aggregate counters.
func (m *Metrics) Stats() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		Persists:  atomic.LoadUint64(&m.persistCount),
		Mutations: atomic.LoadUint64(&m.mutationCount),
	}
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
