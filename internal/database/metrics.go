package database

import (
	"database/sql"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports query timings and pool gauges to Prometheus
type Metrics struct {
	queryDuration *prometheus.HistogramVec
	queryErrors   *prometheus.CounterVec
	pool          atomic.Pointer[sql.DB]
}

// NewMetrics registers the database collectors on reg. A nil reg gets a private registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vidtube_db_query_duration_seconds",
				Help:    "Database query duration in seconds, by statement type.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		queryErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vidtube_db_query_errors_total",
				Help: "Database statements that returned an error, by statement type.",
			},
			[]string{"type"},
		),
	}

	reg.MustRegister(
		m.queryDuration,
		m.queryErrors,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "vidtube_db_connections_in_use",
			Help: "Number of connections currently in use.",
		}, func() float64 { return float64(m.stats().InUse) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "vidtube_db_connections_idle",
			Help: "Number of idle connections.",
		}, func() float64 { return float64(m.stats().Idle) }),
	)

	return m
}

// RecordQuery observes one statement
func (m *Metrics) RecordQuery(queryType string, duration time.Duration, err error) {
	m.queryDuration.WithLabelValues(queryType).Observe(duration.Seconds())
	if err != nil {
		m.queryErrors.WithLabelValues(queryType).Inc()
	}
}

func (m *Metrics) watchPool(db *sql.DB) {
	m.pool.Store(db)
}

func (m *Metrics) stats() sql.DBStats {
	if db := m.pool.Load(); db != nil {
		return db.Stats()
	}
	return sql.DBStats{}
}
