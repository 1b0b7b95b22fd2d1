package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-коллекторов сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration  *prometheus.HistogramVec
	DBQueryErrors    *prometheus.CounterVec
	DBOpenConns      *prometheus.GaugeVec
	DBInUseConns     *prometheus.GaugeVec
	DBIdleConns      *prometheus.GaugeVec
	DBWaitCount      *prometheus.GaugeVec
	DBWaitDurationMs *prometheus.GaugeVec

	ScopeLockWait    *prometheus.HistogramVec
	ScopeLockTimeout *prometheus.CounterVec

	serviceName string
}

// New регистрирует метрики в глобальном реестре prometheus
func New(serviceName string) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, serviceName)
}

// NewWithRegistry регистрирует метрики в указанном реестре (используется в тестах)
func NewWithRegistry(reg prometheus.Registerer, serviceName string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		serviceName: serviceName,

		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "route", "status"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "route"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query latency",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"service", "operation"}),

		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of failed database queries",
		}, []string{"service", "operation"}),

		DBOpenConns: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_open_connections",
			Help: "Number of established connections",
		}, []string{"service"}),

		DBInUseConns: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_in_use_connections",
			Help: "Number of connections currently in use",
		}, []string{"service"}),

		DBIdleConns: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_idle_connections",
			Help: "Number of idle connections",
		}, []string{"service"}),

		DBWaitCount: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_wait_count",
			Help: "Total number of connections waited for",
		}, []string{"service"}),

		DBWaitDurationMs: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_wait_duration_ms",
			Help: "Total time blocked waiting for a new connection",
		}, []string{"service"}),

		ScopeLockWait: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "booking_scope_lock_wait_seconds",
			Help:    "Time spent waiting for an employee/date serialization scope",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .25, .5, 1, 2.5},
		}, []string{"service"}),

		ScopeLockTimeout: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_scope_lock_timeouts_total",
			Help: "Number of scope acquisitions abandoned because of a deadline",
		}, []string{"service"}),
	}
}

// ServiceName возвращает имя сервиса, которым размечаются метрики
func (m *Metrics) ServiceName() string {
	return m.serviceName
}

// ObserveScopeWait фиксирует время ожидания блокировки области бронирования
func (m *Metrics) ObserveScopeWait(d time.Duration, acquired bool) {
	m.ScopeLockWait.WithLabelValues(m.serviceName).Observe(d.Seconds())
	if !acquired {
		m.ScopeLockTimeout.WithLabelValues(m.serviceName).Inc()
	}
}
