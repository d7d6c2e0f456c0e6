package observability

import (
	"time"

	"github.com/holzmann/marketpay-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the marketplace backend.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	paymentsTotal   *prometheus.CounterVec
	paymentVolume   *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketpay_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpay_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpay_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpay_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		paymentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpay_payments_total",
				Help: "Total payment attempts by routing path and outcome.",
			},
			[]string{"route", "outcome"},
		),
		paymentVolume: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpay_payment_volume_minor_units",
				Help: "Successfully charged volume in minor currency units.",
			},
			[]string{"currency"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrPayment counts one payment attempt. route is "direct" (destination
// charge) or "separate" (charge+transfer); outcome is "success" or "error".
func (m *Metrics) IncrPayment(route, outcome string) {
	m.paymentsTotal.WithLabelValues(route, outcome).Inc()
}

// AddPaymentVolume adds a successfully charged amount to the volume counter.
func (m *Metrics) AddPaymentVolume(currency string, amount int64) {
	m.paymentVolume.WithLabelValues(currency).Add(float64(amount))
}

// PaymentsSnapshot returns a cumulative summary suitable for the
// GET /v1/metrics/payments endpoint.
func (m *Metrics) PaymentsSnapshot() *domain.PaymentsMetrics {
	directOK := getCounterValue(m.paymentsTotal, "direct", "success")
	directErr := getCounterValue(m.paymentsTotal, "direct", "error")
	separateOK := getCounterValue(m.paymentsTotal, "separate", "success")
	separateErr := getCounterValue(m.paymentsTotal, "separate", "error")

	total := directOK + directErr + separateOK + separateErr
	errorRate := float64(0)
	if total > 0 {
		errorRate = (directErr + separateErr) / total
	}

	catalogHits := getCounterValue(m.cacheHits, "catalog")
	catalogMisses := getCounterValue(m.cacheMisses, "catalog")
	cacheHitRate := float64(0)
	if catalogHits+catalogMisses > 0 {
		cacheHitRate = catalogHits / (catalogHits + catalogMisses)
	}

	return &domain.PaymentsMetrics{
		TotalAttempts:    int64(total),
		DirectCharges:    int64(directOK),
		SeparateCharges:  int64(separateOK),
		ErrorRate:        errorRate,
		VolumeEur:        int64(getCounterValue(m.paymentVolume, "eur")),
		CatalogCacheRate: cacheHitRate,
		Period:           "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for
// the given label values.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
