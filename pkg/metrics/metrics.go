package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CheckoutMetrics holds the counters and histograms for the checkout flow.
type CheckoutMetrics struct {
	Checkouts *prometheus.CounterVec
	Charged   prometheus.Counter
	Duration  prometheus.Histogram
}

// NewCheckoutMetrics creates and registers checkout metrics on reg.
// If reg is nil, the default registerer is used.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Name:      "requests_total",
		Help:      "Total number of checkout attempts by outcome.",
	}, []string{"outcome"})

	charged := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "checkout",
		Name:      "amount_minor_units_total",
		Help:      "Sum of successfully charged amounts in minor currency units.",
	})

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "checkout",
		Name:      "duration_seconds",
		Help:      "End-to-end checkout duration in seconds.",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	reg.MustRegister(checkouts, charged, duration)

	return &CheckoutMetrics{
		Checkouts: checkouts,
		Charged:   charged,
		Duration:  duration,
	}
}

// ObserveOutcome records one finished checkout attempt.
func (m *CheckoutMetrics) ObserveOutcome(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(outcome).Inc()
	m.Duration.Observe(seconds)
}

// AddCharged records a successfully charged amount.
func (m *CheckoutMetrics) AddCharged(amountMinor int64) {
	if m == nil {
		return
	}
	m.Charged.Add(float64(amountMinor))
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
