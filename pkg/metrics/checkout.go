package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records settlement outcomes for the /metrics endpoint.
type CheckoutMetrics struct {
	duration     *prometheus.HistogramVec
	settled      *prometheus.CounterVec
	failed       *prometheus.CounterVec
	drawerBlocks prometheus.Counter
}

// NewCheckoutMetrics registers the settlement metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "settlement_duration_seconds",
		Help:    "Duration of the settlement write sequence in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	settled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlements_completed_total",
		Help: "Settlements that reached signal emission.",
	}, []string{"method"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlements_failed_total",
		Help: "Settlements aborted mid-sequence, by failing step.",
	}, []string{"step"})
	drawerBlocks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlements_drawer_blocked_total",
		Help: "Settlement attempts rejected by the drawer gate.",
	})
	reg.MustRegister(duration, settled, failed, drawerBlocks)
	return &CheckoutMetrics{
		duration:     duration,
		settled:      settled,
		failed:       failed,
		drawerBlocks: drawerBlocks,
	}
}

// ObserveDuration records the settlement duration for the payment method.
func (c *CheckoutMetrics) ObserveDuration(method string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
}

// IncSettled increments the completed counter for the payment method.
func (c *CheckoutMetrics) IncSettled(method string) {
	if c == nil || c.settled == nil {
		return
	}
	c.settled.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncFailed increments the failure counter for the named settlement step.
func (c *CheckoutMetrics) IncFailed(step string) {
	if c == nil || c.failed == nil {
		return
	}
	c.failed.WithLabelValues(normalizeLabel(step)).Inc()
}

// IncDrawerBlocked counts gate rejections.
func (c *CheckoutMetrics) IncDrawerBlocked() {
	if c == nil || c.drawerBlocks == nil {
		return
	}
	c.drawerBlocks.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
