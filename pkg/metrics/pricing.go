package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PricingMetrics records the outcome of order recompute passes.
type PricingMetrics struct {
	duration  *prometheus.HistogramVec
	success   *prometheus.CounterVec
	failure   *prometheus.CounterVec
	conflicts prometheus.Counter
}

// NewPricingMetrics registers the recompute pipeline metrics on the provided
// registerer.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_recompute_duration_seconds",
		Help:    "Duration of order pricing recompute passes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_recompute_success",
		Help: "Successful order pricing recompute passes.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_recompute_failure",
		Help: "Failed order pricing recompute passes.",
	}, []string{"operation"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_recompute_version_conflicts",
		Help: "Recompute passes retried after an optimistic version conflict.",
	})
	reg.MustRegister(duration, success, failure, conflicts)
	return &PricingMetrics{
		duration:  duration,
		success:   success,
		failure:   failure,
		conflicts: conflicts,
	}
}

// ObserveDuration records the duration for the named operation.
func (p *PricingMetrics) ObserveDuration(operation string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (p *PricingMetrics) IncSuccess(operation string) {
	if p == nil || p.success == nil {
		return
	}
	p.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the named operation.
func (p *PricingMetrics) IncFailure(operation string) {
	if p == nil || p.failure == nil {
		return
	}
	p.failure.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncVersionConflict counts a retried stale write.
func (p *PricingMetrics) IncVersionConflict() {
	if p == nil || p.conflicts == nil {
		return
	}
	p.conflicts.Inc()
}

func normalizeLabel(operation string) string {
	if operation == "" {
		return "unknown"
	}
	return operation
}
