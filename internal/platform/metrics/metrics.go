package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "club_events"

var OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "operations_total",
	Help:      "Progression operations by name and outcome",
}, []string{"operation", "outcome"})

var OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "operation_duration_seconds",
	Help:      "Duration of progression operations",
	Buckets:   prometheus.DefBuckets,
}, []string{"operation"})

var PointsAwardedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "points_awarded_total",
	Help:      "Tournament points awarded by source",
}, []string{"source"})

var AuditRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "audit_records_total",
	Help:      "Audit records by sink and result",
}, []string{"sink", "result"})

var LivePushTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "live_push_total",
	Help:      "Live view push notifications by result",
}, []string{"result"})

var LiveStateCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "live_state_cache_total",
	Help:      "Live state reads by cache result",
}, []string{"result"})

var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "http_request_duration_seconds",
	Help:      "Duration of HTTP requests by route and status class",
	Buckets:   prometheus.DefBuckets,
}, []string{"route", "status"})

// Outcome values used with OperationsTotal.
const (
	OutcomeApplied = "applied"
	OutcomeNoop    = "noop"
	OutcomeFailed  = "failed"
)

// ObserveOperation records one progression operation. Callers pass the
// applied flag of the result and the returned error.
func ObserveOperation(operation string, started time.Time, applied bool, err error) {
	outcome := OutcomeNoop
	switch {
	case err != nil:
		outcome = OutcomeFailed
	case applied:
		outcome = OutcomeApplied
	}
	OperationsTotal.WithLabelValues(operation, outcome).Inc()
	OperationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// ErrorClass collapses an error into a short label for dashboards.
func ErrorClass(err error, known ...error) string {
	if err == nil {
		return "none"
	}
	for _, target := range known {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return "internal"
}
