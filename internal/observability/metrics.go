// Package observability exposes the Prometheus collectors for upstream calls
// and agent operations.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "training_agent"

var (
	upstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Latency of calls to the metrics proxy and the assistant API.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"upstream", "outcome"})

	operations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "agent",
		Name:      "operations_total",
		Help:      "Connect and chat operations by result.",
	}, []string{"operation", "result"})

	learningsSaved = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "learnings",
		Name:      "saved_total",
		Help:      "Notes extracted from assistant replies and persisted.",
	})

	recoveryScore = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "recovery",
		Name:      "score",
		Help:      "Most recently computed recovery score (1-10).",
	})
)

func init() {
	prometheus.MustRegister(upstreamDuration, operations, learningsSaved, recoveryScore)
}

// Operation results
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultBusy  = "busy"
)

// ObserveUpstream records one upstream call
func ObserveUpstream(upstream string, started time.Time, err error) {
	outcome := ResultOK
	if err != nil {
		outcome = ResultError
	}
	upstreamDuration.WithLabelValues(upstream, outcome).Observe(time.Since(started).Seconds())
}

// RecordOperation counts a finished connect or chat
func RecordOperation(operation, result string) {
	operations.WithLabelValues(operation, result).Inc()
}

func RecordLearningSaved() {
	learningsSaved.Inc()
}

// RecordScore updates the recovery gauge
func RecordScore(score float64) {
	recoveryScore.Set(score)
}
