// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics declares the Prometheus series of the dashboard service.

Every series lives in the "impulsa" namespace and is registered on the default
registry, which [Handler] exposes at /metrics.

  - upstream_requests_total / upstream_request_duration_seconds: platform API calls.
  - join_branch_failures_total: initiatives whose postulations could not be fetched.
  - mutations_total: settled mutations by kind and result.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "impulsa"

// Mutation results.
const (
	ResultSucceeded = "succeeded"
	ResultFailed    = "failed"
	ResultAborted   = "aborted"
	ResultSkipped   = "skipped"
)

var (
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Platform API calls by method and status code (\"error\" for transport failures).",
	}, []string{"method", "status"})

	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Latency of platform API calls, rate limiter wait excluded.",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method"})

	JoinBranchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "join",
		Name:      "branch_failures_total",
		Help:      "Per-initiative postulation fetches that failed and contributed an empty list.",
	})

	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Settled mutations by kind and result.",
	}, []string{"kind", "result"})
)

// ObserveUpstream records one platform API call. status is 0 when no response arrived.
func ObserveUpstream(method string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	UpstreamRequests.WithLabelValues(method, label).Inc()
	UpstreamLatency.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveMutation records the outcome of one mutation.
func ObserveMutation(kind, result string) {
	Mutations.WithLabelValues(kind, result).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
