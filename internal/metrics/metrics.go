// Package metrics exposes Prometheus counters and histograms for the
// verify/sign/MPC call path, served on /metrics by cmd/server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VerifyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fastauth",
		Name:      "verify_total",
		Help:      "Number of guard verify attempts, labeled by outcome.",
	}, []string{"guard", "outcome"})

	SignTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fastauth",
		Name:      "sign_total",
		Help:      "Number of pipeline sign attempts, labeled by outcome.",
	}, []string{"guard", "outcome"})

	MPCCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fastauth",
		Name:      "mpc_call_duration_seconds",
		Help:      "Latency of calls to the external MPC signing oracle.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"algorithm", "outcome"})

	GuardKeyRotations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fastauth",
		Name:      "guard_key_rotations_total",
		Help:      "Number of attestation-driven public key rotations, labeled by outcome.",
	}, []string{"guard", "outcome"})
)
