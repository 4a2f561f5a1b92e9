package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	LockRequestWaitSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lock_request_wait_seconds",
		Help:    "Time from the creation of a lock request until its resources are locked",
		Buckets: prometheus.ExponentialBuckets(1, 2, 14),
	})

	LockRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lock_requests_total",
		Help: "Lock requests by final phase",
	}, []string{"phase"})
)

func InitMetrics() {
	metrics.Registry.MustRegister(LockRequestWaitSeconds, LockRequestsTotal)
}
