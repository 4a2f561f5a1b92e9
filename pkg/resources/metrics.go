package resources

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	ResourcesFree = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lockable_resources_free",
		Help: "The number of free resources carrying a label",
	}, []string{"label"})

	ResourcesLocked = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "lockable_resources_locked",
		Help: "The number of locked resources",
	})

	ResourcesReserved = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "lockable_resources_reserved",
		Help: "The number of reserved resources",
	})

	ResourcesQueued = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "lockable_resources_queued",
		Help: "The number of resources queued for a pending request",
	})

	LoadBalancingUsageRatio = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lockable_resources_load_balancing_usage_ratio",
		Help: "The share of resources in a load-balancing group which are not free",
	}, []string{"group"})

	admissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lockable_resources_queue_admissions_total",
		Help: "Queue attempts by result",
	}, []string{"result"})
)

func InitMetrics() {
	metrics.Registry.MustRegister(ResourcesFree, ResourcesLocked, ResourcesReserved, ResourcesQueued, LoadBalancingUsageRatio, admissionsTotal)
}

func (m *Manager) recordUsageLocked() {
	var locked, reserved, queued int
	for _, r := range m.resources {
		if r.IsLocked() {
			locked++
		}
		if r.IsReserved() {
			reserved++
		}
		if r.IsQueued() {
			queued++
		}
	}
	ResourcesLocked.Set(float64(locked))
	ResourcesReserved.Set(float64(reserved))
	ResourcesQueued.Set(float64(queued))

	ResourcesFree.Reset()
	for _, label := range m.index.labelNames {
		ResourcesFree.WithLabelValues(label).Set(float64(m.index.freeCount(label)))
	}

	LoadBalancingUsageRatio.Reset()
	if len(m.loadBalancingLabels) == 0 {
		return
	}
	for _, bucket := range m.index.bucketOrder {
		group := bucket
		if group == defaultBucket {
			group = "default"
		}
		LoadBalancingUsageRatio.WithLabelValues(group).Set(m.index.usage(bucket))
	}
}
