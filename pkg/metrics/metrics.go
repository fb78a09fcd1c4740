package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// InstancesRegistered counts successful RegisterService calls that
	// inserted or replaced an instance (duplicates are not counted again).
	InstancesRegistered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_instances_registered_total",
			Help: "Total number of instances registered, by service",
		},
		[]string{"service_name"},
	)

	InstancesUnregistered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_instances_unregistered_total",
			Help: "Total number of instances unregistered, by service",
		},
		[]string{"service_name"},
	)

	InstancesActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hub_instances_active",
			Help: "Instances currently tracked by the registry, by service and status",
		},
		[]string{"service_name", "status"},
	)

	ProberLoopsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_prober_loops_active",
			Help: "Number of currently running health prober loops",
		},
	)

	ProbeOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_probe_outcomes_total",
			Help: "Total number of health probe outcomes, by service and result",
		},
		[]string{"service_name", "result"},
	)

	ProbeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hub_probe_duration_seconds",
			Help:    "Time taken for a single health probe RPC",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service_name"},
	)

	BroadcastPublishesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_broadcast_publishes_total",
			Help: "Total number of change events published to the broadcast fabric",
		},
		[]string{"service_name"},
	)

	BroadcastDropsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_broadcast_drops_total",
			Help: "Total number of change events dropped due to a lagging subscriber",
		},
		[]string{"service_name"},
	)

	SubscriptionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hub_subscriptions_active",
			Help: "Number of currently open SubscribeToService streams, by service",
		},
		[]string{"service_name"},
	)

	RPCRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_rpc_requests_total",
			Help: "Total number of RPC Surface requests, by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	RPCRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hub_rpc_request_duration_seconds",
			Help:    "RPC Surface request duration in seconds, by method",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(InstancesRegistered)
	prometheus.MustRegister(InstancesUnregistered)
	prometheus.MustRegister(InstancesActive)
	prometheus.MustRegister(ProberLoopsActive)
	prometheus.MustRegister(ProbeOutcomesTotal)
	prometheus.MustRegister(ProbeDuration)
	prometheus.MustRegister(BroadcastPublishesTotal)
	prometheus.MustRegister(BroadcastDropsTotal)
	prometheus.MustRegister(SubscriptionsActive)
	prometheus.MustRegister(RPCRequestsTotal)
	prometheus.MustRegister(RPCRequestDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
