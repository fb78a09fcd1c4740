/*
Package metrics defines the Hub's Prometheus collectors and a small
generic component-health registry used by the liveness endpoint.

Collectors are package-level variables registered in init(), following
the convention that any code touching the domain just imports this
package and calls .Inc()/.Set()/.Observe() directly rather than passing
a registry around:

  - hub_instances_registered_total / hub_instances_unregistered_total:
    counters per service name.
  - hub_instances_active: gauge per service name and status (up/down/
    unknown), refreshed by Collector on a 15s tick rather than on every
    mutation, since a gauge only needs to be eventually accurate.
  - hub_prober_loops_active: gauge of currently running Health Prober
    goroutines.
  - hub_probe_outcomes_total / hub_probe_duration_seconds: per-service
    probe results and latency.
  - hub_broadcast_publishes_total / hub_broadcast_drops_total: Broadcast
    Fabric activity.
  - hub_subscriptions_active: gauge of open SubscribeToService streams.
  - hub_rpc_requests_total / hub_rpc_request_duration_seconds: RPC
    Surface activity by method and outcome.

Handler returns the standard promhttp handler for mounting on the
liveness server's /metrics route. Timer is a small duration-measuring
helper: NewTimer() followed by a deferred ObserveDuration(histogram).

The component-health registry (RegisterComponent, GetHealth,
GetReadiness, and their HTTP handlers) is independent of the Prometheus
collectors above; it backs /health and /ready rather than /metrics.
*/
package metrics
