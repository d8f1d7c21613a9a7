/*
Package metrics provides Prometheus metrics collection and exposition for the
engine, plus a small health-check registry for liveness/readiness probes.

Metrics are package-level prometheus.Collector values registered at init time
and exposed over HTTP via Handler(). They cover transaction throughput and
duration, per-phase rule evaluation, action execution outcomes, DPI field
counts, event emission, KV store operation latency, and collection populate
outcomes.

Timer is a small helper for recording elapsed durations into a histogram or
histogram vec without threading time.Time values through call sites by hand:

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.TransactionDuration)

The health surface in health.go (RegisterComponent, GetHealth, GetReadiness,
HealthHandler, ReadyHandler, LivenessHandler) lets components self-report
whether they are up, and GetReadiness additionally requires the kvstore,
action_registry, and collection_registry components to be registered and
not unhealthy before reporting ready; a component that is only degraded
(fewer consecutive failures than the threshold) still counts as ready.
*/
package metrics
