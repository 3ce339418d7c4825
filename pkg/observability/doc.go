/*
Package observability turns engine lifecycle events into Prometheus metrics.

Metrics.Hooks returns domain.LifecycleHooks to be passed to the engine, and the
collectors are registered on the given registerer so they can be served by
promhttp.
*/
package observability
