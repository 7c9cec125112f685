/*
Package observability turns engine lifecycle hooks into Prometheus metrics.

Metrics are registered on a caller-supplied registerer so that tests and
embedded engines do not collide on the global registry.
*/
package observability
