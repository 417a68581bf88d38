// Package api serves the ops endpoints of a crawl run: liveness, readiness,
// Prometheus metrics and the live adapter counters under /v1/status.
package api
