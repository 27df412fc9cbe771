// Package server provides the MCP server context plus the sidecar HTTP
// endpoints for metrics and health probes.
//
// ServerContext owns the OAuth credential manager and builds the Gmail
// client lazily, so the server starts without credentials and the first
// tool call triggers the authorization flow. It also carries the logger,
// the metrics recorder, and the read-only flag that gates mutating tools.
//
// MetricsServer serves Prometheus metrics on a dedicated port so that
// operational data never mixes with the MCP transport; HealthChecker adds
// the /healthz and /readyz probe endpoints.
package server
