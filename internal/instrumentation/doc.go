// Package instrumentation provides OpenTelemetry metrics for the server.
//
// Metrics are exported through a Prometheus exporter by default (scraped from
// the dedicated metrics server) or pushed over OTLP/HTTP when
// METRICS_EXPORTER=otlp and an OTEL_EXPORTER_OTLP_ENDPOINT are configured.
// Instrumentation can be disabled entirely with INSTRUMENTATION_ENABLED=false,
// in which case all recording methods are no-ops.
package instrumentation
