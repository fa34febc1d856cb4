// Package observability provides logging, metrics, and tracing for the
// routing engine.
//
// Logging is structured logging over zap behind a small Logger
// interface. Metrics are Prometheus counters and histograms emitted per
// dispatched request, labelled with the matched route template rather
// than the raw request path so that series cardinality stays bounded by
// the number of registered routes. Tracing is OpenTelemetry with an
// optional OTLP gRPC exporter.
package observability
