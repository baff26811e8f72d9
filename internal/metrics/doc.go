// Package metrics defines the Prometheus collectors for the HTTP surface,
// catalog imports, thumbnail generation, streaming, and compression, and
// serves them on a dedicated port.
package metrics
