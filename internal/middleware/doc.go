// Package middleware provides the HTTP cross-cutting layers: W3C extended
// access logging with field sanitization, Prometheus request metrics keyed
// by route template, and opt-in gzip compression that leaves video streams
// alone.
package middleware
