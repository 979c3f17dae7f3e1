// Package middleware provides the built-in pipeline layers: request ID
// propagation, structured request logging, Prometheus metrics, OpenTelemetry
// tracing, JWT and basic authentication, cookie sessions, and gzip
// compression.
//
// Each middleware is constructed once at startup from a config struct and is
// safe for concurrent use; all per-request state lives in the request
// context's attribute bag.
package middleware
