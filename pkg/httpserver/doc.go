// Package httpserver is a small wrapper around net/http that adds
// env-driven timeouts, graceful shutdown on context cancellation or
// SIGINT/SIGTERM, and health-check handlers.
package httpserver
