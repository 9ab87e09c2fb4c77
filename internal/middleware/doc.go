// Package middleware holds the HTTP middleware chain of the API server:
// request IDs, structured request logging, panic recovery, rate limiting,
// timeouts, CORS, security headers, API key checks, audit logging,
// OpenTelemetry instrumentation and request contract validation.
package middleware
