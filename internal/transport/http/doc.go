// Package http implements the HTTP handlers of the trend dashboard API.
// Handlers stay thin: they bind and validate the request, call the service
// layer and format the response.
//
// # Responses
//
// Successful JSON responses share one envelope:
//
//	{"status": "success", "data": {...}, "count": 42}
//
// Data responses carry an ETag equal to the dataset fingerprint. A request
// whose If-None-Match matches it is answered with 304 Not Modified.
//
// # Errors
//
// Every error is rendered as an RFC 7807 problem document through
// errors.ErrorHandler. NewErrorHandler registers the service sentinels:
//
//	domain.ErrUnknownCategory      404 /errors/data/unknown-category
//	services.ErrInvalidDateRange   400 /errors/data/invalid-date-range
//	exporter.ErrUnsupportedFormat  400 /errors/export/unsupported-format
//	services.ErrServiceUnavailable 503 /errors/data/unavailable
//
// # Routes
//
//	GET  /api/data/keywords
//	GET  /api/data/dashboard
//	GET  /api/data/diagnostics
//	GET  /api/data/{category}
//	GET  /api/data/export/{category}?format=csv|xlsx
//	POST /api/data/reload
//
// The filtered views accept keywords (comma separated or repeated), start
// and end (YYYY-MM-DD) and raw=true to skip filtering.
package http
