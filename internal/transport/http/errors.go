package http

import (
	"log/slog"
	"net/http"

	apierrors "trendpulse/internal/errors"
	"trendpulse/internal/exporter"
	"trendpulse/internal/services"
)

// NewErrorHandler returns an error handler that knows the data and export
// sentinels of the service layer.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(logger, includeStack).
		Map(services.ErrInvalidDateRange, http.StatusBadRequest, apierrors.TypeInvalidDateRange, "Invalid Date Range").
		Map(exporter.ErrUnsupportedFormat, http.StatusBadRequest, apierrors.TypeUnsupportedFormat, "Unsupported Export Format").
		Map(services.ErrServiceUnavailable, http.StatusServiceUnavailable, apierrors.TypeDataUnavailable, "Data Unavailable")
}
