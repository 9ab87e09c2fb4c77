package services

import "errors"

// Data service errors
var (
	ErrInvalidDateRange   = errors.New("start date is after end date")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
