package availability

import "errors"

var (
	// ErrGroundUnavailable means the ground does not exist or is not active.
	ErrGroundUnavailable = errors.New("ground not found or not available for booking")
	// ErrInvalidTimeRange means the date or clock values are malformed, or
	// start is not before end.
	ErrInvalidTimeRange = errors.New("invalid time range")
	// ErrStoreUnavailable wraps any failure reading grounds or bookings.
	ErrStoreUnavailable = errors.New("booking store unavailable")
)
