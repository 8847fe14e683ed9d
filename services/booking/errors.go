package booking

import "errors"

var (
	// ErrInvalidTransition is returned for any status change the lifecycle
	// does not allow.
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrForbidden         = errors.New("booking belongs to another user")
	// ErrCancellationClosed means a confirmed booking is too close to its
	// start to be cancelled by the user.
	ErrCancellationClosed = errors.New("cancellation window has closed for this booking")
	ErrSlotInPast         = errors.New("cannot book a slot that has already started")
	// ErrPaymentMismatch means a payment reference does not belong to the booking.
	ErrPaymentMismatch = errors.New("payment reference does not match booking")
)
