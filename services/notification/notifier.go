// Package notification fans booking changes out to the configured channels.
package notification

import (
	"context"
	"errors"

	"boxcric/models"
)

// Notifier receives every created booking and every booking status change.
type Notifier interface {
	BookingChanged(ctx context.Context, booking models.Booking) error
}

// Fanout delivers to every notifier and joins their errors.
type Fanout []Notifier

func (f Fanout) BookingChanged(ctx context.Context, b models.Booking) error {
	var errs []error
	for _, n := range f {
		if err := n.BookingChanged(ctx, b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
