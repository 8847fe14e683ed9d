// Package availability answers whether a ground is free for a window on a
// date. It only reads; reserving a window is the booking service's job.
package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"boxcric/database/repository"
	"boxcric/models"
)

// GroundReader is the part of the ground repository the checker needs.
type GroundReader interface {
	GetByID(ctx context.Context, id string) (*models.Ground, error)
}

// BookingReader is the part of the booking repository the checker needs.
type BookingReader interface {
	FindActiveByGroundAndDate(ctx context.Context, groundID, date string) ([]models.Booking, error)
}

// Checker evaluates slot availability.
type Checker struct {
	grounds    GroundReader
	bookings   BookingReader
	pendingTTL time.Duration
	now        func() time.Time
}

type Option func(*Checker)

// WithPendingTTL makes the checker ignore pending bookings older than ttl.
// Those are expired by the lifecycle jobs and must not block a window while
// the job is outstanding. Zero disables the rule.
func WithPendingTTL(ttl time.Duration) Option {
	return func(c *Checker) { c.pendingTTL = ttl }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) { c.now = now }
}

func NewChecker(grounds GroundReader, bookings BookingReader, opts ...Option) *Checker {
	c := &Checker{grounds: grounds, bookings: bookings, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsSlotAvailable reports whether [start, end) on date is free at groundID.
// When it is not, Conflicts lists every overlapping active booking.
func (c *Checker) IsSlotAvailable(ctx context.Context, groundID, date, start, end string) (*models.Availability, error) {
	if err := c.requireActiveGround(ctx, groundID); err != nil {
		return nil, err
	}
	want := models.TimeSlot{StartTime: start, EndTime: end}
	if err := ValidateWindow(date, want); err != nil {
		return nil, err
	}

	active, err := c.activeBookings(ctx, groundID, date)
	if err != nil {
		return nil, err
	}

	result := &models.Availability{Available: true, Conflicts: []string{}}
	for _, b := range active {
		if b.TimeSlot.Overlaps(want) {
			result.Available = false
			result.Conflicts = append(result.Conflicts, b.ID)
		}
	}
	return result, nil
}

// ListBookedSlots returns the occupied windows on date, ordered by start time.
// The ground's status is not checked so that inactive grounds can still show
// their existing bookings.
func (c *Checker) ListBookedSlots(ctx context.Context, groundID, date string) ([]models.BookedSlot, error) {
	if _, err := models.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimeRange, err)
	}
	active, err := c.activeBookings(ctx, groundID, date)
	if err != nil {
		return nil, err
	}

	slots := make([]models.BookedSlot, 0, len(active))
	for _, b := range active {
		slots = append(slots, models.BookedSlot{
			StartTime: b.TimeSlot.StartTime,
			EndTime:   b.TimeSlot.EndTime,
			Status:    b.Status,
		})
	}
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].StartTime != slots[j].StartTime {
			return slots[i].StartTime < slots[j].StartTime
		}
		if slots[i].EndTime != slots[j].EndTime {
			return slots[i].EndTime < slots[j].EndTime
		}
		return slots[i].Status < slots[j].Status
	})
	return slots, nil
}

func (c *Checker) requireActiveGround(ctx context.Context, groundID string) error {
	ground, err := c.grounds.GetByID(ctx, groundID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrGroundUnavailable
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if ground.Status != models.GroundActive {
		return ErrGroundUnavailable
	}
	return nil
}

// activeBookings loads pending and confirmed bookings, dropping pending ones
// past their payment window.
func (c *Checker) activeBookings(ctx context.Context, groundID, date string) ([]models.Booking, error) {
	bookings, err := c.bookings.FindActiveByGroundAndDate(ctx, groundID, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	out := bookings[:0:0]
	for _, b := range bookings {
		if !b.Status.IsActive() || c.StalePending(b) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// StalePending reports whether b is a pending booking past its payment window.
func (c *Checker) StalePending(b models.Booking) bool {
	if c.pendingTTL <= 0 || b.Status != models.BookingPending {
		return false
	}
	return !c.now().Before(b.CreatedAt.Add(c.pendingTTL))
}

// ValidateWindow checks the date is YYYY-MM-DD and the slot is a well-formed
// HH:MM window with start before end.
func ValidateWindow(date string, slot models.TimeSlot) error {
	if _, err := models.ParseDate(date); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimeRange, err)
	}
	if err := slot.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimeRange, err)
	}
	return nil
}
