package repository

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrSlotTaken is returned by guarded inserts when an active booking
	// already overlaps the requested window.
	ErrSlotTaken = errors.New("slot already booked")
	// ErrStatusChanged is returned by conditional status updates when the
	// stored booking is no longer in the expected state.
	ErrStatusChanged = errors.New("booking status changed concurrently")
)

// SlotConflictError carries the ids of the bookings that block a window.
type SlotConflictError struct {
	Conflicts []string
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("%s: conflicts with %s", ErrSlotTaken, strings.Join(e.Conflicts, ", "))
}

func (e *SlotConflictError) Is(target error) bool {
	return target == ErrSlotTaken
}
