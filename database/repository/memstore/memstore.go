// Package memstore keeps grounds and bookings in process memory. It backs
// STORE_DRIVER=memory and the service tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"boxcric/database/repository"
	"boxcric/models"
)

// GroundRepo is an in-memory groundRepo.GroundRepository.
type GroundRepo struct {
	mu      sync.RWMutex
	grounds map[string]models.Ground
}

func NewGroundRepo(seed ...models.Ground) *GroundRepo {
	r := &GroundRepo{grounds: make(map[string]models.Ground)}
	for _, g := range seed {
		r.grounds[g.ID] = cloneGround(g)
	}
	return r
}

func (r *GroundRepo) Create(_ context.Context, ground *models.Ground) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grounds[ground.ID] = cloneGround(*ground)
	return nil
}

func (r *GroundRepo) GetByID(_ context.Context, id string) (*models.Ground, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.grounds[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	g = cloneGround(g)
	return &g, nil
}

func (r *GroundRepo) List(_ context.Context, filter models.GroundFilter) ([]models.Ground, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Ground{}
	for _, g := range r.grounds {
		if filter.Matches(g) {
			out = append(out, cloneGround(g))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *GroundRepo) UpdateStatus(_ context.Context, id string, upd models.GroundStatusUpdate, at time.Time) (*models.Ground, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.grounds[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if upd.Status != nil {
		g.Status = *upd.Status
	}
	if upd.IsVerified != nil {
		g.IsVerified = *upd.IsVerified
	}
	g.UpdatedAt = at
	r.grounds[id] = g
	g = cloneGround(g)
	return &g, nil
}

func (r *GroundRepo) AddImage(_ context.Context, id, url string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.grounds[id]
	if !ok {
		return repository.ErrNotFound
	}
	g.Images = append(append([]string(nil), g.Images...), url)
	g.UpdatedAt = at
	r.grounds[id] = g
	return nil
}

func cloneGround(g models.Ground) models.Ground {
	g.Amenities = append([]string(nil), g.Amenities...)
	g.Images = append([]string(nil), g.Images...)
	return g
}

// BookingRepo is an in-memory bookingRepo.BookingRepository. Insertion order
// is kept so reads are deterministic.
type BookingRepo struct {
	mu       sync.RWMutex
	order    []string
	bookings map[string]models.Booking
}

func NewBookingRepo() *BookingRepo {
	return &BookingRepo{bookings: make(map[string]models.Booking)}
}

func (r *BookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (r *BookingRepo) FindActiveByGroundAndDate(_ context.Context, groundID, date string) ([]models.Booking, error) {
	return r.collect(func(b models.Booking) bool {
		return b.GroundID == groundID && b.BookingDate == date && b.Status.IsActive()
	}), nil
}

func (r *BookingRepo) ListByUser(_ context.Context, userID string) ([]models.Booking, error) {
	out := r.collect(func(b models.Booking) bool { return b.UserID == userID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *BookingRepo) List(_ context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	out := r.collect(filter.Matches)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].BookingDate != out[j].BookingDate {
			return out[i].BookingDate < out[j].BookingDate
		}
		return out[i].TimeSlot.StartTime < out[j].TimeSlot.StartTime
	})
	return out, nil
}

func (r *BookingRepo) FindPendingCreatedBefore(_ context.Context, before time.Time) ([]models.Booking, error) {
	return r.collect(func(b models.Booking) bool {
		return b.Status == models.BookingPending && b.CreatedAt.Before(before)
	}), nil
}

func (r *BookingRepo) FindConfirmedUpTo(_ context.Context, date string) ([]models.Booking, error) {
	return r.collect(func(b models.Booking) bool {
		return b.Status == models.BookingConfirmed && b.BookingDate <= date
	}), nil
}

func (r *BookingRepo) collect(keep func(models.Booking) bool) []models.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Booking{}
	for _, id := range r.order {
		if b := r.bookings[id]; keep(b) {
			out = append(out, b)
		}
	}
	return out
}

func (r *BookingRepo) Insert(_ context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertLocked(*booking)
	return nil
}

func (r *BookingRepo) InsertIfAvailable(_ context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var conflicts []string
	for _, id := range r.order {
		b := r.bookings[id]
		if b.GroundID == booking.GroundID && b.BookingDate == booking.BookingDate &&
			b.Status.IsActive() && b.TimeSlot.Overlaps(booking.TimeSlot) {
			conflicts = append(conflicts, b.ID)
		}
	}
	if len(conflicts) > 0 {
		return &repository.SlotConflictError{Conflicts: conflicts}
	}
	r.insertLocked(*booking)
	return nil
}

func (r *BookingRepo) insertLocked(b models.Booking) {
	if _, exists := r.bookings[b.ID]; !exists {
		r.order = append(r.order, b.ID)
	}
	r.bookings[b.ID] = b
}

func (r *BookingRepo) UpdateStatus(_ context.Context, id string, change models.StatusChange) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if b.Status != change.From {
		return nil, repository.ErrStatusChanged
	}
	change.Apply(&b)
	r.bookings[id] = b
	return &b, nil
}

func (r *BookingRepo) SetPaymentOrder(_ context.Context, id string, order models.BookingPayment, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.Payment.Gateway = order.Gateway
	b.Payment.OrderID = order.OrderID
	b.Payment.CancelToken = order.CancelToken
	b.Payment.Status = string(models.OrderActive)
	b.UpdatedAt = at
	r.bookings[id] = b
	return nil
}
