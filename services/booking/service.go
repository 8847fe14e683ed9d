// Package booking creates bookings and owns every change to their status.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boxcric/database/repository"
	bookingRepo "boxcric/database/repository/booking"
	"boxcric/models"
	"boxcric/services/availability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GroundReader loads the ground a booking is made against.
type GroundReader interface {
	GetByID(ctx context.Context, id string) (*models.Ground, error)
}

// Scheduler queues the delayed lifecycle checks for a booking. Lost or
// failed tasks are covered by Sweep.
type Scheduler interface {
	ScheduleExpiry(ctx context.Context, bookingID string, at time.Time) error
	ScheduleCompletion(ctx context.Context, bookingID string, at time.Time) error
}

// Notifier is told about every created booking and every status change.
type Notifier interface {
	BookingChanged(ctx context.Context, booking models.Booking) error
}

// Settings are the booking policy knobs.
type Settings struct {
	PendingTimeout     time.Duration
	CancellationCutoff time.Duration
	Location           *time.Location
	Currency           string
}

// Actor is the caller on whose behalf a booking is read or changed.
type Actor struct {
	UserID string
	Admin  bool
}

// CreateRequest is the body of a booking request.
type CreateRequest struct {
	GroundID    string          `json:"groundId" binding:"required"`
	BookingDate string          `json:"bookingDate" binding:"required"`
	TimeSlot    models.TimeSlot `json:"timeSlot" binding:"required"`
	DeviceToken string          `json:"deviceToken,omitempty"`
}

const (
	cancelledBySystem = "system"
	cancelledByAdmin  = "admin"
)

// Service implements booking creation and the status lifecycle.
type Service struct {
	grounds   GroundReader
	bookings  bookingRepo.BookingRepository
	checker   *availability.Checker
	scheduler Scheduler
	notifier  Notifier
	settings  Settings
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithScheduler(s Scheduler) Option { return func(svc *Service) { svc.scheduler = s } }

func WithNotifier(n Notifier) Option { return func(svc *Service) { svc.notifier = n } }

func WithClock(now func() time.Time) Option { return func(svc *Service) { svc.now = now } }

// NewService wires the booking service. The availability checker it builds
// shares the pending timeout so expired holds never block a window.
func NewService(grounds GroundReader, bookings bookingRepo.BookingRepository, settings Settings, logger *zap.Logger, opts ...Option) *Service {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &Service{
		grounds:  grounds,
		bookings: bookings,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	svc.checker = availability.NewChecker(grounds, bookings,
		availability.WithPendingTTL(settings.PendingTimeout),
		availability.WithClock(svc.now),
	)
	return svc
}

// Checker returns the read-only availability checker backed by the same stores.
func (s *Service) Checker() *availability.Checker { return s.checker }

// Create validates and prices a request, then stores it as pending. The
// overlap check and the insert happen atomically in the store.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*models.Booking, error) {
	if err := availability.ValidateWindow(req.BookingDate, req.TimeSlot); err != nil {
		return nil, err
	}
	ground, err := s.grounds.GetByID(ctx, req.GroundID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, availability.ErrGroundUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", availability.ErrStoreUnavailable, err)
	}
	if ground.Status != models.GroundActive {
		return nil, availability.ErrGroundUnavailable
	}

	now := s.now()
	start, err := models.SlotInstant(req.BookingDate, req.TimeSlot.StartTime, s.settings.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", availability.ErrInvalidTimeRange, err)
	}
	if !start.After(now) {
		return nil, ErrSlotInPast
	}

	if err := s.expireStale(ctx, req.GroundID, req.BookingDate); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ID:          uuid.NewString(),
		GroundID:    req.GroundID,
		UserID:      userID,
		BookingDate: req.BookingDate,
		TimeSlot:    req.TimeSlot,
		Status:      models.BookingPending,
		Pricing:     CalculatePrice(*ground, req.TimeSlot, s.settings.Currency),
		DeviceToken: req.DeviceToken,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.bookings.InsertIfAvailable(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", availability.ErrStoreUnavailable, err)
	}

	s.logger.Info("Booking created",
		zap.String("bookingId", booking.ID),
		zap.String("groundId", booking.GroundID),
		zap.String("date", booking.BookingDate),
		zap.String("start", booking.TimeSlot.StartTime),
		zap.String("end", booking.TimeSlot.EndTime))

	if s.scheduler != nil {
		if err := s.scheduler.ScheduleExpiry(ctx, booking.ID, now.Add(s.settings.PendingTimeout)); err != nil {
			s.logger.Warn("Failed to schedule booking expiry", zap.String("bookingId", booking.ID), zap.Error(err))
		}
	}
	s.notify(ctx, *booking)
	return booking, nil
}

// expireStale cancels pending bookings on the ground and date whose payment
// window has passed, so the guarded insert does not trip over them.
func (s *Service) expireStale(ctx context.Context, groundID, date string) error {
	active, err := s.bookings.FindActiveByGroundAndDate(ctx, groundID, date)
	if err != nil {
		return fmt.Errorf("%w: %w", availability.ErrStoreUnavailable, err)
	}
	for i := range active {
		if !s.checker.StalePending(active[i]) {
			continue
		}
		if _, err := s.expire(ctx, &active[i]); err != nil && !errors.Is(err, repository.ErrStatusChanged) {
			return err
		}
	}
	return nil
}

// Get returns a booking visible to the actor. Pending bookings past their
// payment window are expired and confirmed bookings whose slot has ended are
// completed first.
func (s *Service) Get(ctx context.Context, id string, actor Actor) (*models.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && b.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	return s.settleOnRead(ctx, b), nil
}

// ListForUser returns the user's bookings, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]models.Booking, error) {
	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	for i := range bookings {
		bookings[i] = *s.settleOnRead(ctx, &bookings[i])
	}
	return bookings, nil
}

// List is the admin listing.
func (s *Service) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	bookings, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// AttachPaymentOrder records the gateway order created for a pending booking.
func (s *Service) AttachPaymentOrder(ctx context.Context, id string, order models.BookingPayment) error {
	if err := s.bookings.SetPaymentOrder(ctx, id, order, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBookingNotFound
		}
		return fmt.Errorf("failed to store payment order: %w", err)
	}
	return nil
}

// Confirm moves a pending booking to confirmed after a successful payment for
// orderID. Confirming an already confirmed booking with the same order is a
// no-op so repeated gateway callbacks are harmless.
func (s *Service) Confirm(ctx context.Context, id, orderID string) (*models.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if orderID == "" || b.Payment.OrderID != orderID {
		return nil, ErrPaymentMismatch
	}
	if b.Status == models.BookingConfirmed {
		return b, nil
	}
	if b.Status == models.BookingPending && s.checker.StalePending(*b) {
		if _, err := s.expire(ctx, b); err != nil && !errors.Is(err, repository.ErrStatusChanged) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: payment window for booking %s has closed", ErrInvalidTransition, b.ID)
	}
	updated, err := s.transition(ctx, b, models.StatusChange{
		To:            models.BookingConfirmed,
		PaymentStatus: string(models.OrderPaid),
	})
	if err != nil {
		return nil, err
	}
	if s.scheduler != nil {
		end, err := models.SlotInstant(updated.BookingDate, updated.TimeSlot.EndTime, s.settings.Location)
		if err == nil {
			err = s.scheduler.ScheduleCompletion(ctx, updated.ID, end)
		}
		if err != nil {
			s.logger.Warn("Failed to schedule booking completion", zap.String("bookingId", updated.ID), zap.Error(err))
		}
	}
	return updated, nil
}

// FailPayment cancels a pending booking whose payment failed, expired or was
// abandoned at the gateway.
func (s *Service) FailPayment(ctx context.Context, id string, status models.OrderStatus, reason string) (*models.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingPending {
		return nil, fmt.Errorf("%w: payment outcome for %s booking", ErrInvalidTransition, b.Status)
	}
	return s.transition(ctx, b, models.StatusChange{
		To:            models.BookingCancelled,
		PaymentStatus: string(status),
		Cancellation: &models.Cancellation{
			Reason:      reason,
			CancelledBy: cancelledBySystem,
		},
	})
}

// Cancel cancels a booking on behalf of its owner or an admin. Users cannot
// cancel a confirmed booking inside the cancellation cutoff; admins can.
func (s *Service) Cancel(ctx context.Context, id string, actor Actor, reason string) (*models.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && b.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	if err := checkTransition(b.Status, models.BookingCancelled); err != nil {
		return nil, err
	}
	if b.Status == models.BookingConfirmed && !actor.Admin {
		start, err := models.SlotInstant(b.BookingDate, b.TimeSlot.StartTime, s.settings.Location)
		if err != nil {
			return nil, fmt.Errorf("booking %s has a malformed slot: %w", b.ID, err)
		}
		if start.Sub(s.now()) < s.settings.CancellationCutoff {
			return nil, ErrCancellationClosed
		}
	}

	by := actor.UserID
	if actor.Admin {
		by = cancelledByAdmin
	}
	if reason == "" {
		reason = "cancelled by " + by
	}
	return s.transition(ctx, b, models.StatusChange{
		To:           models.BookingCancelled,
		Cancellation: &models.Cancellation{Reason: reason, CancelledBy: by},
	})
}

// Expire cancels a booking that is still pending after the payment window.
// It returns the booking unchanged when there is nothing to do.
func (s *Service) Expire(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingPending || !s.checker.StalePending(*b) {
		return b, nil
	}
	return s.expire(ctx, b)
}

func (s *Service) expire(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	return s.transition(ctx, b, models.StatusChange{
		To:            models.BookingCancelled,
		PaymentStatus: string(models.OrderExpired),
		Cancellation: &models.Cancellation{
			Reason:      "payment not completed in time",
			CancelledBy: cancelledBySystem,
		},
	})
}

// Complete marks a confirmed booking completed once its slot has ended. It
// returns the booking unchanged when there is nothing to do.
func (s *Service) Complete(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.elapsed(b) {
		return b, nil
	}
	return s.transition(ctx, b, models.StatusChange{To: models.BookingCompleted})
}

// Sweep expires every stale pending booking and completes every elapsed
// confirmed one. It keeps going past individual failures.
func (s *Service) Sweep(ctx context.Context) (expired, completed int, err error) {
	now := s.now()

	stale, err := s.bookings.FindPendingCreatedBefore(ctx, now.Add(-s.settings.PendingTimeout))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to find stale bookings: %w", err)
	}
	for i := range stale {
		if _, err := s.expire(ctx, &stale[i]); err != nil {
			s.logger.Warn("Sweep could not expire booking", zap.String("bookingId", stale[i].ID), zap.Error(err))
			continue
		}
		expired++
	}

	today := now.In(s.settings.Location).Format(models.DateLayout)
	confirmed, err := s.bookings.FindConfirmedUpTo(ctx, today)
	if err != nil {
		return expired, 0, fmt.Errorf("failed to find confirmed bookings: %w", err)
	}
	for i := range confirmed {
		if !s.elapsed(&confirmed[i]) {
			continue
		}
		if _, err := s.transition(ctx, &confirmed[i], models.StatusChange{To: models.BookingCompleted}); err != nil {
			s.logger.Warn("Sweep could not complete booking", zap.String("bookingId", confirmed[i].ID), zap.Error(err))
			continue
		}
		completed++
	}
	return expired, completed, nil
}

func (s *Service) elapsed(b *models.Booking) bool {
	if b.Status != models.BookingConfirmed {
		return false
	}
	end, err := models.SlotInstant(b.BookingDate, b.TimeSlot.EndTime, s.settings.Location)
	if err != nil {
		return false
	}
	return !s.now().Before(end)
}

func (s *Service) settleOnRead(ctx context.Context, b *models.Booking) *models.Booking {
	var (
		updated *models.Booking
		err     error
	)
	switch {
	case b.Status == models.BookingPending && s.checker.StalePending(*b):
		updated, err = s.expire(ctx, b)
	case s.elapsed(b):
		updated, err = s.transition(ctx, b, models.StatusChange{To: models.BookingCompleted})
	default:
		return b
	}
	if err != nil {
		s.logger.Warn("Failed to settle booking on read", zap.String("bookingId", b.ID), zap.Error(err))
		return b
	}
	return updated
}

func (s *Service) load(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking %s: %w", id, err)
	}
	return b, nil
}

// transition is the single path through which a stored status changes.
func (s *Service) transition(ctx context.Context, b *models.Booking, change models.StatusChange) (*models.Booking, error) {
	if err := checkTransition(b.Status, change.To); err != nil {
		return nil, err
	}
	change.From = b.Status
	change.At = s.now()
	if change.Cancellation != nil {
		change.Cancellation.CancelledAt = change.At
	}

	updated, err := s.bookings.UpdateStatus(ctx, b.ID, change)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to update booking %s: %w", b.ID, err)
	}

	s.logger.Info("Booking status changed",
		zap.String("bookingId", updated.ID),
		zap.String("from", string(change.From)),
		zap.String("to", string(change.To)))
	s.notify(ctx, *updated)
	return updated, nil
}

func (s *Service) notify(ctx context.Context, b models.Booking) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.BookingChanged(ctx, b); err != nil {
		s.logger.Warn("Booking notification failed", zap.String("bookingId", b.ID), zap.Error(err))
	}
}
