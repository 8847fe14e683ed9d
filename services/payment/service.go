// Package payment runs the hosted checkout flow for pending bookings and
// applies its outcome through the booking lifecycle.
package payment

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"boxcric/models"
	"boxcric/services/booking"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotPayable is returned when checkout is requested for a booking that is
// no longer pending.
var ErrNotPayable = errors.New("booking is not awaiting payment")

// Bookings is the part of the booking service the payment flow drives.
type Bookings interface {
	Get(ctx context.Context, id string, actor booking.Actor) (*models.Booking, error)
	AttachPaymentOrder(ctx context.Context, id string, order models.BookingPayment) error
	Confirm(ctx context.Context, id, orderID string) (*models.Booking, error)
	FailPayment(ctx context.Context, id string, status models.OrderStatus, reason string) (*models.Booking, error)
}

type Service struct {
	gateway     Gateway
	bookings    Bookings
	publicURL   string
	frontendURL string
	logger      *zap.Logger
}

// NewService builds the payment flow. publicURL is where the gateway sends
// the payer back to this server; frontendURL is where the payer finally lands.
func NewService(gateway Gateway, bookings Bookings, publicURL, frontendURL string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		gateway:     gateway,
		bookings:    bookings,
		publicURL:   strings.TrimRight(publicURL, "/"),
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}
}

var systemActor = booking.Actor{UserID: "system", Admin: true}

// CreateOrder opens a checkout for the caller's pending booking. A pending
// booking past its payment window is expired by the read and is not payable.
func (s *Service) CreateOrder(ctx context.Context, actor booking.Actor, bookingID string) (*models.PaymentOrder, error) {
	b, err := s.bookings.Get(ctx, bookingID, actor)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingPending {
		return nil, fmt.Errorf("%w: booking is %s", ErrNotPayable, b.Status)
	}

	ref := url.QueryEscape(b.ID)
	cancelToken := uuid.NewString()
	order, err := s.gateway.CreateOrder(ctx, OrderRequest{
		BookingID:   b.ID,
		UserID:      b.UserID,
		Description: fmt.Sprintf("Ground booking %s %s-%s", b.BookingDate, b.TimeSlot.StartTime, b.TimeSlot.EndTime),
		Amount:      b.Pricing.TotalAmount,
		Currency:    b.Pricing.Currency,
		// The gateway substitutes {CHECKOUT_SESSION_ID}; it must stay unescaped.
		SuccessURL: s.publicURL + "/api/payments/callback?booking_id=" + ref + "&order_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.publicURL + "/api/payments/cancel?booking_id=" + ref + "&token=" + cancelToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}
	if err := s.bookings.AttachPaymentOrder(ctx, b.ID, models.BookingPayment{
		Gateway:     s.gateway.Name(),
		OrderID:     order.OrderID,
		CancelToken: cancelToken,
	}); err != nil {
		return nil, err
	}
	s.logger.Info("Payment order created", zap.String("bookingId", b.ID), zap.String("orderId", order.OrderID))
	return order, nil
}

// HandleCallback settles a booking from the gateway's redirect and returns
// where to send the payer. The order status is always re-read from the
// gateway; query parameters only identify the order.
func (s *Service) HandleCallback(ctx context.Context, bookingID, orderID string) string {
	b, err := s.bookings.Get(ctx, bookingID, systemActor)
	if err != nil {
		s.logger.Warn("Payment callback for unknown booking", zap.String("bookingId", bookingID), zap.Error(err))
		return s.redirect(models.PaymentFailed, bookingID)
	}
	if orderID == "" || b.Payment.OrderID != orderID {
		s.logger.Warn("Payment callback order mismatch",
			zap.String("bookingId", bookingID),
			zap.String("orderId", orderID),
			zap.String("expected", b.Payment.OrderID))
		return s.redirect(models.PaymentFailed, bookingID)
	}

	status, err := s.gateway.OrderStatus(ctx, orderID)
	if err != nil {
		s.logger.Error("Payment status lookup failed", zap.String("orderId", orderID), zap.Error(err))
		return s.redirect(models.PaymentPending, bookingID)
	}

	switch status {
	case models.OrderPaid:
		if _, err := s.bookings.Confirm(ctx, bookingID, orderID); err != nil {
			// Paid but the hold is gone; needs a refund.
			s.logger.Error("Paid order could not confirm booking",
				zap.String("bookingId", bookingID), zap.String("orderId", orderID), zap.Error(err))
			return s.redirect(models.PaymentFailed, bookingID)
		}
		return s.redirect(models.PaymentSuccess, bookingID)
	case models.OrderFailed, models.OrderExpired:
		if b.Status == models.BookingPending {
			if _, err := s.bookings.FailPayment(ctx, bookingID, status, "payment "+strings.ToLower(string(status))); err != nil {
				s.logger.Warn("Could not cancel unpaid booking", zap.String("bookingId", bookingID), zap.Error(err))
			}
		}
		return s.redirect(models.PaymentFailed, bookingID)
	default:
		return s.redirect(models.PaymentPending, bookingID)
	}
}

// HandleCancel releases a pending booking whose payer left the checkout.
// token must be the cancel token issued with the booking's current order;
// anything else leaves the booking untouched.
func (s *Service) HandleCancel(ctx context.Context, bookingID, token string) string {
	b, err := s.bookings.Get(ctx, bookingID, systemActor)
	if err != nil {
		return s.redirect(models.PaymentFailed, bookingID)
	}
	if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(b.Payment.CancelToken)) != 1 {
		s.logger.Warn("Payment cancel with invalid token", zap.String("bookingId", bookingID))
		return s.redirect(models.PaymentFailed, bookingID)
	}
	switch b.Status {
	case models.BookingConfirmed, models.BookingCompleted:
		return s.redirect(models.PaymentSuccess, bookingID)
	case models.BookingPending:
		if _, err := s.bookings.FailPayment(ctx, bookingID, models.OrderCancelled, "payment cancelled by user"); err != nil {
			s.logger.Warn("Could not cancel booking after checkout abandon", zap.String("bookingId", bookingID), zap.Error(err))
		}
	}
	return s.redirect(models.PaymentCancelled, bookingID)
}

func (s *Service) redirect(outcome models.PaymentOutcome, bookingID string) string {
	q := url.Values{}
	q.Set("payment", string(outcome))
	if bookingID != "" {
		q.Set("bookingId", bookingID)
	}
	return s.frontendURL + "/?" + q.Encode()
}
