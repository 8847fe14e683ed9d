package payment_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"boxcric/database/repository/memstore"
	"boxcric/models"
	"boxcric/services/booking"
	"boxcric/services/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGateway struct {
	created   []payment.OrderRequest
	statuses  map[string]models.OrderStatus
	lookupErr error
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) CreateOrder(_ context.Context, req payment.OrderRequest) (*models.PaymentOrder, error) {
	g.created = append(g.created, req)
	id := "order_" + req.BookingID
	g.statuses[id] = models.OrderActive
	return &models.PaymentOrder{OrderID: id, BookingID: req.BookingID, Amount: req.Amount, Currency: req.Currency,
		CheckoutURL: "https://pay.example.com/" + id}, nil
}

func (g *fakeGateway) OrderStatus(_ context.Context, orderID string) (models.OrderStatus, error) {
	if g.lookupErr != nil {
		return "", g.lookupErr
	}
	return g.statuses[orderID], nil
}

type fixture struct {
	payments *payment.Service
	bookings *booking.Service
	gateway  *fakeGateway
	now      time.Time
}

const pendingTimeout = 15 * time.Minute

func newFixture(t *testing.T) *fixture {
	t.Helper()
	grounds := memstore.NewGroundRepo(models.Ground{
		ID: "g1", Name: "Green Park Box", Status: models.GroundActive,
		Price: models.GroundPrice{PerHour: 1500, Currency: "INR"},
	})
	f := &fixture{
		gateway: &fakeGateway{statuses: map[string]models.OrderStatus{}},
		now:     time.Date(2024, 5, 30, 9, 0, 0, 0, time.UTC),
	}
	f.bookings = booking.NewService(grounds, memstore.NewBookingRepo(), booking.Settings{
		PendingTimeout: pendingTimeout, CancellationCutoff: 2 * time.Hour, Location: time.UTC,
	}, zap.NewNop(), booking.WithClock(func() time.Time { return f.now }))
	f.payments = payment.NewService(f.gateway, f.bookings, "https://api.boxcric.test/", "https://boxcric.test", zap.NewNop())
	return f
}

// cancelToken extracts the token the gateway would send back on abandon.
func cancelToken(t *testing.T, req payment.OrderRequest) string {
	t.Helper()
	u, err := url.Parse(req.CancelURL)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func (f *fixture) pending(t *testing.T) *models.Booking {
	t.Helper()
	b, err := f.bookings.Create(context.Background(), "u1", booking.CreateRequest{
		GroundID: "g1", BookingDate: "2024-06-01",
		TimeSlot: models.TimeSlot{StartTime: "18:00", EndTime: "19:00"},
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) status(t *testing.T, id string) models.BookingStatus {
	t.Helper()
	b, err := f.bookings.Get(context.Background(), id, booking.Actor{Admin: true})
	require.NoError(t, err)
	return b.Status
}

func outcome(t *testing.T, redirect string) (string, string) {
	t.Helper()
	u, err := url.Parse(redirect)
	require.NoError(t, err)
	assert.Equal(t, "boxcric.test", u.Host)
	return u.Query().Get("payment"), u.Query().Get("bookingId")
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)
	b := f.pending(t)

	_, err := f.payments.CreateOrder(context.Background(), booking.Actor{UserID: "u2"}, b.ID)
	assert.ErrorIs(t, err, booking.ErrForbidden)

	order, err := f.payments.CreateOrder(context.Background(), booking.Actor{UserID: "u1"}, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "order_"+b.ID, order.OrderID)
	assert.Equal(t, 1500.0, order.Amount)

	req := f.gateway.created[0]
	assert.Equal(t, "https://api.boxcric.test/api/payments/callback?booking_id="+b.ID+"&order_id={CHECKOUT_SESSION_ID}", req.SuccessURL)
	token := cancelToken(t, req)
	assert.Len(t, token, 36)
	assert.Equal(t, "https://api.boxcric.test/api/payments/cancel?booking_id="+b.ID+"&token="+token, req.CancelURL)

	stored, err := f.bookings.Get(context.Background(), b.ID, booking.Actor{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "fake", stored.Payment.Gateway)
	assert.Equal(t, order.OrderID, stored.Payment.OrderID)
	assert.Equal(t, token, stored.Payment.CancelToken)
}

func TestCreateOrder_ExpiredHoldIsNotPayable(t *testing.T) {
	f := newFixture(t)
	b := f.pending(t)
	f.now = f.now.Add(pendingTimeout + time.Minute)

	_, err := f.payments.CreateOrder(context.Background(), booking.Actor{UserID: "u1"}, b.ID)
	assert.ErrorIs(t, err, payment.ErrNotPayable)
	assert.Empty(t, f.gateway.created)
	assert.Equal(t, models.BookingCancelled, f.status(t, b.ID))
}

func TestCallback_PaidAfterHoldExpiredDoesNotConfirm(t *testing.T) {
	f := newFixture(t)
	b := f.pending(t)
	order, err := f.payments.CreateOrder(context.Background(), booking.Actor{UserID: "u1"}, b.ID)
	require.NoError(t, err)
	f.gateway.statuses[order.OrderID] = models.OrderPaid
	f.now = f.now.Add(pendingTimeout + time.Minute)

	got, _ := outcome(t, f.payments.HandleCallback(context.Background(), b.ID, order.OrderID))
	assert.Equal(t, "failed", got)
	assert.Equal(t, models.BookingCancelled, f.status(t, b.ID))
}

func TestCallback_PaidConfirms(t *testing.T) {
	f := newFixture(t)
	b := f.pending(t)
	order, err := f.payments.CreateOrder(context.Background(), booking.Actor{UserID: "u1"}, b.ID)
	require.NoError(t, err)
	f.gateway.statuses[order.OrderID] = models.OrderPaid

	got, id := outcome(t, f.payments.HandleCallback(context.Background(), b.ID, order.OrderID))
	assert.Equal(t, "success", got)
	assert.Equal(t, b.ID, id)
	assert.Equal(t, models.BookingConfirmed, f.status(t, b.ID))

	// A replayed callback is harmless.
	got, _ = outcome(t, f.payments.HandleCallback(context.Background(), b.ID, order.OrderID))
	assert.Equal(t, "success", got)

	_, err = f.payments.CreateOrder(context.Background(), booking.Actor{UserID: "u1"}, b.ID)
	assert.ErrorIs(t, err, payment.ErrNotPayable)
}

func TestCallback_MismatchedOrderChangesNothing(t *testing.T) {
	f := newFixture(t)
	b := f.pending(t)
	order, err := f.payments.CreateOrder(context.Background(), booking.Actor{UserID: "u1"}, b.ID)
	require.NoError(t, err)
	f.gateway.statuses["order_forged"] = models.OrderPaid
	f.gateway.statuses[order.OrderID] = models.OrderPaid

	got, _ := outcome(t, f.payments.HandleCallback(context.Background(), b.ID, "order_forged"))
	assert.Equal(t, "failed", got)
	assert.Equal(t, models.BookingPending, f.status(t, b.ID))

	got, _ = outcome(t, f.payments.HandleCallback(context.Background(), "missing", order.OrderID))
	assert.Equal(t, "failed", got)
}

func TestCallback_FailedAndActive(t *testing.T) {
	f := newFixture(t)
	b := f.pending(t)
	order, err := f.payments.CreateOrder(context.Background(), booking.Actor{UserID: "u1"}, b.ID)
	require.NoError(t, err)

	got, _ := outcome(t, f.payments.HandleCallback(context.Background(), b.ID, order.OrderID))
	assert.Equal(t, "pending", got)
	assert.Equal(t, models.BookingPending, f.status(t, b.ID))

	f.gateway.lookupErr = errors.New("gateway timeout")
	got, _ = outcome(t, f.payments.HandleCallback(context.Background(), b.ID, order.OrderID))
	assert.Equal(t, "pending", got)
	f.gateway.lookupErr = nil

	f.gateway.statuses[order.OrderID] = models.OrderFailed
	got, _ = outcome(t, f.payments.HandleCallback(context.Background(), b.ID, order.OrderID))
	assert.Equal(t, "failed", got)
	assert.Equal(t, models.BookingCancelled, f.status(t, b.ID))
}

func TestHandleCancel_RequiresToken(t *testing.T) {
	f := newFixture(t)
	b := f.pending(t)

	// No order yet, so there is no token to match.
	got, _ := outcome(t, f.payments.HandleCancel(context.Background(), b.ID, ""))
	assert.Equal(t, "failed", got)
	assert.Equal(t, models.BookingPending, f.status(t, b.ID))

	_, err := f.payments.CreateOrder(context.Background(), booking.Actor{UserID: "u1"}, b.ID)
	require.NoError(t, err)

	for _, token := range []string{"", "order_" + b.ID, "not-the-token"} {
		got, _ = outcome(t, f.payments.HandleCancel(context.Background(), b.ID, token))
		assert.Equal(t, "failed", got, "token %q", token)
		assert.Equal(t, models.BookingPending, f.status(t, b.ID))
	}
}

func TestHandleCancel(t *testing.T) {
	f := newFixture(t)
	b := f.pending(t)
	_, err := f.payments.CreateOrder(context.Background(), booking.Actor{UserID: "u1"}, b.ID)
	require.NoError(t, err)

	got, _ := outcome(t, f.payments.HandleCancel(context.Background(), b.ID, cancelToken(t, f.gateway.created[0])))
	assert.Equal(t, "cancelled", got)

	stored, err := f.bookings.Get(context.Background(), b.ID, booking.Actor{Admin: true})
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, stored.Status)
	assert.Equal(t, "CANCELLED", stored.Payment.Status)
}
