package payment

import (
	"context"
	"fmt"
	"math"
	"strings"

	"boxcric/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// StripeGateway opens Stripe Checkout sessions. The API key is the global
// stripe.Key set at startup.
type StripeGateway struct{}

func NewStripeGateway() *StripeGateway { return &StripeGateway{} }

func (g *StripeGateway) Name() string { return "stripe" }

func (g *StripeGateway) CreateOrder(ctx context.Context, req OrderRequest) (*models.PaymentOrder, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.BookingID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(req.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(minorUnits(req.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("bookingId", req.BookingID)
	params.AddMetadata("userId", req.UserID)

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session failed: %w", err)
	}
	return &models.PaymentOrder{
		OrderID:     s.ID,
		BookingID:   req.BookingID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		CheckoutURL: s.URL,
	}, nil
}

func (g *StripeGateway) OrderStatus(ctx context.Context, orderID string) (models.OrderStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := session.Get(orderID, params)
	if err != nil {
		return "", fmt.Errorf("stripe session lookup failed: %w", err)
	}
	switch {
	case s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		s.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return models.OrderPaid, nil
	case s.Status == stripe.CheckoutSessionStatusExpired:
		return models.OrderExpired, nil
	default:
		return models.OrderActive, nil
	}
}

// minorUnits converts an amount to the currency's smallest unit (paise for INR).
func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
