package payment

import (
	"context"

	"boxcric/models"
)

// OrderRequest describes the hosted checkout to open for a booking.
type OrderRequest struct {
	BookingID   string
	UserID      string
	Description string
	Amount      float64
	Currency    string
	SuccessURL  string
	CancelURL   string
}

// Gateway is a hosted-checkout payment provider.
type Gateway interface {
	Name() string
	CreateOrder(ctx context.Context, req OrderRequest) (*models.PaymentOrder, error)
	// OrderStatus asks the provider for the authoritative state of an order.
	OrderStatus(ctx context.Context, orderID string) (models.OrderStatus, error)
}
