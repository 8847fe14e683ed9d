package models

// OrderStatus is the gateway-side state of a checkout order.
type OrderStatus string

const (
	OrderPaid    OrderStatus = "PAID"
	OrderActive  OrderStatus = "ACTIVE"
	OrderFailed  OrderStatus = "FAILED"
	OrderExpired OrderStatus = "EXPIRED"

	// OrderCancelled is recorded when the payer abandons checkout.
	OrderCancelled OrderStatus = "CANCELLED"
)

// PaymentOrder is a hosted checkout created for a booking.
type PaymentOrder struct {
	OrderID     string  `json:"orderId"`
	BookingID   string  `json:"bookingId"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	CheckoutURL string  `json:"checkoutUrl"`
}

// PaymentOutcome is the value of the ?payment= query the frontend receives.
type PaymentOutcome string

const (
	PaymentSuccess   PaymentOutcome = "success"
	PaymentFailed    PaymentOutcome = "failed"
	PaymentPending   PaymentOutcome = "pending"
	PaymentCancelled PaymentOutcome = "cancelled"
)
