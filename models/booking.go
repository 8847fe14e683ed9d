package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// ActiveStatuses are the states that hold a slot.
var ActiveStatuses = []BookingStatus{BookingPending, BookingConfirmed}

// IsActive reports whether a booking in this state counts against availability.
func (s BookingStatus) IsActive() bool {
	return s == BookingPending || s == BookingConfirmed
}

// IsTerminal reports whether no further transition is allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

type BookingPricing struct {
	Duration    float64 `bson:"duration" json:"duration"` // hours
	PerHour     float64 `bson:"perHour" json:"perHour"`
	BaseAmount  float64 `bson:"baseAmount" json:"baseAmount"`
	Discount    float64 `bson:"discount" json:"discount"`
	TotalAmount float64 `bson:"totalAmount" json:"totalAmount"`
	Currency    string  `bson:"currency" json:"currency"`
}

// BookingPayment references the gateway order that pays for a booking.
type BookingPayment struct {
	Gateway string     `bson:"gateway,omitempty" json:"gateway,omitempty"`
	OrderID string     `bson:"orderId,omitempty" json:"orderId,omitempty"`
	Status  string     `bson:"status,omitempty" json:"status,omitempty"`
	PaidAt  *time.Time `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	// CancelToken authorises the gateway's cancel redirect for this order.
	CancelToken string `bson:"cancelToken,omitempty" json:"-"`
}

type Cancellation struct {
	Reason      string    `bson:"reason" json:"reason"`
	CancelledBy string    `bson:"cancelledBy" json:"cancelledBy"` // user id, "admin" or "system"
	CancelledAt time.Time `bson:"cancelledAt" json:"cancelledAt"`
}

// Booking is one reservation of a ground for a window on a calendar date.
type Booking struct {
	ID           string         `bson:"id" json:"id"`
	GroundID     string         `bson:"groundId" json:"groundId"`
	UserID       string         `bson:"userId" json:"userId"`
	BookingDate  string         `bson:"bookingDate" json:"bookingDate"` // YYYY-MM-DD
	TimeSlot     TimeSlot       `bson:"timeSlot" json:"timeSlot"`
	Status       BookingStatus  `bson:"status" json:"status"`
	Pricing      BookingPricing `bson:"pricing" json:"pricing"`
	Payment      BookingPayment `bson:"payment" json:"payment"`
	Cancellation *Cancellation  `bson:"cancellation,omitempty" json:"cancellation,omitempty"`
	DeviceToken  string         `bson:"deviceToken,omitempty" json:"-"`
	CreatedAt    time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time      `bson:"updatedAt" json:"updatedAt"`
	ConfirmedAt  *time.Time     `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	CompletedAt  *time.Time     `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// BookingFilter is used by admin listings.
type BookingFilter struct {
	GroundID    string        `json:"groundId,omitempty"`
	UserID      string        `json:"userId,omitempty"`
	BookingDate string        `json:"bookingDate,omitempty"`
	Status      BookingStatus `json:"status,omitempty"`
}

// Matches applies the filter to a single booking.
func (f BookingFilter) Matches(b Booking) bool {
	if f.GroundID != "" && b.GroundID != f.GroundID {
		return false
	}
	if f.UserID != "" && b.UserID != f.UserID {
		return false
	}
	if f.BookingDate != "" && b.BookingDate != f.BookingDate {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	return true
}

// StatusChange describes a conditional status update: it applies only while
// the stored booking is still in From.
type StatusChange struct {
	From          BookingStatus
	To            BookingStatus
	At            time.Time
	Cancellation  *Cancellation
	PaymentStatus string
}

// Apply mutates b the way a store applies the change.
func (c StatusChange) Apply(b *Booking) {
	b.Status = c.To
	b.UpdatedAt = c.At
	switch c.To {
	case BookingConfirmed:
		at := c.At
		b.ConfirmedAt = &at
	case BookingCompleted:
		at := c.At
		b.CompletedAt = &at
	case BookingCancelled:
		b.Cancellation = c.Cancellation
	}
	if c.PaymentStatus != "" {
		b.Payment.Status = c.PaymentStatus
		if c.To == BookingConfirmed {
			at := c.At
			b.Payment.PaidAt = &at
		}
	}
}

// BookingEvent is what realtime subscribers and the event bus receive.
type BookingEvent struct {
	Type    string  `json:"type"`
	Booking Booking `json:"booking"`
}
