// File: handlers/bundle.go
package handlers

import (
	"boxcric/realtime"
)

// HandlerBundle groups all endpoint handlers for route registration.
type HandlerBundle struct {
	JWTSecret string

	Grounds  *GroundHandler
	Bookings *BookingHandler
	Payments *PaymentHandler
	Admin    *AdminHandler
	Health   *HealthHandler
	Realtime *realtime.Hub
}
