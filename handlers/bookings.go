package handlers

import (
	"net/http"

	"boxcric/services/booking"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	Bookings *booking.Service
}

func NewBookingHandler(bookings *booking.Service) *BookingHandler {
	return &BookingHandler{Bookings: bookings}
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req booking.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid booking request", "details": err.Error()})
		return
	}
	b, err := h.Bookings.Create(c.Request.Context(), actorFrom(c).UserID, req)
	if err != nil {
		respondError(c, "Failed to create booking", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "booking": b})
}

// MyBookings handles GET /api/bookings/my.
func (h *BookingHandler) MyBookings(c *gin.Context) {
	bookings, err := h.Bookings.ListForUser(c.Request.Context(), actorFrom(c).UserID)
	if err != nil {
		respondError(c, "Failed to fetch bookings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": bookings})
}

// GetBooking handles GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.Bookings.Get(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		respondError(c, "Failed to fetch booking", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": b})
}

// CancelBooking handles PUT /api/bookings/:id/cancel for the owner and
// PUT /api/admin/bookings/:id/cancel for admins.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var req cancelRequest
	// The body is optional.
	_ = c.ShouldBindJSON(&req)

	b, err := h.Bookings.Cancel(c.Request.Context(), c.Param("id"), actorFrom(c), req.Reason)
	if err != nil {
		respondError(c, "Failed to cancel booking", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": b})
}
