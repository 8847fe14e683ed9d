package handlers

import (
	"net/http"

	"boxcric/services/payment"

	"github.com/gin-gonic/gin"
)

// PaymentHandler drives hosted checkout. Payments is nil when no gateway is
// configured.
type PaymentHandler struct {
	Payments *payment.Service
}

func NewPaymentHandler(payments *payment.Service) *PaymentHandler {
	return &PaymentHandler{Payments: payments}
}

type createOrderRequest struct {
	BookingID string `json:"bookingId" binding:"required"`
}

// CreateOrder handles POST /api/payments/create-order.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	if h.Payments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Payments are not configured"})
		return
	}
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "bookingId is required"})
		return
	}
	order, err := h.Payments.CreateOrder(c.Request.Context(), actorFrom(c), req.BookingID)
	if err != nil {
		respondError(c, "Failed to create payment order", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// Callback handles GET /api/payments/callback?booking_id&order_id.
func (h *PaymentHandler) Callback(c *gin.Context) {
	if h.Payments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Payments are not configured"})
		return
	}
	target := h.Payments.HandleCallback(c.Request.Context(), c.Query("booking_id"), c.Query("order_id"))
	c.Redirect(http.StatusFound, target)
}

// Cancel handles GET /api/payments/cancel?booking_id&token.
func (h *PaymentHandler) Cancel(c *gin.Context) {
	if h.Payments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Payments are not configured"})
		return
	}
	target := h.Payments.HandleCancel(c.Request.Context(), c.Query("booking_id"), c.Query("token"))
	c.Redirect(http.StatusFound, target)
}
