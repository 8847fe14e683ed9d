package handlers

import (
	"errors"
	"net/http"

	"boxcric/database/repository"
	"boxcric/middleware"
	"boxcric/services/availability"
	"boxcric/services/booking"
	"boxcric/services/ground"
	"boxcric/services/payment"
	"boxcric/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, availability.ErrGroundUnavailable),
		errors.Is(err, ground.ErrGroundNotFound),
		errors.Is(err, booking.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, availability.ErrInvalidTimeRange),
		errors.Is(err, ground.ErrInvalidGround),
		errors.Is(err, booking.ErrSlotInPast):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrSlotTaken),
		errors.Is(err, repository.ErrStatusChanged),
		errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, payment.ErrNotPayable):
		return http.StatusConflict
	case errors.Is(err, booking.ErrCancellationClosed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, availability.ErrStoreUnavailable),
		errors.Is(err, ground.ErrUploadsDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Slot conflicts carry the ids
// of the blocking bookings.
func respondError(c *gin.Context, message string, err error) {
	status := statusFor(err)

	var conflict *repository.SlotConflictError
	if errors.As(err, &conflict) {
		c.AbortWithStatusJSON(status, gin.H{
			"success":   false,
			"message":   "Time slot is already booked",
			"conflicts": conflict.Conflicts,
		})
		return
	}

	if status == http.StatusInternalServerError {
		// Internal causes are logged, not returned.
		utils.GetLogger().Error(message, zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(status, utils.ErrorResponse{Message: message})
		return
	}
	utils.JSONError(c, status, message, err.Error())
}

func actorFrom(c *gin.Context) booking.Actor {
	return booking.Actor{
		UserID: c.GetString(middleware.ContextUserID),
		Admin:  c.GetString(middleware.ContextRole) == utils.RoleAdmin,
	}
}
