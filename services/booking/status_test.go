package booking

import (
	"testing"

	"boxcric/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	all := []models.BookingStatus{
		models.BookingPending, models.BookingConfirmed, models.BookingCancelled, models.BookingCompleted,
	}
	allowed := map[[2]models.BookingStatus]bool{
		{models.BookingPending, models.BookingConfirmed}:   true,
		{models.BookingPending, models.BookingCancelled}:   true,
		{models.BookingConfirmed, models.BookingCancelled}: true,
		{models.BookingConfirmed, models.BookingCompleted}: true,
	}
	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]models.BookingStatus{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
			if want {
				assert.NoError(t, checkTransition(from, to))
			} else {
				assert.ErrorIs(t, checkTransition(from, to), ErrInvalidTransition)
			}
		}
	}
}

func TestCalculatePrice(t *testing.T) {
	ground := models.Ground{Price: models.GroundPrice{PerHour: 1200, Discount: 10}}

	p := CalculatePrice(ground, models.TimeSlot{StartTime: "18:00", EndTime: "19:30"}, "INR")
	assert.Equal(t, 1.5, p.Duration)
	assert.Equal(t, 1800.0, p.BaseAmount)
	assert.Equal(t, 180.0, p.Discount)
	assert.Equal(t, 1620.0, p.TotalAmount)
	assert.Equal(t, "inr", p.Currency)
}
