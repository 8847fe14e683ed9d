package booking

import (
	"math"
	"strings"

	"boxcric/models"
)

// CalculatePrice prices a slot at the ground's hourly rate less its
// percentage discount. Amounts are rounded to two decimals.
func CalculatePrice(ground models.Ground, slot models.TimeSlot, defaultCurrency string) models.BookingPricing {
	hours := slot.Duration().Hours()
	base := roundAmount(hours * ground.Price.PerHour)
	discount := roundAmount(base * ground.Price.Discount / 100)

	currency := ground.Price.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	return models.BookingPricing{
		Duration:    hours,
		PerHour:     ground.Price.PerHour,
		BaseAmount:  base,
		Discount:    discount,
		TotalAmount: roundAmount(base - discount),
		Currency:    strings.ToLower(currency),
	}
}

func roundAmount(v float64) float64 {
	return math.Round(v*100) / 100
}
