package handlers

import (
	"net/http"
	"strconv"

	"boxcric/models"
	"boxcric/services/availability"
	"boxcric/services/ground"
	"boxcric/utils"

	"github.com/gin-gonic/gin"
)

// GroundHandler serves the public ground catalogue and availability queries.
type GroundHandler struct {
	Grounds *ground.Service
	Checker *availability.Checker
}

func NewGroundHandler(grounds *ground.Service, checker *availability.Checker) *GroundHandler {
	return &GroundHandler{Grounds: grounds, Checker: checker}
}

// ListGrounds handles GET /api/grounds.
func (h *GroundHandler) ListGrounds(c *gin.Context) {
	filter, err := groundFilterFrom(c)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}
	grounds, usedCache, err := h.Grounds.ListActive(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "Failed to fetch grounds", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"grounds":   grounds,
		"count":     len(grounds),
		"usedCache": usedCache,
	})
}

// GetGround handles GET /api/grounds/:id.
func (h *GroundHandler) GetGround(c *gin.Context) {
	g, err := h.Grounds.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to fetch ground", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "ground": g})
}

// CheckAvailability handles GET /api/grounds/:id/availability?date&startTime&endTime.
func (h *GroundHandler) CheckAvailability(c *gin.Context) {
	res, err := h.Checker.IsSlotAvailable(c.Request.Context(),
		c.Param("id"), c.Query("date"), c.Query("startTime"), c.Query("endTime"))
	if err != nil {
		respondError(c, "Failed to check availability", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"available": res.Available,
		"conflicts": res.Conflicts,
	})
}

// BookedSlots handles GET /api/grounds/:id/slots?date.
func (h *GroundHandler) BookedSlots(c *gin.Context) {
	date := c.Query("date")
	slots, err := h.Checker.ListBookedSlots(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		respondError(c, "Failed to fetch booked slots", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"date":        date,
		"bookedSlots": slots,
	})
}

func groundFilterFrom(c *gin.Context) (models.GroundFilter, error) {
	f := models.GroundFilter{
		CityID: c.Query("cityId"),
		Search: c.Query("search"),
	}
	var err error
	if v := c.Query("minPrice"); v != "" {
		if f.MinPrice, err = strconv.ParseFloat(v, 64); err != nil {
			return f, err
		}
	}
	if v := c.Query("maxPrice"); v != "" {
		if f.MaxPrice, err = strconv.ParseFloat(v, 64); err != nil {
			return f, err
		}
	}
	return f, nil
}
