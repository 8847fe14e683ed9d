package handlers

import (
	"net/http"

	"boxcric/models"
	"boxcric/services/booking"
	"boxcric/services/ground"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler encapsulates ground approval and booking oversight.
type AdminHandler struct {
	Grounds  *ground.Service
	Bookings *booking.Service
}

func NewAdminHandler(grounds *ground.Service, bookings *booking.Service) *AdminHandler {
	return &AdminHandler{Grounds: grounds, Bookings: bookings}
}

// CreateGround handles POST /api/admin/grounds.
func (ah *AdminHandler) CreateGround(c *gin.Context) {
	var req ground.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid ground", "details": err.Error()})
		return
	}
	if req.OwnerID == "" {
		req.OwnerID = actorFrom(c).UserID
	}
	g, err := ah.Grounds.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, "Failed to create ground", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "ground": g})
}

// ListGrounds handles GET /api/admin/grounds across every status.
func (ah *AdminHandler) ListGrounds(c *gin.Context) {
	filter, err := groundFilterFrom(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid filter", "details": err.Error()})
		return
	}
	filter.Status = models.GroundStatus(c.Query("status"))
	grounds, err := ah.Grounds.ListAll(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "Failed to fetch grounds", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "grounds": grounds, "count": len(grounds)})
}

// UpdateGroundStatus handles PATCH /api/admin/grounds/:id/status.
func (ah *AdminHandler) UpdateGroundStatus(c *gin.Context) {
	var upd models.GroundStatusUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid status update", "details": err.Error()})
		return
	}
	g, err := ah.Grounds.UpdateStatus(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		respondError(c, "Failed to update ground", err)
		return
	}
	zap.L().Info("Ground status updated",
		zap.String("groundId", g.ID),
		zap.String("status", string(g.Status)),
		zap.Bool("verified", g.IsVerified),
		zap.String("by", actorFrom(c).UserID))
	c.JSON(http.StatusOK, gin.H{"success": true, "ground": g})
}

// UploadGroundImage handles POST /api/admin/grounds/:id/images (multipart field "image").
func (ah *AdminHandler) UploadGroundImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing image file"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Unreadable image file"})
		return
	}
	defer file.Close()

	imageURL, err := ah.Grounds.AddImage(c.Request.Context(), c.Param("id"), file, header.Filename)
	if err != nil {
		respondError(c, "Failed to upload image", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "url": imageURL})
}

// ListBookings handles GET /api/admin/bookings?groundId&date&status&userId.
func (ah *AdminHandler) ListBookings(c *gin.Context) {
	bookings, err := ah.Bookings.List(c.Request.Context(), models.BookingFilter{
		GroundID:    c.Query("groundId"),
		UserID:      c.Query("userId"),
		BookingDate: c.Query("date"),
		Status:      models.BookingStatus(c.Query("status")),
	})
	if err != nil {
		respondError(c, "Failed to fetch bookings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": bookings, "count": len(bookings)})
}
