package handlers

import (
	"net/http"
	"time"

	"boxcric/utils"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	Environment string
	Monitor     *utils.HealthMonitor
}

func NewHealthHandler(env string, monitor *utils.HealthMonitor) *HealthHandler {
	return &HealthHandler{Environment: env, Monitor: monitor}
}

// Root handles GET /.
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":     "BoxCric API Server is running",
		"status":      "healthy",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.Environment,
		"version":     utils.APIVersion,
	})
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(c *gin.Context) {
	status := h.Monitor.Status(c.Request.Context())
	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
