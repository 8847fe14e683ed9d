package routes

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"boxcric/handlers"
	"boxcric/middleware"
	"boxcric/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options are the router settings that come from configuration.
type Options struct {
	AllowedOrigins []string
	Production     bool
	StaticDir      string
}

// RegisterGroundRoutes registers the public catalogue and availability endpoints.
func RegisterGroundRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/grounds")
	{
		api.GET("", hb.Grounds.ListGrounds)
		api.GET("/:id", hb.Grounds.GetGround)
		api.GET("/:id/availability", hb.Grounds.CheckAvailability)
		api.GET("/:id/slots", hb.Grounds.BookedSlots)
	}
}

// RegisterBookingRoutes registers the authenticated booking endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.JWTSecret))
		api.POST("", hb.Bookings.CreateBooking)
		api.GET("/my", hb.Bookings.MyBookings)
		api.GET("/:id", hb.Bookings.GetBooking)
		api.PUT("/:id/cancel", hb.Bookings.CancelBooking)
	}
}

// RegisterPaymentRoutes registers checkout creation and the gateway return URLs.
// The return URLs are hit by the payer's browser and carry no token.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.GET("/callback", hb.Payments.Callback)
		api.GET("/cancel", hb.Payments.Cancel)
		api.POST("/create-order", middleware.JWTAuthMiddleware(hb.JWTSecret), hb.Payments.CreateOrder)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.JWTAuthAdminMiddleware(hb.JWTSecret)...)
		adminGroup.GET("/grounds", hb.Admin.ListGrounds)
		adminGroup.POST("/grounds", hb.Admin.CreateGround)
		adminGroup.PATCH("/grounds/:id/status", hb.Admin.UpdateGroundStatus)
		adminGroup.POST("/grounds/:id/images", hb.Admin.UploadGroundImage)
		adminGroup.GET("/bookings", hb.Admin.ListBookings)
		adminGroup.PUT("/bookings/:id/cancel", hb.Bookings.CancelBooking)
	}
}

// RegisterRealtimeRoutes registers the websocket room endpoint.
func RegisterRealtimeRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/ws/grounds/:id", hb.Realtime.HandleGround)
}

// RegisterHealthRoutes registers the root banner and the health check.
func RegisterHealthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/", hb.Health.Root)
	r.GET("/api/health", hb.Health.Health)
}

// RegisterFallback answers unmatched paths. In production non-API GET
// requests are served from the built frontend, falling back to index.html
// for client-side routes.
func RegisterFallback(r *gin.Engine, opts Options) {
	r.NoRoute(func(c *gin.Context) {
		p := c.Request.URL.Path
		isAPI := strings.HasPrefix(p, "/api") || strings.HasPrefix(p, "/ws")
		isRead := c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead
		if !opts.Production || opts.StaticDir == "" || isAPI || !isRead {
			utils.NotFound(c)
			return
		}

		file := filepath.Join(opts.StaticDir, filepath.FromSlash(filepath.Clean("/"+p)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		c.File(filepath.Join(opts.StaticDir, "index.html"))
	})
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	RegisterHealthRoutes(r, hb)
	RegisterGroundRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterRealtimeRoutes(r, hb)
	RegisterFallback(r, opts)
}
