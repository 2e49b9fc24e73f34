package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"glampstay/internal/infra/config"
	"glampstay/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Cancel(c *gin.Context)
}

type PropertyHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Quote(c *gin.Context)
	Availability(c *gin.Context)
	Policies(c *gin.Context)
}

type AdminHTTP interface {
	CreateProperty(c *gin.Context)
	UpdateRates(c *gin.Context)
	UploadPhoto(c *gin.Context)
	SetPropertyState(c *gin.Context)
	ListBookings(c *gin.Context)
	ConfirmBooking(c *gin.Context)
	CompleteBooking(c *gin.Context)
	RecordPayment(c *gin.Context)
}

type MeHTTP interface {
	ListBookings(c *gin.Context)
	RegisterDevice(c *gin.Context)
	RemoveDevice(c *gin.Context)
}

type ContactHTTP interface {
	Submit(c *gin.Context)
}

type OpsHTTP interface {
	RequireOpsKey(c *gin.Context)
	SweepReminders(c *gin.Context)
}

// RateLimits holds the per-route budgets. A nil Limiter disables limiting.
type RateLimits struct {
	Limiter  Limiter
	Fallback Limiter
	Booking  RateLimitPolicy
	Default  RateLimitPolicy
}

type Handlers struct {
	Booking        BookingHTTP
	Property       PropertyHTTP
	Admin          AdminHTTP
	Me             MeHTTP
	Contact        ContactHTTP
	Ops            OpsHTTP
	AuthMiddleware gin.HandlerFunc
	RateLimits     RateLimits
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the gin engine. Tests drive it directly through httptest.
func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key", opsKeyHeader},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
			"Retry-After",
		},
		MaxAge: 12 * time.Hour,
	}))

	if registerAPIDocs(router, cfg.Env) && obsMW.Logger != nil {
		obsMW.Logger.Debug("api docs enabled", "path", docsPath)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	rl := h.RateLimits
	defaultLimit := RateLimit(rl.Limiter, rl.Fallback, rl.Default, obsMW.Logger)
	bookingLimit := RateLimit(rl.Limiter, rl.Fallback, rl.Booking, obsMW.Logger)

	api := router.Group("/api/v1")
	api.Use(defaultLimit)
	if h.AuthMiddleware != nil {
		api.Use(h.AuthMiddleware)
	}
	if h.Property != nil {
		api.GET("/properties", h.Property.List)
		api.GET("/properties/:id", h.Property.Get)
		api.GET("/properties/:id/quote", h.Property.Quote)
		api.GET("/properties/:id/availability", h.Property.Availability)
		api.GET("/policies", h.Property.Policies)
	}
	if h.Booking != nil {
		api.POST("/bookings/create", bookingLimit, h.Booking.Create)
		api.POST("/bookings", bookingLimit, h.Booking.Create)
		api.POST("/bookings/cancel", bookingLimit, h.Booking.Cancel)
		api.GET("/bookings/:id", h.Booking.Get)
		api.PATCH("/bookings/:id", h.Booking.Update)
		api.POST("/bookings/:id/cancel", bookingLimit, h.Booking.Cancel)
	}
	if h.Me != nil {
		meGroup := api.Group("/me")
		meGroup.GET("/bookings", h.Me.ListBookings)
		meGroup.POST("/devices", h.Me.RegisterDevice)
		meGroup.DELETE("/devices/:token", h.Me.RemoveDevice)
	}
	if h.Contact != nil {
		api.POST("/contact", bookingLimit, h.Contact.Submit)
	}
	if h.Admin != nil {
		admin := api.Group("/admin")
		admin.POST("/properties", h.Admin.CreateProperty)
		admin.PUT("/properties/:id/rates", h.Admin.UpdateRates)
		admin.POST("/properties/:id/photos", h.Admin.UploadPhoto)
		admin.PATCH("/properties/:id", h.Admin.SetPropertyState)
		admin.GET("/bookings", h.Admin.ListBookings)
		admin.POST("/bookings/:id/confirm", h.Admin.ConfirmBooking)
		admin.POST("/bookings/:id/complete", h.Admin.CompleteBooking)
		admin.POST("/bookings/:id/payment", h.Admin.RecordPayment)
	}
	if h.Ops != nil {
		internal := router.Group("/internal", h.Ops.RequireOpsKey)
		internal.POST("/reminders/sweep", h.Ops.SweepReminders)
	}

	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
