package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"plek/internal/infra/config"
	"plek/internal/infra/obs"
)

type AuthHTTP interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
}

type AvailabilityHTTP interface {
	Check(c *gin.Context)
	UnavailableDates(c *gin.Context)
}

type EstimateHTTP interface {
	Request(c *gin.Context)
	Get(c *gin.Context)
	Confirm(c *gin.Context)
	ListMine(c *gin.Context)
}

type BookingHTTP interface {
	ListMine(c *gin.Context)
	ListForProperty(c *gin.Context)
	CreateDirect(c *gin.Context)
	Delete(c *gin.Context)
}

type PropertyHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	ListForHost(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type Handlers struct {
	Auth           AuthHTTP
	Availability   AvailabilityHTTP
	Estimate       EstimateHTTP
	Booking        BookingHTTP
	Property       PropertyHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	registerValidations()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Property != nil {
		api.GET("/properties", h.Property.List)
		api.GET("/properties/:id", h.Property.Get)
	}
	if h.Availability != nil {
		api.GET("/properties/:id/availability", h.Availability.Check)
		api.GET("/properties/:id/unavailable-dates", h.Availability.UnavailableDates)
	}
	if h.Estimate != nil {
		api.POST("/estimates", h.Estimate.Request)
		api.GET("/estimates/:id", h.Estimate.Get)
		api.POST("/estimates/:id/confirm", h.Estimate.Confirm)
		api.GET("/me/estimates", h.Estimate.ListMine)
	}
	if h.Booking != nil {
		api.GET("/me/bookings", h.Booking.ListMine)
	}
	if h.Property != nil || h.Booking != nil {
		hostGroup := api.Group("/host")
		if h.Property != nil {
			hostGroup.GET("/properties", h.Property.ListForHost)
			hostGroup.POST("/properties", h.Property.Create)
			hostGroup.GET("/properties/:id", h.Property.Get)
			hostGroup.PUT("/properties/:id", h.Property.Update)
			hostGroup.DELETE("/properties/:id", h.Property.Delete)
		}
		if h.Booking != nil {
			hostGroup.GET("/properties/:id/bookings", h.Booking.ListForProperty)
			hostGroup.POST("/bookings", h.Booking.CreateDirect)
			hostGroup.DELETE("/bookings/:id", h.Booking.Delete)
		}
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
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
