// Package router wires handlers and middleware into the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/menfistoo/purobeach/internal/config"
	"github.com/menfistoo/purobeach/internal/handler"
	"github.com/menfistoo/purobeach/internal/middleware"
)

// Deps collects everything the routes need.
type Deps struct {
	Reservations *handler.ReservationHandler
	Catalog      *handler.CatalogHandler
	DB           handler.Pinger
	JWTSecret    string
	RateLimit    config.RateLimitConfig
	Cache        config.CacheConfig
	Redis        *redis.Client // nil disables rate limiting and caching
	Log          *zap.Logger
}

// New builds the Echo instance with the global middleware and every
// route registered.
func New(d Deps) *echo.Echo {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log.Named("http")))

	RegisterRoutes(e, d.DB)
	api := e.Group("/v1",
		middleware.JWTAuth(d.JWTSecret),
		middleware.RequireRole(middleware.RoleStaff, middleware.RoleAdmin),
		middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log.Named("ratelimit")),
	)
	RegisterReservations(api, d.Reservations)
	RegisterCatalog(api, d.Catalog, middleware.NewRedisCache(d.Cache, d.Redis, d.Log.Named("cache")))
	return e
}

// RegisterRoutes registers the unauthenticated probes.  /readyz is only
// mounted when a database handle is supplied.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	if db != nil {
		e.GET("/readyz", handler.Ready(db))
	}
}
