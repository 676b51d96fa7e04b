// Package router wires the HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ravshanbk/asset-reservation/internal/config"
	"github.com/ravshanbk/asset-reservation/internal/handler"
	"github.com/ravshanbk/asset-reservation/internal/middleware"
)

// Handlers bundles everything RegisterRoutes needs.
type Handlers struct {
	Booking  *handler.BookingHandler
	Admin    *handler.AdminHandler
	Asset    *handler.AssetHandler
	Calendar *handler.CalendarHandler
}

// RegisterRoutes sets up the public health check, the authenticated
// booking surface and the admin group. Calendar reads sit behind the
// Redis response cache; everything authenticated sits behind the rate
// limiter. rdb may be nil, which disables caching and rate limiting.
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))
	v1.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))
	v1.Use(middleware.RequireRole("MEMBER", "ADMIN"))

	// Linked-asset disclosure, shown before a requester confirms.
	v1.GET("/assets/:id/linked", h.Asset.LinkedAssets)

	// Booking lifecycle.
	v1.POST("/assets/:id/reservations", h.Booking.CreateBooking)
	v1.GET("/my-reservations", h.Booking.ListMyReservations)
	v1.GET("/reservations/:id", h.Booking.GetReservation)
	v1.PATCH("/reservations/:id", h.Booking.EditReservation)
	v1.POST("/reservations/:id/extend", h.Booking.ExtendReservation)

	// Calendar and availability reads, cached.
	cached := middleware.ResponseCache(config.LoadCacheConfig(), rdb)
	v1.GET("/assets/:id/availability", h.Calendar.Availability, cached)
	v1.GET("/calendar/:view", h.Calendar.Calendar, cached)

	// Administrative decisions and listings.
	admin := v1.Group("", middleware.RequireRole("ADMIN"))
	admin.POST("/reservations/:id/decision", h.Admin.DecideReservation)
	admin.GET("/admin/assets/:id/reservations", h.Admin.ListAssetReservations)
}
