package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/arthemi/roombook/internal/handler"    // import the handlers that implement business logic
	"github.com/arthemi/roombook/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers unauthenticated browse endpoints.  The handler
// exposes sanitized availability data only: room metadata and occupied
// intervals, never booking ownership.  These routes are the cacheable ones;
// the response cache middleware is applied by the caller.
func RegisterPublic(e *echo.Echo, p *handler.AvailabilityHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if cache != nil {
		g.Use(cache)
	}
	// Expose the list of bookable rooms
	g.GET("/rooms", p.ListRooms)
	// Occupied intervals of one room over a date range
	g.GET("/rooms/:id/busy", p.BusySlots)
}

// RegisterBookings registers the authenticated customer endpoints under /v1.
// All routes require a valid access token; ownership checks happen inside
// the engine.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1")
	// Apply the JWTAuth middleware to the protected group using the provided secret.
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("CUSTOMER", "ADMIN"))

	g.POST("/bookings", b.Create)
	g.GET("/bookings", b.List)
	g.GET("/bookings/:id", b.Get)
	g.POST("/bookings/:id/cancel", b.Cancel)
	g.GET("/credits", b.CreditList)
	g.GET("/credits/balance", b.CreditBalance)
}

// RegisterAdmin registers the staff endpoints under /v1/admin.  The role
// middleware rejects non-admin tokens before any handler runs.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))

	g.PATCH("/bookings/:id", a.Edit)
	g.POST("/bookings/:id/cancel", a.Cancel)
	g.POST("/bookings/courtesy", a.CreateCourtesy)
	g.POST("/credits", a.GrantCredit)
}

// RegisterInternal registers operational endpoints that are driven by
// schedulers rather than users.  They authenticate with a shared secret
// header instead of a JWT.
func RegisterInternal(e *echo.Echo, s *handler.SweepHandler) {
	e.POST("/internal/sweep", s.Run)
}
