package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/rushgit99x/StarTickets-F-sub001/internal/config"
	"github.com/rushgit99x/StarTickets-F-sub001/internal/handler"
	"github.com/rushgit99x/StarTickets-F-sub001/internal/middleware"
)

// RegisterBooking registers the booking, payment and ticket-delivery
// endpoints under /v1.  All routes require a valid JWT; customers and
// organizers may both book.  The booking and payment writes carry the
// Redis token-bucket limiter so a stampede on a popular event degrades
// into 429s instead of database pressure.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, p *handler.PaymentHandler, t *handler.TicketHandler, jwtSecret string, rdb *redis.Client) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER", "ORGANIZER"),
	)

	limited := g.Group("", middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	// Booking flow: prepare shows categories and remaining capacity,
	// process creates the pending booking, payment settles it.
	g.GET("/events/:id/booking", b.PrepareBooking)
	limited.POST("/events/:id/booking", b.ProcessBooking)
	limited.POST("/bookings/:id/payment", p.ProcessPayment)
	g.POST("/promo/validate", p.ValidatePromo)

	// Booking listings and per-booking detail for the authenticated
	// customer.  Ownership is enforced in the queries.
	g.GET("/bookings", b.ListBookings)
	g.GET("/bookings/:id", b.GetBooking)

	// Ticket artifacts, available once the booking is confirmed.
	g.GET("/tickets/:number/pdf", t.DownloadTicket)
	g.POST("/bookings/:id/email", t.EmailTickets)
}
