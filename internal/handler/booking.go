package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rushgit99x/StarTickets-F-sub001/internal/booking"
	"github.com/rushgit99x/StarTickets-F-sub001/internal/repository"
)

// BookingHandler exposes the booking surface: the pricing-ready
// prepare view, booking submission and booking listings.  All methods
// assume JWT authentication has run; the customer identity always
// comes from the token, never from the request body.
type BookingHandler struct {
	Engine  *booking.Engine
	Events  *repository.EventRepo
	Tickets *repository.TicketRepo
}

// NewBookingHandler constructs a BookingHandler.  All dependencies
// must be non-nil.
func NewBookingHandler(engine *booking.Engine, events *repository.EventRepo, tickets *repository.TicketRepo) *BookingHandler {
	if engine == nil || events == nil || tickets == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: engine, Events: events, Tickets: tickets}
}

// bookingStatus maps an engine error to the HTTP status for the
// uniform failure body.  Unknown errors become a generic 500 so no
// internal detail leaks to the caller.
func bookingStatus(err error) (int, string) {
	switch {
	case errors.Is(err, booking.ErrEventNotBookable):
		return http.StatusConflict, err.Error()
	case errors.Is(err, booking.ErrInsufficientCapacity):
		return http.StatusConflict, err.Error()
	case errors.Is(err, booking.ErrPromoInvalid),
		errors.Is(err, booking.ErrPromoExpired),
		errors.Is(err, booking.ErrPromoExhausted),
		errors.Is(err, booking.ErrPromoBelowMinimum):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, booking.ErrInvalidInstrument):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, booking.ErrBookingNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, booking.ErrAlreadySettled),
		errors.Is(err, booking.ErrBookingNotPending):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "booking failed, please try again"
	}
}

// PrepareBooking handles GET /v1/events/:id/booking.  It returns the
// pricing-ready view of the event's categories and their remaining
// capacity so the client can build the booking form.
func (h *BookingHandler) PrepareBooking(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, fail("unauthorized"))
	}
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, fail("invalid event id"))
	}

	view, ev, err := h.Events.Availability(c.Request().Context(), eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, fail("event not found"))
		}
		return c.JSON(http.StatusInternalServerError, fail("failed to load event"))
	}
	view.Bookable = ev.Bookable(nowUTC())
	return c.JSON(http.StatusOK, echo.Map{"success": true, "event": view})
}

// processReq is the booking submission body.
type processReq struct {
	Items     []booking.RequestItem `json:"items"`
	PromoCode string                `json:"promo_code"`
}

// ProcessBooking handles POST /v1/events/:id/booking.  It runs the
// whole booking transaction and returns the pending booking's
// reference and totals.  Payment is a separate subsequent call.
func (h *BookingHandler) ProcessBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, fail("unauthorized"))
	}
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, fail("invalid event id"))
	}
	var req processReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, fail("invalid request body"))
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, fail("items is required"))
	}

	conf, err := h.Engine.ProcessBooking(c.Request().Context(), booking.Request{
		EventID:    eventID,
		CustomerID: userID,
		Items:      req.Items,
		PromoCode:  req.PromoCode,
	})
	if err != nil {
		status, msg := bookingStatus(err)
		return c.JSON(status, fail(msg))
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "booking created, awaiting payment",
		"booking": conf,
	})
}

// ListBookings handles GET /v1/bookings.  It returns the customer's
// booking summaries, newest first.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, fail("unauthorized"))
	}
	views, err := h.Tickets.ListByCustomer(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, fail("failed to load bookings"))
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "items": views})
}

// GetBooking handles GET /v1/bookings/:id.  It returns one booking
// with its tickets.  Ownership is enforced in the query, so a foreign
// booking id reads as not found.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, fail("unauthorized"))
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, fail("invalid booking id"))
	}
	view, err := h.Tickets.BookingForDelivery(c.Request().Context(), bookingID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, fail("booking not found"))
		}
		return c.JSON(http.StatusInternalServerError, fail("failed to load booking"))
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "item": view})
}
