package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rushgit99x/StarTickets-F-sub001/internal/notify"
	"github.com/rushgit99x/StarTickets-F-sub001/internal/repository"
)

// TicketHandler serves ticket artifacts after settlement: PDF
// downloads and on-demand confirmation re-sends.  Both readers enforce
// ownership in the query, so foreign identifiers read as not found.
type TicketHandler struct {
	Tickets    *repository.TicketRepo
	Renderer   notify.Renderer
	Dispatcher *notify.Dispatcher
}

// NewTicketHandler constructs a TicketHandler.
func NewTicketHandler(tickets *repository.TicketRepo, renderer notify.Renderer, dispatcher *notify.Dispatcher) *TicketHandler {
	if tickets == nil || renderer == nil || dispatcher == nil {
		panic("nil dependency passed to NewTicketHandler")
	}
	return &TicketHandler{Tickets: tickets, Renderer: renderer, Dispatcher: dispatcher}
}

// DownloadTicket handles GET /v1/tickets/:number/pdf.  Only tickets of
// confirmed bookings render; a pending booking has nothing printable.
func (h *TicketHandler) DownloadTicket(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, fail("unauthorized"))
	}
	number := c.Param("number")
	if number == "" {
		return c.JSON(http.StatusBadRequest, fail("ticket number is required"))
	}

	view, err := h.Tickets.TicketForCustomer(c.Request().Context(), number, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return c.JSON(http.StatusNotFound, fail("ticket not found"))
		}
		return c.JSON(http.StatusInternalServerError, fail("failed to load ticket"))
	}
	if view.Status != "CONFIRMED" {
		return c.JSON(http.StatusConflict, fail("booking is not confirmed"))
	}

	pdf, err := h.Renderer.Render(view)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, fail("failed to render ticket"))
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s.pdf"`, number))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// EmailTickets handles POST /v1/bookings/:id/email.  It re-sends the
// confirmation email with the ticket PDF attached.  The booking itself
// is already settled, so a delivery failure is reported without
// touching booking state.
func (h *TicketHandler) EmailTickets(c echo.Context) error {
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
	if view.Status != "CONFIRMED" {
		return c.JSON(http.StatusConflict, fail("booking is not confirmed"))
	}

	if err := h.Dispatcher.Deliver(view); err != nil {
		return c.JSON(http.StatusBadGateway, fail("confirmation email could not be sent"))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "confirmation email sent to " + view.CustomerEmail,
	})
}
