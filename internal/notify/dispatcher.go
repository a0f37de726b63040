// Package notify assembles confirmed bookings into deliverable ticket
// artifacts (QR images, PDFs, emails).  Delivery is best-effort: a
// failure here is logged and reported as a soft error, never unwinding
// the booking it belongs to.
package notify

import (
	"errors"
	"fmt"
	"log"

	"github.com/rushgit99x/StarTickets-F-sub001/internal/model"
	"github.com/rushgit99x/StarTickets-F-sub001/internal/repository"
)

// ErrDelivery wraps every failure leaving this package so callers can
// tell a delivery problem from a booking failure with errors.Is.
var ErrDelivery = errors.New("ticket delivery failed")

// Renderer produces the printable document for a booking view.
type Renderer interface {
	Render(view *repository.BookingView) ([]byte, error)
}

// Dispatcher turns a committed booking into its confirmation email
// with the ticket PDF attached.
type Dispatcher struct {
	renderer Renderer
	mailer   Mailer
}

// NewDispatcher wires a Dispatcher.  Both collaborators are required.
func NewDispatcher(renderer Renderer, mailer Mailer) *Dispatcher {
	if renderer == nil || mailer == nil {
		panic("nil collaborator passed to NewDispatcher")
	}
	return &Dispatcher{renderer: renderer, mailer: mailer}
}

// Deliver renders the booking's tickets and emails them to the
// customer.  Any failure is logged and returned wrapped in
// ErrDelivery; the caller reports it as a retryable soft failure.
func (d *Dispatcher) Deliver(view *repository.BookingView) error {
	pdf, err := d.renderer.Render(view)
	if err != nil {
		log.Printf("notify: render failed for booking %s: %v", view.Reference, err)
		return fmt.Errorf("%w: render: %v", ErrDelivery, err)
	}

	subject, body := composeMessage(view)
	attachment := Attachment{
		Name:        "tickets-" + view.Reference + ".pdf",
		ContentType: "application/pdf",
		Data:        pdf,
	}
	if err := d.mailer.Send(view.CustomerEmail, subject, body, []Attachment{attachment}); err != nil {
		log.Printf("notify: send failed for booking %s to %s: %v", view.Reference, view.CustomerEmail, err)
		return fmt.Errorf("%w: send: %v", ErrDelivery, err)
	}
	log.Printf("notify: delivered %d ticket(s) for booking %s to %s", len(view.Tickets), view.Reference, view.CustomerEmail)
	return nil
}

// composeMessage picks the template for the recipient's role.  The
// role arrives as a typed value; anything unknown falls back to the
// customer wording.
func composeMessage(view *repository.BookingView) (subject, body string) {
	switch view.CustomerRole {
	case model.RoleOrganizer:
		subject = fmt.Sprintf("[Organizer] Booking %s confirmed for %s", view.Reference, view.EventName)
		body = fmt.Sprintf(
			"<p>Hello %s,</p><p>A booking you placed as organizer for <b>%s</b> is confirmed.</p>"+
				"<p>Reference: <b>%s</b><br>Tickets: %d<br>Total charged: %s</p>"+
				"<p>The tickets are attached as PDF.</p>",
			view.CustomerName, view.EventName, view.Reference, len(view.Tickets), formatCents(view.FinalCents))
	default:
		subject = fmt.Sprintf("Your tickets for %s (booking %s)", view.EventName, view.Reference)
		body = fmt.Sprintf(
			"<p>Hello %s,</p><p>Thank you for your purchase! Your booking for <b>%s</b> at %s is confirmed.</p>"+
				"<p>Reference: <b>%s</b><br>Tickets: %d<br>Total charged: %s</p>"+
				"<p>Your tickets are attached as PDF &mdash; show the QR code at the entrance.</p>",
			view.CustomerName, view.EventName, view.VenueName, view.Reference, len(view.Tickets), formatCents(view.FinalCents))
	}
	return subject, body
}
