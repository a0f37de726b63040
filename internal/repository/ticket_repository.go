package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rushgit99x/StarTickets-F-sub001/internal/model"
)

// TicketRepo reads the committed booking graph back for delivery:
// confirmation emails, PDF downloads and booking listings.  It never
// writes booking state; settlement owns the only subsequent mutation.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// ErrTicketNotFound is returned when a ticket number does not exist or
// the ticket belongs to a different customer.
var ErrTicketNotFound = errors.New("ticket not found")

// TicketView is one ticket decorated with its category and price, as
// rendered onto PDFs and confirmation emails.
type TicketView struct {
	Number         string `json:"number"`
	QRPayload      string `json:"qr_payload"`
	Used           bool   `json:"used"`
	CategoryName   string `json:"category"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// BookingView is the full delivery view of a booking: enough context
// for the dispatcher to render tickets and address the customer
// without further queries.
type BookingView struct {
	BookingID     uint64       `json:"booking_id"`
	Reference     string       `json:"reference"`
	Status        string       `json:"status"`
	PaymentStatus string       `json:"payment_status"`
	TotalCents    int64        `json:"total_cents"`
	DiscountCents int64        `json:"discount_cents"`
	FinalCents    int64        `json:"final_cents"`
	CreatedAt     time.Time    `json:"created_at"`
	EventName     string       `json:"event_name"`
	EventStartsAt time.Time    `json:"event_starts_at"`
	VenueName     string       `json:"venue_name"`
	VenueAddress  string       `json:"venue_address"`
	VenueCity     string       `json:"venue_city"`
	CustomerName  string       `json:"customer_name"`
	CustomerEmail string       `json:"customer_email"`
	CustomerRole  model.Role   `json:"-"`
	Tickets       []TicketView `json:"tickets"`
}

const bookingViewQ = `SELECT b.id, b.reference, b.status, b.payment_status,
                             b.total_cents, b.discount_cents, b.final_cents, b.created_at,
                             e.name, e.starts_at, v.name, v.address, v.city,
                             u.full_name, u.email, u.role
                      FROM bookings b
                      JOIN events e ON e.id = b.event_id
                      JOIN venues v ON v.id = e.venue_id
                      JOIN users  u ON u.id = b.customer_id`

// BookingForDelivery loads the delivery view of a booking for the
// given customer, including every ticket.  Returns sql.ErrNoRows when
// the booking does not exist or belongs to someone else.
func (r *TicketRepo) BookingForDelivery(ctx context.Context, bookingID, customerID uint64) (*BookingView, error) {
	var view BookingView
	err := r.db.QueryRowContext(ctx, bookingViewQ+` WHERE b.id = ? AND b.customer_id = ?`, bookingID, customerID).Scan(
		&view.BookingID, &view.Reference, &view.Status, &view.PaymentStatus,
		&view.TotalCents, &view.DiscountCents, &view.FinalCents, &view.CreatedAt,
		&view.EventName, &view.EventStartsAt, &view.VenueName, &view.VenueAddress, &view.VenueCity,
		&view.CustomerName, &view.CustomerEmail, &view.CustomerRole,
	)
	if err != nil {
		return nil, err
	}
	if err := r.loadTickets(ctx, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// TicketForCustomer resolves a single ticket number to its booking
// view, restricted to one ticket.  Used by the PDF download endpoint.
// Ownership is enforced in the query: a foreign ticket number surfaces
// as ErrTicketNotFound rather than a forbidden hint.
func (r *TicketRepo) TicketForCustomer(ctx context.Context, number string, customerID uint64) (*BookingView, error) {
	const q = `SELECT b.id FROM tickets t
	           JOIN booking_details d ON d.id = t.detail_id
	           JOIN bookings b ON b.id = d.booking_id
	           WHERE t.number = ? AND b.customer_id = ?`
	var bookingID uint64
	if err := r.db.QueryRowContext(ctx, q, number, customerID).Scan(&bookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	view, err := r.BookingForDelivery(ctx, bookingID, customerID)
	if err != nil {
		return nil, err
	}
	kept := view.Tickets[:0]
	for _, tk := range view.Tickets {
		if tk.Number == number {
			kept = append(kept, tk)
		}
	}
	view.Tickets = kept
	return view, nil
}

// ListByCustomer returns booking summaries (no tickets) for a
// customer, newest first.  An empty slice is returned when the
// customer has no bookings.
func (r *TicketRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]BookingView, error) {
	rows, err := r.db.QueryContext(ctx, bookingViewQ+` WHERE b.customer_id = ? ORDER BY b.created_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	views := make([]BookingView, 0)
	for rows.Next() {
		var view BookingView
		if err := rows.Scan(
			&view.BookingID, &view.Reference, &view.Status, &view.PaymentStatus,
			&view.TotalCents, &view.DiscountCents, &view.FinalCents, &view.CreatedAt,
			&view.EventName, &view.EventStartsAt, &view.VenueName, &view.VenueAddress, &view.VenueCity,
			&view.CustomerName, &view.CustomerEmail, &view.CustomerRole,
		); err != nil {
			return nil, err
		}
		view.Tickets = []TicketView{}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return views, nil
}

// loadTickets populates view.Tickets ordered by ticket number.
func (r *TicketRepo) loadTickets(ctx context.Context, view *BookingView) error {
	const q = `SELECT t.number, t.qr_payload, t.used, c.name, d.unit_price_cents
	           FROM tickets t
	           JOIN booking_details d ON d.id = t.detail_id
	           JOIN ticket_categories c ON c.id = d.category_id
	           WHERE d.booking_id = ?
	           ORDER BY t.number`
	rows, err := r.db.QueryContext(ctx, q, view.BookingID)
	if err != nil {
		return err
	}
	defer rows.Close()
	view.Tickets = []TicketView{}
	for rows.Next() {
		var tk TicketView
		if err := rows.Scan(&tk.Number, &tk.QRPayload, &tk.Used, &tk.CategoryName, &tk.UnitPriceCents); err != nil {
			return err
		}
		view.Tickets = append(view.Tickets, tk)
	}
	return rows.Err()
}
