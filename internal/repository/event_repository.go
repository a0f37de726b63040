package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rushgit99x/StarTickets-F-sub001/internal/model"
)

// EventRepo provides the read-only event directory the booking surface
// needs: availability views for the prepare step.  All writes to
// events and categories belong to the administrative layer and are out
// of scope here.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns an EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// ErrEventNotFound is returned when an event id does not exist.
var ErrEventNotFound = errors.New("event not found")

// CategoryAvailability is the pricing-ready view of one ticket
// category returned by the prepare-booking endpoint.
type CategoryAvailability struct {
	CategoryID uint64 `json:"category_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Remaining  uint32 `json:"remaining"`
}

// EventAvailability describes an event and what can still be booked.
type EventAvailability struct {
	EventID    uint64                 `json:"event_id"`
	Name       string                 `json:"name"`
	StartsAt   string                 `json:"starts_at"`
	EndsAt     string                 `json:"ends_at"`
	VenueName  string                 `json:"venue_name"`
	VenueCity  string                 `json:"venue_city"`
	Bookable   bool                   `json:"bookable"`
	Categories []CategoryAvailability `json:"categories"`
}

// Availability loads the pricing-ready view for one event.  Categories
// are ordered by id for deterministic output.  Returns ErrEventNotFound
// when the event does not exist.
func (r *EventRepo) Availability(ctx context.Context, eventID uint64) (*EventAvailability, *model.Event, error) {
	const q = `SELECT e.id, e.name, e.starts_at, e.ends_at, e.status, v.name, v.city
	           FROM events e
	           JOIN venues v ON v.id = e.venue_id
	           WHERE e.id = ?`
	var view EventAvailability
	var ev model.Event
	err := r.db.QueryRowContext(ctx, q, eventID).Scan(
		&ev.ID, &ev.Name, &ev.StartsAt, &ev.EndsAt, &ev.Status, &view.VenueName, &view.VenueCity,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrEventNotFound
		}
		return nil, nil, err
	}
	view.EventID = ev.ID
	view.Name = ev.Name
	view.StartsAt = ev.StartsAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	view.EndsAt = ev.EndsAt.UTC().Format("2006-01-02T15:04:05Z07:00")

	const catQ = `SELECT id, name, price_cents, total, sold
	              FROM ticket_categories WHERE event_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, catQ, eventID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	view.Categories = []CategoryAvailability{}
	for rows.Next() {
		var c model.TicketCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.PriceCents, &c.Total, &c.Sold); err != nil {
			return nil, nil, err
		}
		view.Categories = append(view.Categories, CategoryAvailability{
			CategoryID: c.ID,
			Name:       c.Name,
			PriceCents: c.PriceCents,
			Remaining:  c.Remaining(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return &view, &ev, nil
}
