package model

import "time"

// EventStatus enumerates the lifecycle states of an event.  Only
// published events with a future start time accept bookings.
type EventStatus string

const (
	EventDraft     EventStatus = "DRAFT"
	EventPublished EventStatus = "PUBLISHED"
	EventCancelled EventStatus = "CANCELLED"
	EventCompleted EventStatus = "COMPLETED"
)

// Event represents a bookable happening at a venue.  It owns a set of
// ticket categories which carry the actual pricing and capacity.
//
// Fields:
//  ID          – primary key identifier.
//  OrganizerID – user who created and manages the event.
//  VenueID     – venue where the event takes place.
//  Name        – display name of the event.
//  StartsAt    – when the event begins.
//  EndsAt      – when the event ends (must be after StartsAt).
//  Status      – current state of the event (see EventStatus).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Event struct {
	ID          uint64           // events.id
	OrganizerID uint64           // events.organizer_id
	VenueID     uint64           // events.venue_id
	Name        string           // events.name
	StartsAt    time.Time        // events.starts_at
	EndsAt      time.Time        // events.ends_at
	Status      EventStatus      // events.status
	CreatedAt   time.Time        // events.created_at
	UpdatedAt   time.Time        // events.updated_at
	Categories  []TicketCategory // loaded on demand; not a column
}

// Bookable reports whether the event accepts bookings at the given
// instant: it must be published and must not have started yet.
func (e *Event) Bookable(now time.Time) bool {
	return e.Status == EventPublished && now.Before(e.StartsAt)
}

// TicketCategory is a priced tier of tickets for one event (e.g. "VIP",
// "General").  The sold counter is the single point of mutual exclusion
// in the system: sold <= total must hold under all concurrent bookings
// and is enforced by a conditional UPDATE in the capacity ledger.
//
// Fields:
//  ID         – primary key identifier.
//  EventID    – event this category belongs to.
//  Name       – tier name shown to customers.
//  PriceCents – unit price in cents.
//  Total      – total number of tickets in this tier.
//  Sold       – number of tickets already sold.
type TicketCategory struct {
	ID         uint64    // ticket_categories.id
	EventID    uint64    // ticket_categories.event_id
	Name       string    // ticket_categories.name
	PriceCents int64     // ticket_categories.price_cents
	Total      uint32    // ticket_categories.total
	Sold       uint32    // ticket_categories.sold
	CreatedAt  time.Time // ticket_categories.created_at
	UpdatedAt  time.Time // ticket_categories.updated_at
}

// Remaining returns the number of unsold tickets in the category.
func (tc *TicketCategory) Remaining() uint32 {
	if tc.Sold >= tc.Total {
		return 0
	}
	return tc.Total - tc.Sold
}
