package model

import "time"

// BookingStatus enumerates the lifecycle states of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// PaymentStatus enumerates the settlement states of a booking's payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Booking records a customer's purchase of tickets for one event.  The
// monetary totals are computed once by the orchestrator and never
// recomputed afterwards; a booking row is only ever written as part of
// the full graph (booking + details + tickets) inside one transaction.
//
// Fields:
//  ID            – primary key identifier.
//  Reference     – unique human-readable reference (BK-XXXXXXXXXX).
//  CustomerID    – user who made the booking.
//  EventID       – event being booked.
//  Status        – booking state (PENDING, CONFIRMED, CANCELLED).
//  PaymentStatus – settlement state (PENDING, COMPLETED, FAILED).
//  PromoCode     – promo code applied, if any.
//  TotalCents    – pre-discount total in cents.
//  DiscountCents – discount applied in cents.
//  FinalCents    – amount due after discount, floors at zero.
//  PaymentTxnID  – simulated gateway transaction id, set at settlement.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Booking struct {
	ID            uint64          // bookings.id
	Reference     string          // bookings.reference
	CustomerID    uint64          // bookings.customer_id
	EventID       uint64          // bookings.event_id
	Status        BookingStatus   // bookings.status
	PaymentStatus PaymentStatus   // bookings.payment_status
	PromoCode     *string         // bookings.promo_code (nullable)
	TotalCents    int64           // bookings.total_cents
	DiscountCents int64           // bookings.discount_cents
	FinalCents    int64           // bookings.final_cents
	PaymentTxnID  *string         // bookings.payment_txn_id (nullable)
	CreatedAt     time.Time       // bookings.created_at
	UpdatedAt     time.Time       // bookings.updated_at
	Details       []BookingDetail // loaded on demand; not a column
}

// BookingDetail is one line of a booking: a quantity of tickets from a
// single category.  UnitPriceCents is a snapshot taken at booking time
// and is immune to later price changes on the category.
//
// Fields:
//  ID             – primary key identifier.
//  BookingID      – booking this line belongs to.
//  CategoryID     – ticket category purchased.
//  Quantity       – number of tickets in this line.
//  UnitPriceCents – category price at booking time.
//  LineTotalCents – Quantity * UnitPriceCents.
type BookingDetail struct {
	ID             uint64    // booking_details.id
	BookingID      uint64    // booking_details.booking_id
	CategoryID     uint64    // booking_details.category_id
	Quantity       uint32    // booking_details.quantity
	UnitPriceCents int64     // booking_details.unit_price_cents
	LineTotalCents int64     // booking_details.line_total_cents
	CreatedAt      time.Time // booking_details.created_at
	Tickets        []Ticket  // loaded on demand; not a column
}

// Ticket is the smallest unit of entry: one row per purchased seat or
// slot.  Number and QRPayload are generated before the booking commits
// and are never regenerated.  Used is flipped only by door validation.
//
// Fields:
//  ID        – primary key identifier.
//  DetailID  – booking detail this ticket belongs to.
//  Number    – globally unique ticket number (TKT-...).
//  QRPayload – signed opaque payload encoded into the door QR code.
//  Used      – whether the ticket has been scanned at the door.
type Ticket struct {
	ID        uint64    // tickets.id
	DetailID  uint64    // tickets.detail_id
	Number    string    // tickets.number
	QRPayload string    // tickets.qr_payload
	Used      bool      // tickets.used
	CreatedAt time.Time // tickets.created_at
}
