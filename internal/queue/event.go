// Package queue moves booking confirmations from the settlement path
// to the delivery path over the message broker, so a slow SMTP server
// can never stall a payment response.
package queue

// BookingConfirmedEvent is published when settlement confirms a
// booking.  It identifies the booking for the delivery consumer and
// carries a few denormalized fields for log lines; the consumer loads
// the full graph from the database before rendering anything.
type BookingConfirmedEvent struct {
	BookingID   uint64 `json:"booking_id"`
	Reference   string `json:"reference"`
	CustomerID  uint64 `json:"customer_id"`
	EventID     uint64 `json:"event_id"`
	FinalCents  int64  `json:"final_cents"`
	ConfirmedAt string `json:"confirmed_at"`
}
