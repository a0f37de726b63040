package booking

import (
	"context"
	"time"

	"github.com/rushgit99x/StarTickets-F-sub001/internal/model"
)

// Store is the persistence boundary the engine works against.  The SQL
// implementation lives in internal/repository; tests substitute an
// in-memory one.  Every booking operation runs inside a single Tx so
// that capacity increments, promo redemptions and the booking graph
// commit or roll back together.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one booking-engine transaction.  Implementations must make
// ReserveCapacity and ConsumePromo atomic with respect to concurrent
// transactions touching the same rows (conditional UPDATE or row
// locking); everything else relies on the transaction's own isolation.
// Exactly one of Commit or Rollback must be called.
type Tx interface {
	// EventForBooking loads an event together with its ticket
	// categories.  Returns ErrEventNotBookable when no such event
	// exists.
	EventForBooking(ctx context.Context, eventID uint64) (*model.Event, error)

	// ReapStalePending cancels PENDING bookings for the event created
	// before the cutoff and releases their reserved capacity.  It
	// returns the number of bookings reaped.
	ReapStalePending(ctx context.Context, eventID uint64, cutoff time.Time) (int, error)

	// ReserveCapacity atomically performs sold += qty subject to
	// sold+qty <= total.  Returns ErrInsufficientCapacity when the
	// category cannot cover the quantity; on failure sold is
	// untouched.
	ReserveCapacity(ctx context.Context, categoryID uint64, qty uint32) error

	// ReleaseCapacity performs the inverse decrement.  Used by the
	// stale-pending reaper and by cancellation flows.
	ReleaseCapacity(ctx context.Context, categoryID uint64, qty uint32) error

	// PromoByCode loads a campaign by its code.  Returns
	// ErrPromoInvalid when no campaign carries the code.
	PromoByCode(ctx context.Context, code string) (*model.PromoCampaign, error)

	// ConsumePromo atomically increments the campaign's usage counter
	// subject to used_count < usage_cap.  Returns ErrPromoExhausted
	// when the cap has been reached in the meantime.
	ConsumePromo(ctx context.Context, campaignID uint64) error

	// CreateBooking inserts the booking row and populates its ID.
	CreateBooking(ctx context.Context, b *model.Booking) error

	// CreateDetails bulk-inserts the booking's lines and populates
	// their IDs in order.
	CreateDetails(ctx context.Context, details []model.BookingDetail) error

	// CreateTickets bulk-inserts the tickets for a booking.
	CreateTickets(ctx context.Context, tickets []model.Ticket) error

	// BookingByID loads a booking owned by the given customer.
	// Returns ErrBookingNotFound when it does not exist or belongs to
	// someone else.
	BookingByID(ctx context.Context, bookingID, customerID uint64) (*model.Booking, error)

	// ConfirmBooking transitions status PENDING -> CONFIRMED and
	// payment_status -> COMPLETED, recording the transaction id.  The
	// update is conditional on status = PENDING; when no row matches,
	// ErrAlreadySettled is returned so that racing settlements lose.
	ConfirmBooking(ctx context.Context, bookingID uint64, txnID string) error

	// MarkPaymentFailed records a failed settlement attempt.  The
	// booking itself stays PENDING and retryable.
	MarkPaymentFailed(ctx context.Context, bookingID uint64) error

	Commit() error
	Rollback() error
}
