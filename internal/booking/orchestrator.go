package booking

import (
	"context"
	"log"
	"time"

	"github.com/rushgit99x/StarTickets-F-sub001/internal/model"
)

// Publisher receives post-commit confirmation notifications.  The
// engine treats publishing as best-effort: errors are logged, never
// propagated, and never unwind a committed settlement.
type Publisher interface {
	BookingConfirmed(ctx context.Context, b *model.Booking) error
}

// Engine composes the capacity ledger, promo validator, pricing and
// persistence into the end-to-end booking transaction.  It is safe for
// concurrent use; all mutable state lives in the Store.
type Engine struct {
	store      Store
	qrSecret   string
	pendingTTL time.Duration
	publisher  Publisher
	now        func() time.Time
}

// NewEngine builds an Engine.  qrSecret signs ticket QR payloads;
// pendingTTL controls when an unsettled PENDING booking is considered
// abandoned and its capacity reclaimed.  publisher may be nil.
func NewEngine(store Store, qrSecret string, pendingTTL time.Duration, publisher Publisher) *Engine {
	if store == nil {
		panic("nil store passed to NewEngine")
	}
	return &Engine{
		store:      store,
		qrSecret:   qrSecret,
		pendingTTL: pendingTTL,
		publisher:  publisher,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// RequestItem is one (category, quantity) pair of a booking request.
type RequestItem struct {
	CategoryID uint64 `json:"category_id"`
	Quantity   uint32 `json:"quantity"`
}

// Request is a customer's ticket request for one event.  Duplicate
// submissions are not deduplicated here; that responsibility stays
// with the caller.
type Request struct {
	EventID    uint64
	CustomerID uint64
	Items      []RequestItem
	PromoCode  string
}

// Confirmation is returned when the booking graph has committed.  The
// booking is PENDING at this point; payment settlement is a separate
// subsequent step.
type Confirmation struct {
	BookingID     uint64 `json:"booking_id"`
	Reference     string `json:"reference"`
	TotalCents    int64  `json:"total_cents"`
	DiscountCents int64  `json:"discount_cents"`
	FinalCents    int64  `json:"final_cents"`
}

// ProcessBooking runs the whole booking transaction: verify the event
// is bookable, reserve capacity per category (all-or-nothing), price
// the order from unit-price snapshots, apply an optional promo code,
// and persist the booking graph with its tickets already numbered.
// Any failure rolls the transaction back, which also undoes every
// capacity increment taken so far.
//
// An invalid promo code rejects the whole booking rather than silently
// proceeding at full price; clients that want a soft check can preview
// codes via PreviewPromo before submitting.
func (e *Engine) ProcessBooking(ctx context.Context, req Request) (*Confirmation, error) {
	if len(req.Items) == 0 {
		return nil, ErrEventNotBookable
	}
	now := e.now()

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Reclaim capacity from abandoned pending bookings before trying
	// to reserve, so expired holds never block a live customer.
	if e.pendingTTL > 0 {
		if reaped, err := tx.ReapStalePending(ctx, req.EventID, now.Add(-e.pendingTTL)); err != nil {
			return nil, err
		} else if reaped > 0 {
			log.Printf("booking: reaped %d stale pending booking(s) for event %d", reaped, req.EventID)
		}
	}

	event, err := tx.EventForBooking(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if !event.Bookable(now) {
		return nil, ErrEventNotBookable
	}
	prices := make(map[uint64]int64, len(event.Categories))
	for _, cat := range event.Categories {
		prices[cat.ID] = cat.PriceCents
	}

	// Reserve every category first.  A single failure aborts the whole
	// transaction, so partial reservations can never leak.
	var totalCents int64
	for _, item := range req.Items {
		if item.Quantity == 0 {
			return nil, ErrInsufficientCapacity
		}
		unit, ok := prices[item.CategoryID]
		if !ok {
			return nil, ErrEventNotBookable
		}
		if err := tx.ReserveCapacity(ctx, item.CategoryID, item.Quantity); err != nil {
			return nil, err
		}
		totalCents += unit * int64(item.Quantity)
	}

	var discountCents int64
	var promoCode *string
	if req.PromoCode != "" {
		campaign, err := tx.PromoByCode(ctx, req.PromoCode)
		if err != nil {
			return nil, err
		}
		discountCents, err = ValidatePromo(campaign, totalCents, now)
		if err != nil {
			return nil, err
		}
		// The redemption commits (or rolls back) with the booking.
		if err := tx.ConsumePromo(ctx, campaign.ID); err != nil {
			return nil, err
		}
		code := campaign.Code
		promoCode = &code
	}

	reference, err := NewBookingReference()
	if err != nil {
		return nil, err
	}
	b := &model.Booking{
		Reference:     reference,
		CustomerID:    req.CustomerID,
		EventID:       req.EventID,
		Status:        model.BookingPending,
		PaymentStatus: model.PaymentPending,
		PromoCode:     promoCode,
		TotalCents:    totalCents,
		DiscountCents: discountCents,
		FinalCents:    totalCents - discountCents,
		CreatedAt:     now,
	}
	if err := tx.CreateBooking(ctx, b); err != nil {
		return nil, err
	}

	details := make([]model.BookingDetail, 0, len(req.Items))
	for _, item := range req.Items {
		unit := prices[item.CategoryID]
		details = append(details, model.BookingDetail{
			BookingID:      b.ID,
			CategoryID:     item.CategoryID,
			Quantity:       item.Quantity,
			UnitPriceCents: unit,
			LineTotalCents: unit * int64(item.Quantity),
		})
	}
	if err := tx.CreateDetails(ctx, details); err != nil {
		return nil, err
	}

	// Number and sign every ticket before commit so the committed rows
	// are immediately complete and never regenerated.
	var tickets []model.Ticket
	seq := 0
	for _, d := range details {
		for i := uint32(0); i < d.Quantity; i++ {
			seq++
			number, err := NewTicketNumber(reference, seq)
			if err != nil {
				return nil, err
			}
			tickets = append(tickets, model.Ticket{
				DetailID:  d.ID,
				Number:    number,
				QRPayload: QRPayload(e.qrSecret, number, reference),
			})
		}
	}
	if err := tx.CreateTickets(ctx, tickets); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	return &Confirmation{
		BookingID:     b.ID,
		Reference:     reference,
		TotalCents:    totalCents,
		DiscountCents: discountCents,
		FinalCents:    totalCents - discountCents,
	}, nil
}

// PreviewPromo evaluates a promo code against a candidate amount
// without consuming a redemption.  It exists so clients can validate a
// code before submitting the booking that spends it.
func (e *Engine) PreviewPromo(ctx context.Context, code string, amountCents int64) (int64, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	campaign, err := tx.PromoByCode(ctx, code)
	if err != nil {
		return 0, err
	}
	return ValidatePromo(campaign, amountCents, e.now())
}
