package booking

import (
	"context"
	"sync"
	"time"

	"github.com/rushgit99x/StarTickets-F-sub001/internal/model"
)

// memStore is an in-memory Store used by the engine tests.  A
// transaction holds the store mutex from Begin until Commit or
// Rollback, which gives the same effect the SQL implementation gets
// from conditional UPDATEs and row locks: concurrent transactions on
// the same rows serialize.
type memStore struct {
	mu       sync.Mutex
	events   map[uint64]*model.Event
	cats     map[uint64]*model.TicketCategory
	promos   map[uint64]*model.PromoCampaign
	byCode   map[string]uint64
	bookings map[uint64]*model.Booking
	details  map[uint64][]model.BookingDetail // keyed by booking id
	tickets  []model.Ticket

	nextBookingID uint64
	nextDetailID  uint64
}

func newMemStore() *memStore {
	return &memStore{
		events:   make(map[uint64]*model.Event),
		cats:     make(map[uint64]*model.TicketCategory),
		promos:   make(map[uint64]*model.PromoCampaign),
		byCode:   make(map[string]uint64),
		bookings: make(map[uint64]*model.Booking),
		details:  make(map[uint64][]model.BookingDetail),
	}
}

func (s *memStore) addEvent(ev model.Event, cats ...model.TicketCategory) {
	s.events[ev.ID] = &ev
	for _, c := range cats {
		c.EventID = ev.ID
		cc := c
		s.cats[c.ID] = &cc
	}
}

func (s *memStore) addPromo(p model.PromoCampaign) {
	pp := p
	s.promos[p.ID] = &pp
	s.byCode[p.Code] = p.ID
}

// sold returns the current sold counter of a category, for assertions.
func (s *memStore) sold(categoryID uint64) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cats[categoryID].Sold
}

func (s *memStore) promoUsed(code string) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promos[s.byCode[code]].UsedCount
}

func (s *memStore) booking(id uint64) *model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := *s.bookings[id]
	return &b
}

func (s *memStore) bookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func (s *memStore) ticketsFor(bookingID uint64) []model.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make(map[uint64]bool)
	for _, d := range s.details[bookingID] {
		ids[d.ID] = true
	}
	var out []model.Ticket
	for _, t := range s.tickets {
		if ids[t.DetailID] {
			out = append(out, t)
		}
	}
	return out
}

func (s *memStore) detailsFor(bookingID uint64) []model.BookingDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.BookingDetail(nil), s.details[bookingID]...)
}

func (s *memStore) setPrice(categoryID uint64, priceCents int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cats[categoryID].PriceCents = priceCents
}

func (s *memStore) Begin(ctx context.Context) (Tx, error) {
	s.mu.Lock()
	return &memTx{s: s}, nil
}

// memTx records an undo action for every mutation so Rollback can
// restore the store exactly.
type memTx struct {
	s    *memStore
	done bool
	undo []func()
}

func (t *memTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.s.mu.Unlock()
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return nil
	}
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.done = true
	t.s.mu.Unlock()
	return nil
}

func (t *memTx) EventForBooking(ctx context.Context, eventID uint64) (*model.Event, error) {
	ev, ok := t.s.events[eventID]
	if !ok {
		return nil, ErrEventNotBookable
	}
	out := *ev
	out.Categories = nil
	for _, c := range t.s.cats {
		if c.EventID == eventID {
			out.Categories = append(out.Categories, *c)
		}
	}
	return &out, nil
}

func (t *memTx) ReapStalePending(ctx context.Context, eventID uint64, cutoff time.Time) (int, error) {
	reaped := 0
	for _, b := range t.s.bookings {
		if b.EventID != eventID || b.Status != model.BookingPending || b.CreatedAt.After(cutoff) {
			continue
		}
		// Flip the status before touching capacity, in the same order
		// the SQL store claims a booking before releasing its seats.
		prev := *b
		b.Status = model.BookingCancelled
		t.undo = append(t.undo, func() { *b = prev })
		for _, d := range t.s.details[b.ID] {
			if err := t.ReleaseCapacity(ctx, d.CategoryID, d.Quantity); err != nil {
				return reaped, err
			}
		}
		reaped++
	}
	return reaped, nil
}

func (t *memTx) ReserveCapacity(ctx context.Context, categoryID uint64, qty uint32) error {
	c, ok := t.s.cats[categoryID]
	if !ok || c.Sold+qty > c.Total {
		return ErrInsufficientCapacity
	}
	c.Sold += qty
	t.undo = append(t.undo, func() { c.Sold -= qty })
	return nil
}

func (t *memTx) ReleaseCapacity(ctx context.Context, categoryID uint64, qty uint32) error {
	c, ok := t.s.cats[categoryID]
	if !ok || c.Sold < qty {
		return ErrInsufficientCapacity
	}
	c.Sold -= qty
	t.undo = append(t.undo, func() { c.Sold += qty })
	return nil
}

func (t *memTx) PromoByCode(ctx context.Context, code string) (*model.PromoCampaign, error) {
	id, ok := t.s.byCode[code]
	if !ok {
		return nil, ErrPromoInvalid
	}
	p := *t.s.promos[id]
	return &p, nil
}

func (t *memTx) ConsumePromo(ctx context.Context, campaignID uint64) error {
	p, ok := t.s.promos[campaignID]
	if !ok {
		return ErrPromoInvalid
	}
	if p.UsedCount >= p.UsageCap {
		return ErrPromoExhausted
	}
	p.UsedCount++
	t.undo = append(t.undo, func() { p.UsedCount-- })
	return nil
}

func (t *memTx) CreateBooking(ctx context.Context, b *model.Booking) error {
	t.s.nextBookingID++
	b.ID = t.s.nextBookingID
	bb := *b
	t.s.bookings[b.ID] = &bb
	id := b.ID
	t.undo = append(t.undo, func() { delete(t.s.bookings, id) })
	return nil
}

func (t *memTx) CreateDetails(ctx context.Context, details []model.BookingDetail) error {
	for i := range details {
		t.s.nextDetailID++
		details[i].ID = t.s.nextDetailID
		bid := details[i].BookingID
		t.s.details[bid] = append(t.s.details[bid], details[i])
	}
	if len(details) > 0 {
		bid := details[0].BookingID
		n := len(details)
		t.undo = append(t.undo, func() {
			ds := t.s.details[bid]
			t.s.details[bid] = ds[:len(ds)-n]
		})
	}
	return nil
}

func (t *memTx) CreateTickets(ctx context.Context, tickets []model.Ticket) error {
	n := len(t.s.tickets)
	t.s.tickets = append(t.s.tickets, tickets...)
	t.undo = append(t.undo, func() { t.s.tickets = t.s.tickets[:n] })
	return nil
}

func (t *memTx) BookingByID(ctx context.Context, bookingID, customerID uint64) (*model.Booking, error) {
	b, ok := t.s.bookings[bookingID]
	if !ok || b.CustomerID != customerID {
		return nil, ErrBookingNotFound
	}
	out := *b
	return &out, nil
}

func (t *memTx) ConfirmBooking(ctx context.Context, bookingID uint64, txnID string) error {
	b, ok := t.s.bookings[bookingID]
	if !ok || b.Status != model.BookingPending {
		return ErrAlreadySettled
	}
	prev := *b
	b.Status = model.BookingConfirmed
	b.PaymentStatus = model.PaymentCompleted
	b.PaymentTxnID = &txnID
	t.undo = append(t.undo, func() { *b = prev })
	return nil
}

func (t *memTx) MarkPaymentFailed(ctx context.Context, bookingID uint64) error {
	b, ok := t.s.bookings[bookingID]
	if !ok || b.Status != model.BookingPending {
		return nil
	}
	prev := b.PaymentStatus
	b.PaymentStatus = model.PaymentFailed
	t.undo = append(t.undo, func() { b.PaymentStatus = prev })
	return nil
}
