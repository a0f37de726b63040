package booking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushgit99x/StarTickets-F-sub001/internal/model"
)

func validInstrument() PaymentInstrument {
	return PaymentInstrument{
		CardNumber:     "4242 4242 4242 4242",
		Expiry:         "12/27",
		CVV:            "123",
		HolderName:     "Jane Buyer",
		BillingAddress: "1 Main Street, Springfield",
	}
}

func TestPaymentInstrumentValidate(t *testing.T) {
	now := testNow // June 2026

	mutate := func(fn func(*PaymentInstrument)) PaymentInstrument {
		p := validInstrument()
		fn(&p)
		return p
	}

	cases := []struct {
		name       string
		instrument PaymentInstrument
		wantErr    bool
	}{
		{"valid", validInstrument(), false},
		{"valid with dashes", mutate(func(p *PaymentInstrument) { p.CardNumber = "4242-4242-4242-4242" }), false},
		{"valid short card", mutate(func(p *PaymentInstrument) { p.CardNumber = "4000000000001" }), false},
		{"valid four digit cvv", mutate(func(p *PaymentInstrument) { p.CVV = "1234" }), false},
		{"expires this month", mutate(func(p *PaymentInstrument) { p.Expiry = "06/26" }), false},
		{"card too short", mutate(func(p *PaymentInstrument) { p.CardNumber = "411111111111" }), true},
		{"card too long", mutate(func(p *PaymentInstrument) { p.CardNumber = strings.Repeat("4", 20) }), true},
		{"card with letters", mutate(func(p *PaymentInstrument) { p.CardNumber = "4242abcd42424242" }), true},
		{"expired last month", mutate(func(p *PaymentInstrument) { p.Expiry = "05/26" }), true},
		{"expiry bad format", mutate(func(p *PaymentInstrument) { p.Expiry = "2027-12" }), true},
		{"expiry month zero", mutate(func(p *PaymentInstrument) { p.Expiry = "00/27" }), true},
		{"expiry month thirteen", mutate(func(p *PaymentInstrument) { p.Expiry = "13/27" }), true},
		{"cvv too short", mutate(func(p *PaymentInstrument) { p.CVV = "12" }), true},
		{"cvv with letters", mutate(func(p *PaymentInstrument) { p.CVV = "12a" }), true},
		{"holder blank", mutate(func(p *PaymentInstrument) { p.HolderName = "   " }), true},
		{"address blank", mutate(func(p *PaymentInstrument) { p.BillingAddress = "" }), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.instrument.Validate(now)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInstrument)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func bookOne(t *testing.T, e *Engine, customerID uint64) *Confirmation {
	t.Helper()
	conf, err := e.ProcessBooking(context.Background(), Request{
		EventID: 1, CustomerID: customerID,
		Items: []RequestItem{{CategoryID: 1, Quantity: 1}},
	})
	require.NoError(t, err)
	return conf
}

func TestSettleHappyPath(t *testing.T) {
	s := seedStore()
	pub := &recordingPublisher{}
	e := newTestEngine(s, pub)
	conf := bookOne(t, e, 7)

	settlement, err := e.Settle(context.Background(), conf.BookingID, 7, validInstrument())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(settlement.TxnID, "PAY-"))
	assert.Equal(t, conf.FinalCents, settlement.FinalCents)

	b := s.booking(conf.BookingID)
	assert.Equal(t, model.BookingConfirmed, b.Status)
	assert.Equal(t, model.PaymentCompleted, b.PaymentStatus)
	assert.Equal(t, 1, pub.count())
}

func TestSettleTwiceFails(t *testing.T) {
	s := seedStore()
	e := newTestEngine(s, nil)
	conf := bookOne(t, e, 7)

	_, err := e.Settle(context.Background(), conf.BookingID, 7, validInstrument())
	require.NoError(t, err)

	_, err = e.Settle(context.Background(), conf.BookingID, 7, validInstrument())
	require.ErrorIs(t, err, ErrAlreadySettled)
}

func TestSettleConcurrentExactlyOnce(t *testing.T) {
	s := seedStore()
	pub := &recordingPublisher{}
	e := newTestEngine(s, pub)
	conf := bookOne(t, e, 7)

	const racers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	okCount, lost := 0, 0
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Settle(context.Background(), conf.BookingID, 7, validInstrument())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				okCount++
			case errors.Is(err, ErrAlreadySettled):
				lost++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, okCount)
	assert.Equal(t, racers-1, lost)
	assert.Equal(t, 1, pub.count())
}

func TestSettleInvalidInstrumentKeepsBookingRetryable(t *testing.T) {
	s := seedStore()
	e := newTestEngine(s, nil)
	conf := bookOne(t, e, 7)

	bad := validInstrument()
	bad.CVV = "no"
	_, err := e.Settle(context.Background(), conf.BookingID, 7, bad)
	require.ErrorIs(t, err, ErrInvalidInstrument)

	b := s.booking(conf.BookingID)
	assert.Equal(t, model.BookingPending, b.Status, "failed payment must not cancel the booking")
	assert.Equal(t, model.PaymentFailed, b.PaymentStatus)
	assert.Equal(t, uint32(1), s.sold(1), "reserved capacity is kept for the retry")

	// A retry with a valid card completes normally.
	settlement, err := e.Settle(context.Background(), conf.BookingID, 7, validInstrument())
	require.NoError(t, err)
	assert.Equal(t, conf.FinalCents, settlement.FinalCents)
	assert.Equal(t, model.PaymentCompleted, s.booking(conf.BookingID).PaymentStatus)
}

func TestSettleForeignBooking(t *testing.T) {
	s := seedStore()
	e := newTestEngine(s, nil)
	conf := bookOne(t, e, 7)

	_, err := e.Settle(context.Background(), conf.BookingID, 8, validInstrument())
	require.ErrorIs(t, err, ErrBookingNotFound)
	assert.Equal(t, model.BookingPending, s.booking(conf.BookingID).Status)
}

func TestSettleCancelledBooking(t *testing.T) {
	s := seedStore()
	e := newTestEngine(s, nil)
	conf := bookOne(t, e, 7)

	// Abandon the booking until the reaper cancels it.
	e.now = func() time.Time { return testNow.Add(time.Hour) }
	bookOne(t, e, 8)

	_, err := e.Settle(context.Background(), conf.BookingID, 7, validInstrument())
	require.ErrorIs(t, err, ErrBookingNotPending)
}

func TestSettlePublisherFailureDoesNotUnwind(t *testing.T) {
	s := seedStore()
	pub := &recordingPublisher{fail: true}
	e := newTestEngine(s, pub)
	conf := bookOne(t, e, 7)

	settlement, err := e.Settle(context.Background(), conf.BookingID, 7, validInstrument())
	require.NoError(t, err, "a broker outage must not fail the settlement")
	assert.NotEmpty(t, settlement.TxnID)
	assert.Equal(t, model.BookingConfirmed, s.booking(conf.BookingID).Status)
}
