package notify

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushgit99x/StarTickets-F-sub001/internal/model"
	"github.com/rushgit99x/StarTickets-F-sub001/internal/repository"
)

type fakeRenderer struct {
	out []byte
	err error
}

func (f *fakeRenderer) Render(view *repository.BookingView) ([]byte, error) {
	return f.out, f.err
}

type sentMessage struct {
	to          string
	subject     string
	body        string
	attachments []Attachment
}

type fakeMailer struct {
	sent []sentMessage
	err  error
}

func (f *fakeMailer) Send(to, subject, htmlBody string, attachments []Attachment) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{to: to, subject: subject, body: htmlBody, attachments: attachments})
	return nil
}

func sampleView() *repository.BookingView {
	return &repository.BookingView{
		BookingID:     42,
		Reference:     "BK-AB12CD34EF",
		Status:        "CONFIRMED",
		PaymentStatus: "COMPLETED",
		TotalCents:    20000,
		DiscountCents: 2000,
		FinalCents:    18000,
		EventName:     "Summer Jam",
		EventStartsAt: time.Date(2026, 7, 4, 19, 0, 0, 0, time.UTC),
		VenueName:     "Riverside Arena",
		VenueAddress:  "12 Quay Road",
		VenueCity:     "Bristol",
		CustomerName:  "Jane Buyer",
		CustomerEmail: "jane@example.com",
		CustomerRole:  model.RoleCustomer,
		Tickets: []repository.TicketView{
			{Number: "TKT-AB12CD34EF-001-FFFFFFFFFF", QRPayload: "ST1.x.y.z", CategoryName: "General", UnitPriceCents: 5000},
			{Number: "TKT-AB12CD34EF-002-EEEEEEEEEE", QRPayload: "ST1.a.b.c", CategoryName: "General", UnitPriceCents: 5000},
		},
	}
}

func TestDeliverSendsTicketsToCustomer(t *testing.T) {
	mailer := &fakeMailer{}
	d := NewDispatcher(&fakeRenderer{out: []byte("%PDF-fake")}, mailer)

	require.NoError(t, d.Deliver(sampleView()))
	require.Len(t, mailer.sent, 1)

	msg := mailer.sent[0]
	assert.Equal(t, "jane@example.com", msg.to)
	assert.Contains(t, msg.subject, "Summer Jam")
	assert.Contains(t, msg.subject, "BK-AB12CD34EF")
	assert.Contains(t, msg.body, "Jane Buyer")
	assert.Contains(t, msg.body, "$180.00")

	require.Len(t, msg.attachments, 1)
	assert.Equal(t, "tickets-BK-AB12CD34EF.pdf", msg.attachments[0].Name)
	assert.Equal(t, "application/pdf", msg.attachments[0].ContentType)
	assert.Equal(t, []byte("%PDF-fake"), msg.attachments[0].Data)
}

func TestDeliverUsesOrganizerTemplate(t *testing.T) {
	mailer := &fakeMailer{}
	d := NewDispatcher(&fakeRenderer{out: []byte("%PDF-fake")}, mailer)

	view := sampleView()
	view.CustomerRole = model.RoleOrganizer
	require.NoError(t, d.Deliver(view))
	require.Len(t, mailer.sent, 1)
	assert.True(t, strings.HasPrefix(mailer.sent[0].subject, "[Organizer]"))
}

func TestDeliverWrapsRenderFailure(t *testing.T) {
	mailer := &fakeMailer{}
	d := NewDispatcher(&fakeRenderer{err: errors.New("font missing")}, mailer)

	err := d.Deliver(sampleView())
	require.ErrorIs(t, err, ErrDelivery)
	assert.Empty(t, mailer.sent, "nothing must be sent when rendering fails")
}

func TestDeliverWrapsSendFailure(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("relay refused")}
	d := NewDispatcher(&fakeRenderer{out: []byte("%PDF-fake")}, mailer)

	err := d.Deliver(sampleView())
	require.ErrorIs(t, err, ErrDelivery)
}

func TestRenderProducesOnePagePerTicket(t *testing.T) {
	pdf, err := NewPDFRenderer().Render(sampleView())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"), "output must be a PDF document")
	// The page tree's /Count reflects one AddPage per ticket.
	assert.Contains(t, string(pdf), "/Count 2")
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "$180.00", formatCents(18000))
	assert.Equal(t, "$0.05", formatCents(5))
	assert.Equal(t, "-$12.34", formatCents(-1234))
}
