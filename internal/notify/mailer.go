package notify

import (
	"io"

	gomail "gopkg.in/gomail.v2"
)

// Attachment is a named blob attached to an outgoing message.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Mailer sends confirmation messages.  The SMTP implementation below
// is the production one; tests substitute a fake.
type Mailer interface {
	Send(to, subject, htmlBody string, attachments []Attachment) error
}

// SMTPMailer delivers mail over SMTP using gomail.  Each Send dials a
// fresh connection and DialAndSend closes it before returning, so no
// connection ever outlives the message it carried.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer builds a mailer for the given server and sender
// address.  user/pass may be empty for unauthenticated relays.
func NewSMTPMailer(host string, port int, user, pass, from string) *SMTPMailer {
	return &SMTPMailer{dialer: gomail.NewDialer(host, port, user, pass), from: from}
}

// Send composes and transmits one message with its attachments.
func (m *SMTPMailer) Send(to, subject, htmlBody string, attachments []Attachment) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	for _, a := range attachments {
		data := a.Data
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		}
		if a.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}))
		}
		msg.Attach(a.Name, settings...)
	}
	return m.dialer.DialAndSend(msg)
}
