package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"glampstay/internal/domain/shared/daterange"
	"glampstay/internal/domain/shared/money"
)

// Payload is the union of the fields carried by notification events.
type Payload struct {
	BookingID  string      `json:"bookingId"`
	PropertyID string      `json:"propertyId"`
	UserID     string      `json:"userId"`
	GuestName  string      `json:"guestName"`
	GuestEmail string      `json:"guestEmail"`
	CheckIn    time.Time   `json:"checkIn"`
	CheckOut   time.Time   `json:"checkOut"`
	Total      money.Money `json:"total"`
	Refund     money.Money `json:"refund"`
	Reason     string      `json:"reason"`

	MessageID string `json:"messageId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

type view struct {
	Payload
	CheckInDay  string
	CheckOutDay string
	TotalText   string
	RefundText  string
}

func newView(p Payload) view {
	v := view{Payload: p}
	if !p.CheckIn.IsZero() {
		v.CheckInDay = p.CheckIn.Format(daterange.DayLayout)
	}
	if !p.CheckOut.IsZero() {
		v.CheckOutDay = p.CheckOut.Format(daterange.DayLayout)
	}
	if p.Total.Currency != "" {
		v.TotalText = p.Total.String()
	}
	if p.Refund.Currency != "" {
		v.RefundText = p.Refund.String()
	}
	return v
}

type template struct {
	subject string
	html    *htmltemplate.Template
	text    *texttemplate.Template
	push    string
}

func mustTemplate(kind Kind, subject, body, push string) template {
	return template{
		subject: subject,
		html:    htmltemplate.Must(htmltemplate.New(string(kind)).Parse(`<p>` + body + `</p>`)),
		text:    texttemplate.Must(texttemplate.New(string(kind)).Parse(body)),
		push:    push,
	}
}

var templates = map[Kind]template{
	KindBookingRequested: mustTemplate(KindBookingRequested,
		"We received your booking request",
		`Hi {{.GuestName}}, we received your request for {{.CheckInDay}} to {{.CheckOutDay}}. Total: {{.TotalText}}. We will confirm shortly. Reference {{.BookingID}}.`,
		"Booking request received"),
	KindBookingConfirmed: mustTemplate(KindBookingConfirmed,
		"Your stay is confirmed",
		`Hi {{.GuestName}}, your stay from {{.CheckInDay}} to {{.CheckOutDay}} is confirmed. Reference {{.BookingID}}.`,
		"Your stay is confirmed"),
	KindBookingCanceled: mustTemplate(KindBookingCanceled,
		"Your booking was canceled",
		`Hi {{.GuestName}}, booking {{.BookingID}} for {{.CheckInDay}} was canceled.{{if .RefundText}} Refund: {{.RefundText}}.{{end}}{{if .Reason}} Reason: {{.Reason}}.{{end}}`,
		"Booking canceled"),
	KindBookingCompleted: mustTemplate(KindBookingCompleted,
		"Thanks for staying with us",
		`Hi {{.GuestName}}, thank you for staying with us. We hope to see you again.`,
		"Thanks for staying with us"),
	KindReminderDue: mustTemplate(KindReminderDue,
		"Your stay starts soon",
		`Hi {{.GuestName}}, a reminder that your stay begins on {{.CheckInDay}}. Reference {{.BookingID}}.`,
		"Your stay starts soon"),
	KindContactSubmitted: mustTemplate(KindContactSubmitted,
		"New inquiry",
		`{{.Name}} <{{.Email}}> wrote: {{.Subject}} - {{.Body}}`,
		""),
}

type rendered struct {
	Subject string
	HTML    string
	Text    string
	Push    string
}

func render(kind Kind, p Payload) (rendered, error) {
	tmpl, ok := templates[kind]
	if !ok {
		return rendered{}, ErrUnknownKind
	}
	v := newView(p)
	var htmlBuf, textBuf bytes.Buffer
	if err := tmpl.html.Execute(&htmlBuf, v); err != nil {
		return rendered{}, fmt.Errorf("notify: render %s html: %w", kind, err)
	}
	if err := tmpl.text.Execute(&textBuf, v); err != nil {
		return rendered{}, fmt.Errorf("notify: render %s text: %w", kind, err)
	}
	subject := tmpl.subject
	if kind == KindContactSubmitted && p.Subject != "" {
		subject = tmpl.subject + ": " + p.Subject
	}
	return rendered{Subject: subject, HTML: htmlBuf.String(), Text: textBuf.String(), Push: tmpl.push}, nil
}
