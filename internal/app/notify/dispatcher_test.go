package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"glampstay/internal/app/outbox"
	"glampstay/internal/app/policies"
	domainbooking "glampstay/internal/domain/booking"
	"glampstay/internal/domain/shared/events"
	"glampstay/internal/domain/shared/money"
	domainuser "glampstay/internal/domain/user"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []policies.Email
	err  error
}

func (m *recordingMailer) Send(_ context.Context, email policies.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

type recordingPush struct {
	msgs []policies.PushMessage
	err  error
}

func (p *recordingPush) Push(_ context.Context, msg policies.PushMessage) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

type userStub struct{ user *domainuser.User }

func (s userStub) ByID(_ context.Context, id domainuser.ID) (*domainuser.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, domainuser.ErrNotFound
	}
	return s.user, nil
}

func (s userStub) Save(context.Context, *domainuser.User) error { return nil }

func encode(t *testing.T, ev events.DomainEvent) outbox.EventRecord {
	t.Helper()
	rec, err := outbox.JSONEventEncoder{IDGenerator: func() string { return "evt-1" }}.Encode(ev)
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestDispatcherEmailsGuestAndPushesDevices(t *testing.T) {
	mailer := &recordingMailer{}
	push := &recordingPush{}
	d := &Dispatcher{
		Mailer:  mailer,
		Push:    push,
		Users:   userStub{user: &domainuser.User{ID: "u-1", DeviceTokens: []string{"tok-a"}}},
		Limiter: NewLimiter(100),
	}
	checkIn := time.Date(2030, 7, 1, 0, 0, 0, 0, time.UTC)
	rec := encode(t, domainbooking.BookingCanceled{
		BookingID:  "b-1",
		UserID:     "u-1",
		GuestName:  "Ada",
		GuestEmail: "ada@example.com",
		CheckIn:    checkIn,
		CheckOut:   checkIn.AddDate(0, 0, 3),
		Refund:     money.Must(38807, "USD"),
		At:         time.Now(),
	})

	if err := d.Handle(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(mailer.sent))
	}
	email := mailer.sent[0]
	if email.To != "ada@example.com" || !strings.Contains(email.Text, "388.07 USD") || !strings.Contains(email.Text, "2030-07-01") {
		t.Fatalf("unexpected email %+v", email)
	}
	if len(push.msgs) != 1 || push.msgs[0].Tokens[0] != "tok-a" {
		t.Fatalf("unexpected pushes %+v", push.msgs)
	}
}

func TestDispatcherRetriesOnlyEmailFailures(t *testing.T) {
	rec := encode(t, domainbooking.BookingConfirmed{BookingID: "b-2", UserID: "u-1", GuestName: "Ada", GuestEmail: "ada@example.com", At: time.Now()})

	failingMail := &Dispatcher{Mailer: &recordingMailer{err: errors.New("smtp down")}}
	if err := failingMail.Handle(context.Background(), rec); err == nil {
		t.Fatal("email failure must be reported for redelivery")
	}

	failingPush := &Dispatcher{
		Mailer: &recordingMailer{},
		Push:   &recordingPush{err: errors.New("fcm down")},
		Users:  userStub{user: &domainuser.User{ID: "u-1", DeviceTokens: []string{"tok"}}},
	}
	if err := failingPush.Handle(context.Background(), rec); err != nil {
		t.Fatalf("push failure must not fail delivery: %v", err)
	}
}

func TestDispatcherIgnoresEventsWithoutNotification(t *testing.T) {
	mailer := &recordingMailer{}
	d := &Dispatcher{Mailer: mailer}
	rec := outbox.EventRecord{ID: "e", Name: "property.rates_changed", Payload: []byte(`{}`)}
	if err := d.Handle(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	garbled := outbox.EventRecord{ID: "e2", Name: string(KindBookingConfirmed), Payload: []byte(`{not json`)}
	if err := d.Handle(context.Background(), garbled); err != nil {
		t.Fatal(err)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("sent %d emails, want 0", len(mailer.sent))
	}
}

func TestContactInquiryGoesToStaff(t *testing.T) {
	mailer := &recordingMailer{}
	d := &Dispatcher{Mailer: mailer, StaffEmail: "hosts@glampstay.example"}
	payload, _ := json.Marshal(map[string]string{"messageId": "m-1", "name": "Bo", "email": "bo@example.com", "subject": "Dogs?", "body": "Can we bring two dogs?"})
	if err := d.Handle(context.Background(), outbox.EventRecord{ID: "e3", Name: "contact.submitted", Payload: payload}); err != nil {
		t.Fatal(err)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].To != "hosts@glampstay.example" || mailer.sent[0].Subject != "New inquiry: Dogs?" {
		t.Fatalf("unexpected emails %+v", mailer.sent)
	}
}

func TestParseKindIsClosed(t *testing.T) {
	if _, err := ParseKind("booking.deleted"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if k, err := ParseKind(" Booking.Confirmed "); err != nil || k != KindBookingConfirmed {
		t.Fatalf("got %q, %v", k, err)
	}
}
