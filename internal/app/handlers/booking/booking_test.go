package booking_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"glampstay/internal/app/apperr"
	"glampstay/internal/app/commands"
	"glampstay/internal/app/dto"
	bookingapp "glampstay/internal/app/handlers/booking"
	remindersapp "glampstay/internal/app/handlers/reminders"
	"glampstay/internal/app/wiring"
	domainauth "glampstay/internal/domain/auth"
	domainbooking "glampstay/internal/domain/booking"
	domainpricing "glampstay/internal/domain/pricing"
	domainproperty "glampstay/internal/domain/property"
	"glampstay/internal/domain/shared/money"
	domainuser "glampstay/internal/domain/user"
	"glampstay/internal/infra/cache"
	"glampstay/internal/infra/storage/memory"
	"glampstay/internal/infra/storage/s3"
	"glampstay/internal/infra/validation"
)

type refundCall struct {
	bookingID string
	reference string
	amount    money.Money
}

type fakePayments struct {
	calls []refundCall
	err   error
}

func (f *fakePayments) Refund(_ context.Context, bookingID, reference string, amount money.Money) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.calls = append(f.calls, refundCall{bookingID: bookingID, reference: reference, amount: amount})
	return "re_1", nil
}

type fixture struct {
	bus      commands.Bus
	bookings *memory.BookingRepository
	outbox   *memory.Outbox
}

var (
	guest = domainauth.Principal{UserID: "guest-1", Email: "ana@example.com"}
	admin = domainauth.Principal{UserID: "staff-1", Roles: []domainuser.Role{domainuser.RoleAdmin}}
)

func newFixture(t *testing.T, payments *fakePayments) fixture {
	t.Helper()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	properties := memory.NewPropertyRepository()
	bookings := memory.NewBookingRepository()
	dome, err := domainproperty.New(domainproperty.CreateParams{
		ID:       "aurora-dome",
		Name:     "Aurora Dome",
		Kind:     "dome",
		Capacity: 4,
		Rates: domainpricing.RateCard{
			NightlyRate:   money.Must(19900, "USD"),
			CleaningFee:   money.Must(5000, "USD"),
			ServiceFeeBps: 1200,
			TaxRateBps:    800,
		},
		Active: true,
		Now:    now,
	})
	if err != nil {
		t.Fatalf("property: %v", err)
	}
	if err := properties.Save(context.Background(), dome); err != nil {
		t.Fatalf("save property: %v", err)
	}
	box := memory.NewOutbox()
	buses := wiring.Build(wiring.Deps{
		UoW:         memory.NewFactory(properties, bookings, memory.NewUserRepository(), memory.NewContactRepository()),
		Outbox:      box,
		Idempotency: memory.NewIdempotencyStore(),
		Validator:   validation.New(),
		Cache:       cache.NewMemory(),
		Photos:      s3.NoopUploader{},
		Payments:    payments,
		Clock:       func() time.Time { return now },
	})
	return fixture{bus: buses.Commands, bookings: bookings, outbox: box}
}

func as(p domainauth.Principal) context.Context {
	return domainauth.ContextWithPrincipal(context.Background(), p)
}

func (f fixture) confirmedBooking(t *testing.T, checkIn, checkOut string) string {
	t.Helper()
	created, err := commands.Dispatch[bookingapp.CreateBookingCommand, *bookingapp.CreateBookingResult](as(guest), f.bus, bookingapp.CreateBookingCommand{
		PropertyID: "aurora-dome",
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     bookingapp.GuestsInput{Adults: 2},
		Contact:    bookingapp.ContactInput{Name: "Ana", Email: "ana@example.com"},
		Policy:     "standard",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	confirmed, err := commands.Dispatch[bookingapp.ConfirmBookingCommand, dto.BookingDTO](as(admin), f.bus, bookingapp.ConfirmBookingCommand{
		BookingID:        created.BookingID,
		PaymentReference: "pi_123",
	})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != "confirmed" || confirmed.PaymentStatus != "processed" {
		t.Fatalf("confirmed booking = %s/%s", confirmed.Status, confirmed.PaymentStatus)
	}
	return created.BookingID
}

func TestCancelRefundsThroughPaymentProvider(t *testing.T) {
	payments := &fakePayments{}
	f := newFixture(t, payments)
	id := f.confirmedBooking(t, "2024-05-11", "2024-05-14")

	res, err := commands.Dispatch[bookingapp.CancelBookingCommand, *bookingapp.CancelBookingResult](as(guest), f.bus, bookingapp.CancelBookingCommand{
		BookingID: id,
		Reason:    "plans changed",
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if res.RefundAmount.Amount != 77613 || res.RefundID != "re_1" {
		t.Fatalf("refund = %+v", res)
	}
	if len(payments.calls) != 1 || payments.calls[0].reference != "pi_123" {
		t.Fatalf("refund calls = %+v", payments.calls)
	}

	stored, err := f.bookings.ByID(context.Background(), domainbooking.BookingID(id))
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != domainbooking.StatusCanceled || stored.PaymentStatus != domainbooking.PaymentRefunded {
		t.Fatalf("stored booking = %s/%s", stored.Status, stored.PaymentStatus)
	}
}

func TestCancelKeepsBookingWhenRefundFails(t *testing.T) {
	payments := &fakePayments{err: errors.New("card_declined")}
	f := newFixture(t, payments)
	id := f.confirmedBooking(t, "2024-05-11", "2024-05-14")

	_, err := commands.Dispatch[bookingapp.CancelBookingCommand, *bookingapp.CancelBookingResult](as(guest), f.bus, bookingapp.CancelBookingCommand{BookingID: id})
	if apperr.KindOf(err) != apperr.KindUnavailable {
		t.Fatalf("kind = %s, want unavailable (%v)", apperr.KindOf(err), err)
	}
	stored, err := f.bookings.ByID(context.Background(), domainbooking.BookingID(id))
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != domainbooking.StatusConfirmed {
		t.Fatalf("status = %s, want confirmed after failed refund", stored.Status)
	}
}

func TestAdminOverrideRefundsExactAmount(t *testing.T) {
	payments := &fakePayments{}
	f := newFixture(t, payments)
	id := f.confirmedBooking(t, "2024-05-03", "2024-05-05")

	override := int64(1000)
	res, err := commands.Dispatch[bookingapp.CancelBookingCommand, *bookingapp.CancelBookingResult](as(admin), f.bus, bookingapp.CancelBookingCommand{
		BookingID:    id,
		RefundAmount: &override,
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if res.RefundAmount.Amount != 1000 || len(payments.calls) != 1 || payments.calls[0].amount.Amount != 1000 {
		t.Fatalf("refund = %+v calls = %+v", res.RefundAmount, payments.calls)
	}
}

func TestReminderSweepStampsOnce(t *testing.T) {
	f := newFixture(t, &fakePayments{})
	soon := f.confirmedBooking(t, "2024-05-02", "2024-05-04")
	f.confirmedBooking(t, "2024-05-20", "2024-05-22")

	sweep := func() []string {
		t.Helper()
		res, err := commands.Dispatch[remindersapp.SweepCommand, *remindersapp.SweepResult](context.Background(), f.bus, remindersapp.SweepCommand{Lead: 48 * time.Hour})
		if err != nil {
			t.Fatalf("sweep: %v", err)
		}
		return res.Reminded
	}

	if got := sweep(); len(got) != 1 || got[0] != soon {
		t.Fatalf("first sweep reminded %v, want [%s]", got, soon)
	}
	if got := sweep(); len(got) != 0 {
		t.Fatalf("second sweep reminded %v, want none", got)
	}

	due := 0
	for _, rec := range f.outbox.Pending() {
		if rec.Name == "booking.reminder_due" {
			due++
		}
	}
	if due != 1 {
		t.Fatalf("reminder events = %d, want 1", due)
	}
}

func TestConcurrentCreatesForSameDatesBookOnce(t *testing.T) {
	f := newFixture(t, &fakePayments{})
	const callers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := commands.Dispatch[bookingapp.CreateBookingCommand, *bookingapp.CreateBookingResult](as(guest), f.bus, bookingapp.CreateBookingCommand{
				PropertyID: "aurora-dome",
				CheckIn:    "2024-06-01",
				CheckOut:   "2024-06-04",
				Guests:     bookingapp.GuestsInput{Adults: 2},
				Contact:    bookingapp.ContactInput{Name: "Ana", Email: "ana@example.com"},
				Policy:     "standard",
			})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if created != 1 {
		t.Fatalf("created %d bookings for the same dates, want 1", created)
	}
	all, err := f.bookings.List(context.Background(), domainbooking.ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("stored %d bookings, want 1", len(all))
	}
}
