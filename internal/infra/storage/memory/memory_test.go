package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	appoutbox "glampstay/internal/app/outbox"
	"glampstay/internal/app/uow"
	domainbooking "glampstay/internal/domain/booking"
	"glampstay/internal/domain/shared/daterange"
)

func stay(t *testing.T, in, out string) daterange.DateRange {
	t.Helper()
	dr, err := daterange.Parse(in, out)
	if err != nil {
		t.Fatal(err)
	}
	return dr
}

func TestBookingSaveRejectsStaleVersion(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()
	b := &domainbooking.Booking{ID: "b-1", PropertyID: "p-1", UserID: "u-1", Status: domainbooking.StatusPending, Range: stay(t, "2024-06-01", "2024-06-03")}
	if err := repo.Save(ctx, b); err != nil {
		t.Fatalf("first save: %v", err)
	}
	first, _ := repo.ByID(ctx, "b-1")
	second, _ := repo.ByID(ctx, "b-1")

	first.SpecialRequests = "late arrival"
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("save first copy: %v", err)
	}
	second.SpecialRequests = "early arrival"
	if err := repo.Save(ctx, second); !errors.Is(err, ErrConcurrentUpdate) {
		t.Fatalf("expected ErrConcurrentUpdate, got %v", err)
	}
}

func TestBookingRepositoryReturnsCopies(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()
	_ = repo.Save(ctx, &domainbooking.Booking{ID: "b-1", UserID: "u-1", Status: domainbooking.StatusPending})
	got, _ := repo.ByID(ctx, "b-1")
	got.Status = domainbooking.StatusCanceled
	again, _ := repo.ByID(ctx, "b-1")
	if again.Status != domainbooking.StatusPending {
		t.Fatalf("stored booking mutated through a read copy")
	}
}

func TestListDueReminders(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	bookings := []*domainbooking.Booking{
		{ID: "due", UserID: "u", Status: domainbooking.StatusConfirmed, Range: stay(t, "2024-06-02", "2024-06-04")},
		{ID: "pending", UserID: "u", Status: domainbooking.StatusPending, Range: stay(t, "2024-06-02", "2024-06-04")},
		{ID: "reminded", UserID: "u", Status: domainbooking.StatusConfirmed, Range: stay(t, "2024-06-02", "2024-06-04"), ReminderSentAt: now},
		{ID: "later", UserID: "u", Status: domainbooking.StatusConfirmed, Range: stay(t, "2024-06-10", "2024-06-12")},
	}
	for _, b := range bookings {
		if err := repo.Save(ctx, b); err != nil {
			t.Fatal(err)
		}
	}
	due, err := repo.ListDueReminders(ctx, now, now.Add(48*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 || due[0].ID != "due" {
		t.Fatalf("unexpected due bookings: %v", due)
	}
}

func TestFactorySerializesWritingUnits(t *testing.T) {
	f := NewFactory(NewPropertyRepository(), NewBookingRepository(), NewUserRepository(), NewContactRepository())
	ctx := context.Background()
	first, err := f.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatal(err)
	}

	reader, err := f.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		t.Fatalf("read-only unit must not wait: %v", err)
	}
	_ = reader.Rollback(ctx)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if _, err := f.Begin(waitCtx, uow.TxOptions{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("second writer should block until the first finishes, got %v", err)
	}

	_ = first.Commit(ctx)
	_ = first.Rollback(ctx) // second release is a no-op
	second, err := f.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatalf("writer after commit: %v", err)
	}
	_ = second.Commit(ctx)
}

func TestOutboxClaimAndRetry(t *testing.T) {
	box := NewOutbox()
	ctx := context.Background()
	_ = box.Add(ctx, appoutbox.EventRecord{ID: "ev-1", Name: "booking.requested"})

	claimed, err := box.Claim(ctx, "w")
	if err != nil || claimed == nil || claimed.ID != "ev-1" {
		t.Fatalf("claim = %v, %v", claimed, err)
	}
	if again, _ := box.Claim(ctx, "w"); again != nil {
		t.Fatal("claimed record must not be handed out twice")
	}
	_ = box.MarkFailed(ctx, "ev-1", time.Now().Add(time.Hour), "boom")
	if later, _ := box.Claim(ctx, "w"); later != nil {
		t.Fatal("failed record must wait for its next attempt")
	}
	_ = box.MarkFailed(ctx, "ev-1", time.Now().Add(-time.Second), "boom")
	retry, _ := box.Claim(ctx, "w")
	if retry == nil || retry.Attempts != 2 {
		t.Fatalf("expected retry with 2 attempts, got %+v", retry)
	}
	_ = box.MarkSent(ctx, "ev-1")
	if len(box.Pending()) != 0 {
		t.Fatal("sent record should leave the outbox")
	}
}

func TestInboxForgetAllowsRedelivery(t *testing.T) {
	in := NewInbox()
	ctx := context.Background()
	if seen, _ := in.Seen(ctx, "ev-1"); seen {
		t.Fatal("fresh id reported as seen")
	}
	if seen, _ := in.Seen(ctx, "ev-1"); !seen {
		t.Fatal("duplicate id not detected")
	}
	_ = in.Forget(ctx, "ev-1")
	if seen, _ := in.Seen(ctx, "ev-1"); seen {
		t.Fatal("forgotten id still reported as seen")
	}
}
