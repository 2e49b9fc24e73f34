package schedule

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"

	"glampstay/internal/app/apperr"
	"glampstay/internal/app/commands"
	"glampstay/internal/app/dto"
	"glampstay/internal/app/handlers/booking"
	appschedule "glampstay/internal/app/schedule"
	domainbooking "glampstay/internal/domain/booking"
)

type recordingBus struct {
	got []commands.Command
	err error
}

func (b *recordingBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	b.got = append(b.got, cmd)
	if b.err != nil {
		return nil, b.err
	}
	return dto.BookingDTO{}, nil
}

func TestCompleteBookingTaskDispatchesCommand(t *testing.T) {
	bus := &recordingBus{}
	task := asynq.NewTask(appschedule.TaskCompleteBooking, []byte(`{"bookingId":"b-1"}`))
	if err := completeBookingTask(bus, slog.Default())(context.Background(), task); err != nil {
		t.Fatalf("task: %v", err)
	}
	if len(bus.got) != 1 {
		t.Fatalf("dispatched %d commands", len(bus.got))
	}
	cmd, ok := bus.got[0].(booking.AutoCompleteBookingCommand)
	if !ok || cmd.BookingID != "b-1" {
		t.Fatalf("unexpected command %#v", bus.got[0])
	}
}

func TestTaskErrorSkipsRetryForDomainFailures(t *testing.T) {
	if err := taskError(domainbooking.ErrBookingNotFound); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("not found should skip retry, got %v", err)
	}
	storeErr := apperr.Store(errors.New("connection reset"))
	if err := taskError(storeErr); errors.Is(err, asynq.SkipRetry) || err == nil {
		t.Fatalf("store failure should be retried, got %v", err)
	}
	if taskError(nil) != nil {
		t.Fatal("nil error should stay nil")
	}
}
