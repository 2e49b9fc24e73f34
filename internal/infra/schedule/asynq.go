package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"glampstay/internal/app/apperr"
	"glampstay/internal/app/commands"
	"glampstay/internal/app/dto"
	"glampstay/internal/app/handlers/booking"
	"glampstay/internal/app/handlers/reminders"
	appschedule "glampstay/internal/app/schedule"
)

const defaultQueue = "glampstay"

// Scheduler enqueues delayed tasks in asynq. The task id dedupes repeated scheduling.
type Scheduler struct {
	client *asynq.Client
	queue  string
}

func NewScheduler(opt asynq.RedisClientOpt) *Scheduler {
	return &Scheduler{client: asynq.NewClient(opt), queue: defaultQueue}
}

func (s *Scheduler) Schedule(ctx context.Context, name, id string, payload any, runAt time.Time) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("schedule: encode %s payload: %w", name, err)
	}
	opts := []asynq.Option{
		asynq.Queue(s.queue),
		asynq.ProcessAt(runAt),
		asynq.MaxRetry(10),
		asynq.Retention(24 * time.Hour),
	}
	if id != "" {
		opts = append(opts, asynq.TaskID(id))
	}
	_, err = s.client.EnqueueContext(ctx, asynq.NewTask(name, body), opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

func (s *Scheduler) Close() error {
	return s.client.Close()
}

// Worker runs scheduled tasks by dispatching application commands, and
// registers the periodic reminder sweep.
type Worker struct {
	server    *asynq.Server
	periodic  *asynq.Scheduler
	mux       *asynq.ServeMux
	sweepSpec string
	logger    *slog.Logger
}

type WorkerConfig struct {
	Concurrency int
	SweepSpec   string
	SweepLead   time.Duration
}

func NewWorker(opt asynq.RedisClientOpt, bus commands.Bus, cfg WorkerConfig, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      map[string]int{defaultQueue: 1},
		Logger:      asynqLogger{logger},
	})
	periodic := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: time.UTC, Logger: asynqLogger{logger}})
	return &Worker{
		server:    server,
		periodic:  periodic,
		mux:       NewMux(bus, cfg.SweepLead, logger),
		sweepSpec: cfg.SweepSpec,
		logger:    logger,
	}
}

// NewMux routes task types to commands.
func NewMux(bus commands.Bus, sweepLead time.Duration, logger *slog.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(appschedule.TaskCompleteBooking, completeBookingTask(bus, logger))
	mux.HandleFunc(appschedule.TaskReminderSweep, reminderSweepTask(bus, sweepLead, logger))
	return mux
}

func (w *Worker) Run(ctx context.Context) error {
	if w.sweepSpec != "" {
		task := asynq.NewTask(appschedule.TaskReminderSweep, nil)
		if _, err := w.periodic.Register(w.sweepSpec, task, asynq.Queue(defaultQueue), asynq.MaxRetry(0)); err != nil {
			return fmt.Errorf("schedule: register reminder sweep %q: %w", w.sweepSpec, err)
		}
		if err := w.periodic.Start(); err != nil {
			return fmt.Errorf("schedule: start periodic scheduler: %w", err)
		}
		defer w.periodic.Shutdown()
	}
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("schedule: start worker: %w", err)
	}
	w.logger.Info("task worker started", "sweep_spec", w.sweepSpec)
	<-ctx.Done()
	w.server.Shutdown()
	return nil
}

func completeBookingTask(bus commands.Bus, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p appschedule.CompleteBookingPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil || p.BookingID == "" {
			logger.Error("complete booking task has a bad payload", "error", err)
			return asynq.SkipRetry
		}
		_, err := commands.Dispatch[booking.AutoCompleteBookingCommand, dto.BookingDTO](ctx, bus, booking.AutoCompleteBookingCommand{BookingID: p.BookingID})
		return taskError(err)
	}
}

func reminderSweepTask(bus commands.Bus, lead time.Duration, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		res, err := commands.Dispatch[reminders.SweepCommand, reminders.SweepResult](ctx, bus, reminders.SweepCommand{Lead: lead})
		if err != nil {
			return taskError(err)
		}
		logger.Info("reminder sweep finished", "reminded", len(res.Reminded))
		return nil
	}
}

// taskError retries infrastructure failures only. A booking that is gone or in
// the wrong state will not change on retry.
func taskError(err error) error {
	if err == nil {
		return nil
	}
	switch apperr.Classify(err).Kind {
	case apperr.KindStore, apperr.KindUnavailable, apperr.KindInternal:
		return err
	default:
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
}

type asynqLogger struct {
	l *slog.Logger
}

func (a asynqLogger) Debug(args ...any) { a.l.Debug(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...any)  { a.l.Info(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...any)  { a.l.Warn(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...any) { a.l.Error(fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...any) { a.l.Error(fmt.Sprint(args...)) }
