package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"glampstay/internal/app/middleware"
	appnotify "glampstay/internal/app/notify"
	appoutbox "glampstay/internal/app/outbox"
	"glampstay/internal/app/policies"
	"glampstay/internal/app/schedule"
	"glampstay/internal/app/services/identity"
	"glampstay/internal/app/uow"
	"glampstay/internal/app/wiring"
	domainproperty "glampstay/internal/domain/property"
	domainuser "glampstay/internal/domain/user"
	"glampstay/internal/infra/broker/kafka"
	"glampstay/internal/infra/cache"
	"glampstay/internal/infra/config"
	mongostore "glampstay/internal/infra/db/mongo"
	ginserver "glampstay/internal/infra/http/gin"
	"glampstay/internal/infra/inbox"
	"glampstay/internal/infra/notify"
	"glampstay/internal/infra/obs"
	infraoutbox "glampstay/internal/infra/outbox"
	"glampstay/internal/infra/payments/stripe"
	infraschedule "glampstay/internal/infra/schedule"
	"glampstay/internal/infra/security"
	"glampstay/internal/infra/storage/memory"
	"glampstay/internal/infra/storage/s3"
	"glampstay/internal/infra/validation"
)

const serviceName = "glampstay"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	shutdownTracer, err := obs.InitTracer(ctx, serviceName, cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}

	if cfg.PropertyFixtures != "" {
		if err := loadPropertyFixtures(ctx, app.properties, cfg.PropertyFixtures, logger); err != nil {
			logger.Warn("property fixtures load failed", "error", err, "path", cfg.PropertyFixtures)
		}
	}

	var workers sync.WaitGroup
	for _, run := range app.background {
		workers.Add(1)
		go func(run func(context.Context) error) {
			defer workers.Done()
			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("background worker stopped", "error", err)
			}
		}(run)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: app.ready}, app.handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "store", cfg.StoreMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		stop()
	}

	workers.Wait()
	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, closeFn := range app.closers {
		if err := closeFn(closeCtx); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}
	if err := shutdownTracer(closeCtx); err != nil {
		logger.Warn("tracer shutdown failed", "error", err)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers   ginserver.Handlers
	properties domainproperty.Repository
	background []func(context.Context) error
	closers    []func(context.Context) error
	ready      func(context.Context) error
}

// relaySource is the outbox seen from both sides: handlers add records and the
// relay claims them.
type relaySource interface {
	appoutbox.Outbox
	infraoutbox.Source
	Wake() <-chan struct{}
}

type stores struct {
	uow         uow.UoWFactory
	outbox      relaySource
	idempotency middleware.IdempotencyStore
	inbox       infraoutbox.Inbox
	properties  domainproperty.Repository
	users       domainuser.Repository
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{}
	var readiness []func(context.Context) error

	st, err := buildStores(ctx, cfg, app, &readiness)
	if err != nil {
		return nil, err
	}

	var appCache policies.Cache = cache.NewMemory()
	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = cache.NewClient(ctx, cache.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB, Prefix: serviceName + ":"})
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		redisCache := cache.NewRedis(redisClient, serviceName+":")
		appCache = redisCache
		readiness = append(readiness, redisCache.Ping)
		app.closers = append(app.closers, func(context.Context) error { return redisClient.Close() })
	}

	var photos policies.PhotoStore = s3.NoopUploader{}
	if cfg.S3Enabled() {
		client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.PublicS3Endpoint(), logger)
		if err != nil {
			return nil, fmt.Errorf("s3: %w", err)
		}
		photos = client
	}

	var payments policies.PaymentsPort = stripe.Unconfigured{}
	if cfg.StripeSecretKey != "" {
		refunder, err := stripe.NewRefunder(cfg.StripeSecretKey)
		if err != nil {
			return nil, fmt.Errorf("stripe: %w", err)
		}
		payments = refunder
	}

	var scheduler schedule.Scheduler = schedule.Nop{}
	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	if cfg.RedisEnabled() {
		asynqScheduler := infraschedule.NewScheduler(redisOpt)
		scheduler = asynqScheduler
		app.closers = append(app.closers, func(context.Context) error { return asynqScheduler.Close() })
	}

	buses := wiring.Build(wiring.Deps{
		UoW:         st.uow,
		Outbox:      st.outbox,
		Idempotency: st.idempotency,
		Validator:   validation.New(),
		Cache:       appCache,
		Photos:      photos,
		Payments:    payments,
		Scheduler:   scheduler,
		Logger:      logger,
		Clock:       time.Now,
		NewID:       uuid.NewString,
	})

	if cfg.RedisEnabled() {
		worker := infraschedule.NewWorker(redisOpt, buses.Commands, infraschedule.WorkerConfig{
			SweepSpec: cfg.ReminderSweepSpec,
			SweepLead: cfg.ReminderLead,
		}, logger.With("component", "scheduler"))
		app.background = append(app.background, worker.Run)
	}

	if err := buildNotifications(ctx, cfg, logger, st, app); err != nil {
		return nil, err
	}

	var (
		resolver ginserver.IdentityResolver
		devices  ginserver.DeviceRegistry
	)
	if cfg.IdentityJWTSecret != "" {
		ident := &identity.Service{
			Verifier: security.JWTIdentity{Secret: []byte(cfg.IdentityJWTSecret), Issuer: cfg.IdentityIssuer, Leeway: 30 * time.Second},
			Users:    st.users,
			Logger:   logger.With("component", "identity"),
		}
		resolver, devices = ident, ident
	} else {
		logger.Warn("identity provider not configured, requests stay anonymous")
	}

	app.handlers = ginserver.Handlers{
		Booking:        ginserver.BookingHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Property:       ginserver.PropertyHandler{Queries: buses.Queries, Logger: logger},
		Admin:          ginserver.AdminHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Me:             ginserver.MeHandler{Queries: buses.Queries, Devices: devices, Logger: logger},
		Contact:        ginserver.ContactHandler{Commands: buses.Commands, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Identity: resolver, Logger: logger}.Handle,
		RateLimits:     rateLimits(cfg, redisClient),
	}
	if cfg.OpsKeyHash != "" {
		app.handlers.Ops = ginserver.OpsHandler{
			Commands:     buses.Commands,
			Keys:         security.OpsKeyVerifier{Hash: cfg.OpsKeyHash},
			ReminderLead: cfg.ReminderLead,
			Logger:       logger,
		}
	}

	app.properties = st.properties
	app.ready = func(ctx context.Context) error {
		for _, check := range readiness {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
	return app, nil
}

func buildStores(ctx context.Context, cfg config.Config, app *application, readiness *[]func(context.Context) error) (stores, error) {
	if !cfg.Mongo() {
		properties := memory.NewPropertyRepository()
		users := memory.NewUserRepository()
		return stores{
			uow:         memory.NewFactory(properties, memory.NewBookingRepository(), users, memory.NewContactRepository()),
			outbox:      memory.NewOutbox(),
			idempotency: memory.NewIdempotencyStore(),
			inbox:       memory.NewInbox(),
			properties:  properties,
			users:       users,
		}, nil
	}

	client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return stores{}, fmt.Errorf("mongo: %w", err)
	}
	*readiness = append(*readiness, client.Ping)
	app.closers = append(app.closers, client.Close)
	db := client.DB
	return stores{
		uow:         mongostore.NewFactory(db),
		outbox:      infraoutbox.NewStore(db),
		idempotency: mongostore.NewIdempotencyStore(db),
		inbox:       inbox.NewStore(db, cfg.KafkaConsumerGroup),
		properties:  mongostore.NewPropertyRepository(db),
		users:       mongostore.NewUserRepository(db),
	}, nil
}

// buildNotifications relays the outbox to the notification dispatcher, either
// in process or through Kafka.
func buildNotifications(ctx context.Context, cfg config.Config, logger *slog.Logger, st stores, app *application) error {
	var mailer policies.Mailer = notify.LogMailer{Logger: logger}
	if cfg.SMTPHost != "" {
		smtpMailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
			FromEmail: cfg.SMTPFrom,
			FromName:  cfg.SMTPFromName,
			StartTLS:  cfg.SMTPStartTLS,
			Timeout:   10 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("smtp: %w", err)
		}
		mailer = smtpMailer
	}

	dispatcher := &appnotify.Dispatcher{
		Mailer:     mailer,
		Users:      st.users,
		Limiter:    appnotify.NewLimiter(cfg.NotifyRatePerSec),
		StaffEmail: cfg.StaffEmail,
		Logger:     logger.With("component", "notify"),
	}
	if cfg.FCMCredentialsFile != "" {
		push, err := notify.NewFCMSender(ctx, cfg.FCMCredentialsFile, logger)
		if err != nil {
			logger.Warn("push notifications disabled", "error", err)
		} else {
			dispatcher.Push = push
		}
	}
	delivery := &infraoutbox.Delivery{Inbox: st.inbox, Handler: dispatcher, Logger: logger.With("component", "delivery")}

	relay := &infraoutbox.Worker{
		Source:      st.outbox,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		EventSource: "app://" + serviceName,
		ID:          serviceName + "-" + uuid.NewString()[:8],
		Backoff:     cfg.RetryBackoff,
		Wake:        st.outbox.Wake(),
		Logger:      logger.With("component", "outbox"),
	}

	if !cfg.KafkaEnabled() {
		relay.Producer = infraoutbox.LocalProducer{Delivery: delivery}
		app.background = append(app.background, relay.Run)
		return nil
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		return fmt.Errorf("kafka producer: %w", err)
	}
	relay.Producer = producer
	app.closers = append(app.closers, func(context.Context) error { return producer.Close() })

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup, nil, kafka.PayloadHandler(delivery.Deliver), cfg.RetryBackoff, logger.With("component", "consumer"))
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	app.closers = append(app.closers, func(context.Context) error { return consumer.Close() })
	topics := []string{
		infraoutbox.TopicFor(cfg.KafkaTopicPrefix, "booking.confirmed"),
		infraoutbox.TopicFor(cfg.KafkaTopicPrefix, "contact.submitted"),
	}
	app.background = append(app.background, relay.Run, func(ctx context.Context) error {
		return consumer.Run(ctx, topics)
	})
	return nil
}

func rateLimits(cfg config.Config, client *redis.Client) ginserver.RateLimits {
	if !cfg.RateLimitEnabled {
		return ginserver.RateLimits{}
	}
	local := ginserver.NewLocalLimiter()
	limits := ginserver.RateLimits{
		Limiter:  local,
		Fallback: local,
		Booking:  ginserver.RateLimitPolicy{Name: "booking", Limit: cfg.RateLimitBookingRequests, Window: cfg.RateLimitWindow},
		Default:  ginserver.RateLimitPolicy{Name: "default", Limit: cfg.RateLimitDefaultRequests, Window: cfg.RateLimitWindow},
	}
	if client != nil {
		limits.Limiter = ginserver.RedisLimiter{Client: client, Prefix: serviceName + ":"}
	}
	return limits
}
