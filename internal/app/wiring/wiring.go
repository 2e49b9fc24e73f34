package wiring

import (
	"log/slog"

	"glampstay/internal/app/commands"
	"glampstay/internal/app/dto"
	bookingapp "glampstay/internal/app/handlers/booking"
	contactapp "glampstay/internal/app/handlers/contact"
	meapp "glampstay/internal/app/handlers/me"
	propertyapp "glampstay/internal/app/handlers/properties"
	remindersapp "glampstay/internal/app/handlers/reminders"
	"glampstay/internal/app/handlers/support"
	"glampstay/internal/app/middleware"
	"glampstay/internal/app/outbox"
	"glampstay/internal/app/policies"
	"glampstay/internal/app/queries"
	"glampstay/internal/app/schedule"
	"glampstay/internal/app/uow"
)

// Deps are the ports the application handlers run against.
type Deps struct {
	UoW         uow.UoWFactory
	Outbox      outbox.Outbox
	Idempotency middleware.IdempotencyStore
	Validator   middleware.Validator
	Cache       policies.Cache
	Photos      policies.PhotoStore
	Payments    policies.PaymentsPort
	Scheduler   schedule.Scheduler
	Logger      *slog.Logger
	Clock       support.Clock
	NewID       func() string
}

// Buses are the middleware-wrapped entry points used by transports and workers.
type Buses struct {
	Commands commands.Bus
	Queries  queries.Bus
}

// Build registers every handler and wraps both buses. Commands run as
// tracing, validation, authorization, idempotency, outbox flush, then the
// transaction. Replays happen only for callers that passed authorization, and
// the relay is only woken once the unit of work committed.
func Build(d Deps) Buses {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	scheduler := d.Scheduler
	if scheduler == nil {
		scheduler = schedule.Nop{}
	}
	encoder := outbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	createHandler := &bookingapp.CreateBookingHandler{
		Outbox:  d.Outbox,
		Encoder: encoder,
		Logger:  logger.With("handler", "create_booking"),
		Clock:   d.Clock,
		NewID:   d.NewID,
	}
	commands.RegisterHandler(commandBus, bookingapp.CreateBookingCommand{}.Key(), commands.Handler[bookingapp.CreateBookingCommand, *bookingapp.CreateBookingResult](createHandler))
	cancelHandler := &bookingapp.CancelBookingHandler{
		Payments: d.Payments,
		Outbox:   d.Outbox,
		Encoder:  encoder,
		Logger:   logger.With("handler", "cancel_booking"),
		Clock:    d.Clock,
	}
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), commands.Handler[bookingapp.CancelBookingCommand, *bookingapp.CancelBookingResult](cancelHandler))
	updateHandler := &bookingapp.UpdateBookingHandler{Logger: logger.With("handler", "update_booking"), Clock: d.Clock}
	commands.RegisterHandler(commandBus, bookingapp.UpdateBookingCommand{}.Key(), commands.Handler[bookingapp.UpdateBookingCommand, dto.BookingDTO](updateHandler))

	adminBookings := &bookingapp.AdminBookingHandler{
		Scheduler: scheduler,
		Outbox:    d.Outbox,
		Encoder:   encoder,
		Logger:    logger.With("handler", "admin_bookings"),
		Clock:     d.Clock,
	}
	commands.RegisterHandler(commandBus, bookingapp.ConfirmBookingCommand{}.Key(), commands.HandlerFunc[bookingapp.ConfirmBookingCommand, dto.BookingDTO](adminBookings.Confirm))
	commands.RegisterHandler(commandBus, bookingapp.CompleteBookingCommand{}.Key(), commands.HandlerFunc[bookingapp.CompleteBookingCommand, dto.BookingDTO](adminBookings.Complete))
	commands.RegisterHandler(commandBus, bookingapp.RecordPaymentCommand{}.Key(), commands.HandlerFunc[bookingapp.RecordPaymentCommand, dto.BookingDTO](adminBookings.RecordPayment))
	commands.RegisterHandler(commandBus, bookingapp.AutoCompleteBookingCommand{}.Key(), commands.HandlerFunc[bookingapp.AutoCompleteBookingCommand, dto.BookingDTO](adminBookings.AutoComplete))

	adminProperties := &propertyapp.AdminHandler{
		Photos:  d.Photos,
		Cache:   d.Cache,
		Outbox:  d.Outbox,
		Encoder: encoder,
		Logger:  logger.With("handler", "admin_properties"),
		Clock:   d.Clock,
	}
	commands.RegisterHandler(commandBus, propertyapp.CreatePropertyCommand{}.Key(), commands.HandlerFunc[propertyapp.CreatePropertyCommand, dto.PropertyDTO](adminProperties.Create))
	commands.RegisterHandler(commandBus, propertyapp.UpdateRatesCommand{}.Key(), commands.HandlerFunc[propertyapp.UpdateRatesCommand, dto.PropertyDTO](adminProperties.UpdateRates))
	commands.RegisterHandler(commandBus, propertyapp.UploadPhotoCommand{}.Key(), commands.HandlerFunc[propertyapp.UploadPhotoCommand, dto.PropertyDTO](adminProperties.UploadPhoto))
	commands.RegisterHandler(commandBus, propertyapp.SetPropertyStateCommand{}.Key(), commands.HandlerFunc[propertyapp.SetPropertyStateCommand, dto.PropertyDTO](adminProperties.SetState))

	contactHandler := &contactapp.SubmitHandler{
		Outbox:  d.Outbox,
		Encoder: encoder,
		Logger:  logger.With("handler", "contact"),
		Clock:   d.Clock,
	}
	commands.RegisterHandler(commandBus, contactapp.SubmitCommand{}.Key(), commands.Handler[contactapp.SubmitCommand, *contactapp.SubmitResult](contactHandler))
	sweepHandler := &remindersapp.SweepHandler{
		Outbox:  d.Outbox,
		Encoder: encoder,
		Logger:  logger.With("handler", "reminder_sweep"),
		Clock:   d.Clock,
	}
	commands.RegisterHandler(commandBus, remindersapp.SweepCommand{}.Key(), commands.Handler[remindersapp.SweepCommand, *remindersapp.SweepResult](sweepHandler))

	queryBus := queries.NewInMemoryBus()
	catalog := &propertyapp.CatalogHandler{UoWFactory: d.UoW, Cache: d.Cache, Logger: logger.With("handler", "catalog")}
	queries.RegisterHandler(queryBus, propertyapp.ListPropertiesQuery{}.Key(), queries.HandlerFunc[propertyapp.ListPropertiesQuery, dto.PropertyCollection](catalog.List))
	queries.RegisterHandler(queryBus, propertyapp.GetPropertyQuery{}.Key(), queries.HandlerFunc[propertyapp.GetPropertyQuery, dto.PropertyDTO](catalog.Get))
	queries.RegisterHandler(queryBus, propertyapp.ListPoliciesQuery{}.Key(), queries.HandlerFunc[propertyapp.ListPoliciesQuery, []dto.PolicyDTO](catalog.Policies))
	quotes := &propertyapp.QuoteHandler{UoWFactory: d.UoW, Logger: logger.With("handler", "quote"), Clock: d.Clock}
	queries.RegisterHandler(queryBus, propertyapp.QuoteQuery{}.Key(), queries.HandlerFunc[propertyapp.QuoteQuery, dto.QuoteDTO](quotes.Quote))
	queries.RegisterHandler(queryBus, propertyapp.AvailabilityQuery{}.Key(), queries.HandlerFunc[propertyapp.AvailabilityQuery, dto.AvailabilityDTO](quotes.Availability))
	queries.RegisterHandler(queryBus, bookingapp.GetBookingQuery{}.Key(), queries.Handler[bookingapp.GetBookingQuery, dto.BookingDTO](&bookingapp.GetBookingHandler{UoWFactory: d.UoW}))
	queries.RegisterHandler(queryBus, bookingapp.ListBookingsQuery{}.Key(), queries.Handler[bookingapp.ListBookingsQuery, dto.BookingCollection](&bookingapp.ListBookingsHandler{UoWFactory: d.UoW, Logger: logger}))
	queries.RegisterHandler(queryBus, meapp.ListGuestBookingsQuery{}.Key(), queries.Handler[meapp.ListGuestBookingsQuery, dto.BookingCollection](&meapp.ListGuestBookingsHandler{UoWFactory: d.UoW, Logger: logger}))

	authorizer := middleware.RoleAuthorizer{}
	return Buses{
		Commands: middleware.ChainCommands(
			commandBus,
			middleware.Tracing(),
			middleware.Validation(d.Validator),
			middleware.Authorization(authorizer),
			middleware.Idempotency(d.Idempotency, nil),
			middleware.OutboxFlush(d.Outbox),
			middleware.Transaction(d.UoW, nil),
		),
		Queries: middleware.ChainQueries(
			queryBus,
			middleware.QueryTracing(),
			middleware.QueryValidation(d.Validator),
			middleware.QueryAuthorization(authorizer),
		),
	}
}
