package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"glampstay/internal/app/apperr"
	"glampstay/internal/app/commands"
	"glampstay/internal/app/queries"
)

const tracerName = "glampstay/internal/app"

// Tracing opens one span per command named after its key.
func Tracing() CommandMiddleware {
	tracer := otel.Tracer(tracerName)
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			ctx, span := tracer.Start(ctx, "command "+cmd.Key(), trace.WithAttributes(attribute.String("app.command", cmd.Key())))
			defer span.End()
			res, err := nextFn(ctx, cmd)
			recordOutcome(span, err)
			return res, err
		})
	}
}

func QueryTracing() QueryMiddleware {
	tracer := otel.Tracer(tracerName)
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			ctx, span := tracer.Start(ctx, "query "+q.Key(), trace.WithAttributes(attribute.String("app.query", q.Key())))
			defer span.End()
			res, err := nextFn(ctx, q)
			recordOutcome(span, err)
			return res, err
		})
	}
}

func recordOutcome(span trace.Span, err error) {
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	kind := apperr.KindOf(apperr.Classify(err))
	span.SetAttributes(attribute.String("app.error_kind", string(kind)))
	span.RecordError(err)
	span.SetStatus(codes.Error, string(kind))
}
