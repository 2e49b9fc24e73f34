package middleware

import (
	"context"

	"glampstay/internal/app/commands"
	"glampstay/internal/app/outbox"
)

// OutboxFlush wakes the relay after a command commits. The events are already stored,
// so a flush error never fails the command.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err != nil {
				return nil, err
			}
			_ = box.Flush(ctx)
			return res, nil
		})
	}
}
