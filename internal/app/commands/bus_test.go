package commands

import (
	"context"
	"errors"
	"testing"
)

type pingCommand struct{ Value string }

func (pingCommand) Key() string { return "test.ping" }

type otherCommand struct{}

func (otherCommand) Key() string { return "test.other" }

func TestDispatchTypedHandler(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[pingCommand, string](bus, "test.ping", HandlerFunc[pingCommand, string](func(ctx context.Context, cmd pingCommand) (string, error) {
		return "pong:" + cmd.Value, nil
	}))

	got, err := Dispatch[pingCommand, string](context.Background(), bus, pingCommand{Value: "a"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "pong:a" {
		t.Fatalf("got %q", got)
	}
	if _, err := Dispatch[otherCommand, string](context.Background(), bus, otherCommand{}); !errors.Is(err, ErrHandlerNotFound) {
		t.Fatalf("expected ErrHandlerNotFound, got %v", err)
	}
	if _, err := Dispatch[pingCommand, int](context.Background(), bus, pingCommand{}); !errors.Is(err, ErrResultType) {
		t.Fatalf("expected ErrResultType, got %v", err)
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	bus := NewInMemoryBus()
	h := HandlerFunc[pingCommand, string](func(context.Context, pingCommand) (string, error) { return "", nil })
	RegisterHandler[pingCommand, string](bus, "test.ping", h)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate key")
		}
	}()
	RegisterHandler[pingCommand, string](bus, "test.ping", h)
}
