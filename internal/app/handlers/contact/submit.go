package contact

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"glampstay/internal/app/commands"
	"glampstay/internal/app/handlers/support"
	"glampstay/internal/app/outbox"
	domainauth "glampstay/internal/domain/auth"
	domaincontact "glampstay/internal/domain/contact"
)

const submitKey = "contact.submit"

type SubmitCommand struct {
	Name    string `validate:"required,max=120"`
	Email   string `validate:"required,email"`
	Subject string `validate:"max=200"`
	Message string `validate:"required"`
}

func (SubmitCommand) Key() string { return submitKey }

func (SubmitCommand) AllowAnonymous() bool { return true }

type SubmitResult struct {
	MessageID string `json:"messageId"`
}

type SubmitHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
	Clock   support.Clock
}

func (h *SubmitHandler) Handle(ctx context.Context, cmd SubmitCommand) (*SubmitResult, error) {
	unit, err := support.Unit(ctx)
	if err != nil {
		return nil, err
	}
	var userID string
	if principal, ok := domainauth.PrincipalFromContext(ctx); ok {
		userID = string(principal.UserID)
	}
	msg, err := domaincontact.Submit(domaincontact.SubmitParams{
		ID:      domaincontact.MessageID(uuid.NewString()),
		Name:    cmd.Name,
		Email:   cmd.Email,
		Subject: cmd.Subject,
		Body:    cmd.Message,
		UserID:  userID,
		Now:     h.Clock.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Contacts().Save(ctx, msg); err != nil {
		return nil, support.StoreErr(err)
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, msg); err != nil {
		return nil, support.StoreErr(err)
	}
	if h.Logger != nil {
		h.Logger.Info("contact message stored", "message_id", msg.ID, "authenticated", userID != "")
	}
	return &SubmitResult{MessageID: string(msg.ID)}, nil
}

var _ commands.Handler[SubmitCommand, *SubmitResult] = (*SubmitHandler)(nil)
