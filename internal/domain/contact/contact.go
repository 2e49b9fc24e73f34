package contact

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"glampstay/internal/domain/shared/events"
)

var (
	ErrNameRequired    = errors.New("contact: name is required")
	ErrInvalidEmail    = errors.New("contact: email is invalid")
	ErrMessageRequired = errors.New("contact: message is required")
	ErrMessageTooLong  = errors.New("contact: message is too long")
)

const maxMessageLength = 5000

type MessageID string

// Message is an inquiry left through the public contact form.
type Message struct {
	ID        MessageID
	Name      string
	Email     string
	Subject   string
	Body      string
	UserID    string
	CreatedAt time.Time
	events.EventRecorder
}

type Repository interface {
	Save(ctx context.Context, msg *Message) error
}

type SubmitParams struct {
	ID      MessageID
	Name    string
	Email   string
	Subject string
	Body    string
	UserID  string
	Now     time.Time
}

func Submit(params SubmitParams) (*Message, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, ErrInvalidEmail
	}
	body := strings.TrimSpace(params.Body)
	if body == "" {
		return nil, ErrMessageRequired
	}
	if len(body) > maxMessageLength {
		return nil, ErrMessageTooLong
	}
	subject := strings.TrimSpace(params.Subject)
	if subject == "" {
		subject = "Website inquiry"
	}
	now := params.Now.UTC()
	msg := &Message{
		ID:        params.ID,
		Name:      name,
		Email:     email,
		Subject:   subject,
		Body:      body,
		UserID:    params.UserID,
		CreatedAt: now,
	}
	msg.Record(MessageSubmitted{MessageID: msg.ID, Name: name, Email: email, Subject: subject, Body: body, At: now})
	return msg, nil
}

type MessageSubmitted struct {
	MessageID MessageID `json:"messageId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	At        time.Time `json:"at"`
}

func (e MessageSubmitted) EventName() string     { return "contact.submitted" }
func (e MessageSubmitted) AggregateID() string   { return string(e.MessageID) }
func (e MessageSubmitted) OccurredAt() time.Time { return e.At }
