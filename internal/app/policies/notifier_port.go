package policies

import "context"

// Email is a rendered message ready for delivery.
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// PushMessage goes to every registered device of one user.
type PushMessage struct {
	Tokens []string
	Title  string
	Body   string
	Data   map[string]string
}

type PushSender interface {
	Push(ctx context.Context, msg PushMessage) error
}
