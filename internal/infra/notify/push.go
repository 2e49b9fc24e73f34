package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"glampstay/internal/app/policies"
)

// FCMSender pushes to Firebase Cloud Messaging device tokens.
type FCMSender struct {
	client *messaging.Client
	logger *slog.Logger
}

func NewFCMSender(ctx context.Context, credentialsFile string, logger *slog.Logger) (*FCMSender, error) {
	if credentialsFile == "" {
		return nil, errors.New("notify: fcm credentials file is required")
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("notify: init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("notify: firebase messaging client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FCMSender{client: client, logger: logger}, nil
}

func (s *FCMSender) Push(ctx context.Context, msg policies.PushMessage) error {
	if len(msg.Tokens) == 0 {
		return nil
	}
	resp, err := s.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens: msg.Tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{Aps: &messaging.Aps{Sound: "default"}},
		},
	})
	if err != nil {
		return fmt.Errorf("notify: fcm send: %w", err)
	}
	if resp.FailureCount > 0 {
		s.logger.Warn("some push deliveries failed", "failed", resp.FailureCount, "sent", resp.SuccessCount)
	}
	return nil
}

var _ policies.PushSender = (*FCMSender)(nil)
