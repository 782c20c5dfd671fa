package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/nickprotop/NeighborTools-sub003/internal/logger"
)

// Sender delivers a push message to a single device token.
type Sender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type FCMSender struct {
	client messagingClient
}

// NewFCMSender builds a Firebase Cloud Messaging sender from a service account file.
func NewFCMSender(ctx context.Context, credentialsFile, projectID string) (*FCMSender, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging: %w", err)
	}
	return &FCMSender{client: client}, nil
}

func (s *FCMSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return nil
	}

	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": "10",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  body,
					},
					Sound: "default",
				},
			},
		},
	}

	logger.ExternalServiceCall("FCM", "Send", "title", title)
	id, err := s.client.Send(ctx, message)
	logger.ExternalServiceResult("FCM", "Send", err, "messageID", id)
	if err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}
	return nil
}

// NopSender drops every message. Used when Firebase is not configured.
type NopSender struct{}

func (NopSender) Send(context.Context, string, string, string, map[string]string) error { return nil }
