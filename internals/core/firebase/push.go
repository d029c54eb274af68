package firebase

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// ErrStaleToken is returned when FCM reports the device token as no longer registered.
var ErrStaleToken = errors.New("fcm token unregistered")

type PushMessage struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

type Pusher interface {
	Send(ctx context.Context, msg PushMessage) error
}

type FCMPusher struct {
	client *messaging.Client
}

// NewPusher returns a no-op pusher when credentialsFile is empty.
func NewPusher(ctx context.Context, credentialsFile string) (Pusher, error) {
	if credentialsFile == "" {
		return NopPusher{}, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase messaging: %w", err)
	}

	return &FCMPusher{client: client}, nil
}

func (p *FCMPusher) Send(ctx context.Context, msg PushMessage) error {
	_, err := p.client.Send(ctx, &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	})
	if err != nil {
		if messaging.IsUnregistered(err) {
			return fmt.Errorf("%w: %v", ErrStaleToken, err)
		}
		return fmt.Errorf("failed to send push: %w", err)
	}
	return nil
}

type NopPusher struct{}

func (NopPusher) Send(context.Context, PushMessage) error { return nil }
