package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Notification is the push payload handed to the transport.
type Notification struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Notifier delivers a notification to a device token. Callers treat delivery
// as best-effort; a send failure never rolls back the state that triggered
// it.
type Notifier interface {
	Send(ctx context.Context, token string, n Notification) error
}

// LogNotifier writes notifications to the log instead of a real transport.
// Used in development and as the fallback when no webhook is configured.
type LogNotifier struct {
	Log zerolog.Logger
}

func (l LogNotifier) Send(ctx context.Context, token string, n Notification) error {
	l.Log.Info().Str("token", token).Str("title", n.Title).Str("body", n.Body).Msg("notification (log only)")
	return nil
}
