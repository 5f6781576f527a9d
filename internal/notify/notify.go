// Package notify defines the outbound delivery capability used to send
// one-time codes out-of-band, plus a log-only implementation for development.
package notify

import (
	"context"
	"log"
)

// Sink delivers a message to an identity's out-of-band channel (email).
// Implementations are fire-and-forget from the caller's point of view but
// fallible; callers decide how a delivery failure affects the request.
type Sink interface {
	Deliver(ctx context.Context, identity, subject, body string) error
}

// LogSink writes deliveries to the process log instead of sending them.
// Used when no mail API is configured (local development). The body contains
// the one-time code, so this must not be used in production.
type LogSink struct{}

// Deliver logs the message and always succeeds.
func (LogSink) Deliver(ctx context.Context, identity, subject, body string) error {
	log.Printf("notify: to=%s subject=%q body=%q", identity, subject, body)
	return nil
}
