package domain

import (
	"context"
	"time"
)

// RawMessage is one provider notification as fetched from the mailbox.
// The snippet usually carries the standard activity lines; the full body
// additionally carries free-text activity entries.
type RawMessage struct {
	MessageID  string
	Snippet    string
	Body       string
	ReceivedAt time.Time
}

// MailSource supplies the raw provider notifications for a calendar date.
type MailSource interface {
	Fetch(ctx context.Context, date string) ([]RawMessage, error)
}

// Notifier delivers a rendered daily summary to the configured recipient.
type Notifier interface {
	Send(ctx context.Context, subject, textBody, htmlBody string) error
}
