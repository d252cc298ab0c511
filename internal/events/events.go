package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"humanizer/internal/retry"
)

// Type names a session lifecycle event.
type Type string

const (
	TypeCreated     Type = "session.created"
	TypeReadingFile Type = "session.reading_file"
	TypeIdle        Type = "session.idle"
	TypeProcessing  Type = "session.processing"
	TypeCompleted   Type = "session.completed"
	TypeError       Type = "session.error"
	TypeCleared     Type = "session.cleared"
	TypeDeleted     Type = "session.deleted"
)

// Event is a notification about a session state change.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       Type      `json:"type"`
	SessionID  uuid.UUID `json:"session_id"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers events to observers.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// PublishWithRetry attempts to publish with retries and exponential backoff.
func PublishWithRetry(ctx context.Context, p Publisher, ev Event, attempts int, base time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if err := p.Publish(ctx, ev); err == nil {
			return nil
		} else if attempt == attempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry.ExponentialBackoff(attempt, base)):
		}
	}
	return nil
}
