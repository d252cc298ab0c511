package session

import (
	"context"

	"github.com/google/uuid"
)

// Store persists sessions between requests.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (Session, error)
	Save(ctx context.Context, s Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	Close() error
}
