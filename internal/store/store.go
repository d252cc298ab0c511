package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"humanizer/internal/textstats"
)

var ErrRewriteNotFound = errors.New("rewrite not found")

// Rewrite is one completed humanize call.
type Rewrite struct {
	ID        uuid.UUID       `json:"id"`
	SessionID uuid.UUID       `json:"session_id"`
	Original  string          `json:"original"`
	Humanized string          `json:"humanized"`
	Model     string          `json:"model"`
	Stats     textstats.Stats `json:"stats"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store persists rewrite history.
type Store interface {
	SaveRewrite(ctx context.Context, rw Rewrite) (Rewrite, error)
	GetRewrite(ctx context.Context, id uuid.UUID) (Rewrite, error)
	// ListRewrites returns a session's rewrites, newest first.
	ListRewrites(ctx context.Context, sessionID uuid.UUID) ([]Rewrite, error)
	Close() error
}

// prepare fills the ID and timestamp of a new record.
func prepare(rw Rewrite) Rewrite {
	if rw.ID == uuid.Nil {
		rw.ID = uuid.New()
	}
	if rw.CreatedAt.IsZero() {
		rw.CreatedAt = time.Now().UTC()
	}
	if rw.Stats.BannedPhrases == nil {
		rw.Stats.BannedPhrases = []string{}
	}
	return rw
}
