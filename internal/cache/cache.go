// Package cache remembers text extracted from uploaded documents so a repeated
// upload of the same file skips parsing.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores extracted text by content key.
type Cache interface {
	// GetText returns the cached text for key. ok is false on a miss.
	GetText(ctx context.Context, key string) (text string, ok bool, err error)

	// SetText stores text under key for ttl.
	SetText(ctx context.Context, key, text string, ttl time.Duration) error

	Close() error
}

// Key derives a cache key from the MIME type and raw bytes of a document.
func Key(mimeType string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(mimeType))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}
