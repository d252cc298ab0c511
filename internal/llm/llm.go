package llm

import (
	"context"
	"errors"
	"fmt"
)

// Client rewrites text so it reads as naturally human-written.
type Client interface {
	Humanize(ctx context.Context, text string) (string, error)
	Model() string
}

// Fixed sampling parameters for every rewrite call.
const (
	Temperature float32 = 1.0
	TopK        float32 = 40
	TopP        float32 = 0.95
)

const (
	// EmptyResponseText is returned when the model answers without any text.
	EmptyResponseText = "Failed to generate content."

	// FailureMessage is the user-facing message for any failed rewrite call.
	FailureMessage = "Failed to humanize text. Please try again."
)

// ErrRewriteFailed wraps every provider error.
var ErrRewriteFailed = errors.New("rewrite request failed")

func wrapErr(provider string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrRewriteFailed, provider, err)
}

func orFallback(text string) string {
	if text == "" {
		return EmptyResponseText
	}
	return text
}
