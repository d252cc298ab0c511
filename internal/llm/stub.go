package llm

import (
	"context"
	"strings"

	"humanizer/internal/textstats"
)

// StubClient rewrites locally without any network call. It strips em-dashes
// and collapses whitespace, which is enough for development and tests.
type StubClient struct{}

func NewStubClient() *StubClient { return &StubClient{} }

func (StubClient) Model() string { return "stub" }

func (StubClient) Humanize(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", wrapErr("stub", err)
	}
	out := strings.ReplaceAll(text, " "+textstats.EmDash+" ", ", ")
	out = strings.ReplaceAll(out, textstats.EmDash, ", ")
	return orFallback(strings.Join(strings.Fields(out), " ")), nil
}
