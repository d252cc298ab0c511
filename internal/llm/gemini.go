package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

const defaultGenerateTimeout = 60 * time.Second

// GeminiClient calls the Gemini generateContent API.
type GeminiClient struct {
	model  string
	client *genai.Client
}

// GeminiOption customises the underlying genai client config.
type GeminiOption func(*genai.ClientConfig)

// WithGeminiBaseURL points the client at a different API host.
func WithGeminiBaseURL(url string) GeminiOption {
	return func(cfg *genai.ClientConfig) {
		cfg.HTTPOptions.BaseURL = url
	}
}

// NewGeminiClient builds a client against the Gemini Developer API.
func NewGeminiClient(ctx context.Context, apiKey, model string, opts ...GeminiOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiClient{model: model, client: cli}, nil
}

func (c *GeminiClient) Model() string { return c.model }

func (c *GeminiClient) Humanize(ctx context.Context, text string) (string, error) {
	if c == nil || c.client == nil {
		return "", wrapErr("gemini", fmt.Errorf("nil genai client"))
	}
	reqCtx, cancel := context.WithTimeout(ctx, defaultGenerateTimeout)
	defer cancel()

	resp, err := c.client.Models.GenerateContent(reqCtx, c.model, genai.Text(BuildPrompt(text)), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(Temperature),
		TopK:        genai.Ptr(TopK),
		TopP:        genai.Ptr(TopP),
	})
	if err != nil {
		return "", wrapErr("gemini", err)
	}
	return orFallback(resp.Text()), nil
}
