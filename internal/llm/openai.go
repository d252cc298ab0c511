package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient calls the OpenAI Chat Completions API.
type OpenAIClient struct {
	model  openai.ChatModel
	client *openai.Client
}

// NewOpenAIClient builds a client with defaults against api.openai.com.
// Extra request options (base URL, HTTP client) are passed through.
func NewOpenAIClient(apiKey string, model openai.ChatModel, opts ...option.RequestOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	// One call per rewrite: the SDK's automatic retries are switched off.
	base := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	cli := openai.NewClient(append(base, opts...)...)
	return &OpenAIClient{
		model:  model,
		client: &cli,
	}, nil
}

func (c *OpenAIClient) Model() string { return string(c.model) }

// Humanize sends the rewrite prompt as a single user message. Chat Completions
// has no top-k parameter, so only temperature and top-p are applied.
func (c *OpenAIClient) Humanize(ctx context.Context, text string) (string, error) {
	if c == nil || c.client == nil {
		return "", wrapErr("openai", fmt.Errorf("nil openai client"))
	}
	reqCtx, cancel := context.WithTimeout(ctx, defaultGenerateTimeout)
	defer cancel()
	resp, err := c.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(BuildPrompt(text)),
					},
				},
			},
		},
		Temperature: openai.Float(float64(Temperature)),
		TopP:        openai.Float(float64(TopP)),
	})
	if err != nil {
		return "", wrapErr("openai", err)
	}
	if len(resp.Choices) == 0 {
		return EmptyResponseText, nil
	}
	return orFallback(resp.Choices[0].Message.Content), nil
}
