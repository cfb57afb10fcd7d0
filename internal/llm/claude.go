package llm

import (
	"context"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/rotisserie/eris"
)

// ClaudeClient calls Anthropic's messages API. It has no JSON response mode,
// so callers rely on the prompt and ExtractJSON.
type ClaudeClient struct {
	client *anthropic.Client
	model  string
}

// NewClaudeClient builds a client; baseURL may be empty for the public API.
func NewClaudeClient(apiKey, model, baseURL string) *ClaudeClient {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &ClaudeClient{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

func (c *ClaudeClient) Generate(ctx context.Context, req Request) (string, error) {
	temperature := req.Temperature
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(c.model),
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(req.Prompt),
				},
			},
		},
		MaxTokens:   maxTokens(req),
		Temperature: &temperature,
	})
	if err != nil {
		return "", eris.Wrap(err, "claude: create message")
	}

	for _, content := range resp.Content {
		if content.Text != nil && *content.Text != "" {
			return *content.Text, nil
		}
	}
	return "", ErrEmptyResponse
}
