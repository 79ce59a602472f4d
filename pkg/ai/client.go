package ai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ErrCompletion wraps any failure of the completion endpoint; callers may
// retry the whole turn.
var ErrCompletion = errors.New("completion request failed")

const (
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

// Message is one content turn sent to the completion service.
type Message struct {
	Role    string
	Content string
}

// Client talks to an OpenAI-compatible chat completion endpoint
// (DeepSeek, OpenAI, or any gateway speaking the same protocol).
type Client struct {
	client *openai.Client
	model  string
}

func NewClient(baseURL, apiKey, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Complete sends the ordered turns and returns the assistant text.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: chatMessages,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletion, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrCompletion)
	}

	return resp.Choices[0].Message.Content, nil
}
