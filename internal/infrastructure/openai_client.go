package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"chatdesk/internal/entities"

	"github.com/sashabaranov/go-openai"
)

// OpenAIOptions configures the chat completion calls.
type OpenAIOptions struct {
	APIKey      string
	BaseURL     string // Empty means api.openai.com; any OpenAI compatible endpoint works
	Model       string
	Temperature float32
	MaxTokens   int
}

// OpenAIClient implements interfaces.AIClient over the chat completions API.
type OpenAIClient struct {
	client *openai.Client
	opts   OpenAIOptions
}

func NewOpenAIClient(opts OpenAIOptions) *OpenAIClient {
	config := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		opts:   opts,
	}
}

var errNoChoices = errors.New("no response from language model")

func (c *OpenAIClient) Complete(ctx context.Context, turns []entities.Turn) (*entities.Completion, error) {
	if c.opts.APIKey == "" && c.opts.BaseURL == "" {
		return nil, errors.New("language model API key not configured")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    t.Role,
			Content: t.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.opts.Model,
		Messages:    messages,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errNoChoices
	}

	return &entities.Completion{
		Text:             resp.Choices[0].Message.Content,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}
