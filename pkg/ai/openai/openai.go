package openai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

const NAME = "openai"

// Driver adapts the go-openai client to the ai.ChatCompleter contract.
type Driver struct {
	client *openai.Client
}

func New(token, endpoint string) *Driver {
	cfg := openai.DefaultConfig(token)
	if endpoint != "" {
		cfg.BaseURL = endpoint
	}

	return &Driver{
		client: openai.NewClientWithConfig(cfg),
	}
}

func (s *Driver) Complete(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return s.client.CreateChatCompletion(ctx, req)
}
