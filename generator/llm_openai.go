package generator

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements LLMClient for OpenAI-compatible chat
// endpoints using the official openai-go SDK. It covers text stages
// only; image generation falls back to the configured image provider.
type OpenAIClient struct {
	model string
	opts  []option.RequestOption
}

// NewOpenAIClient builds a client for one resolved API key. BaseURL
// points gateways and compatible providers at their own endpoint.
func NewOpenAIClient(settings Settings, apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: generation API key is required, set OPENAI_API_KEY or pass one with the request", ErrConfig)
	}
	if settings.Model == "" {
		return nil, errors.New("llm model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if settings.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(settings.BaseURL))
	}
	return &OpenAIClient{model: settings.Model, opts: opts}, nil
}

// OpenAIFactory adapts NewOpenAIClient to the pipeline's factory
// contract.
func OpenAIFactory(settings Settings) ClientFactory {
	return func(apiKey string) (LLMClient, error) {
		return NewOpenAIClient(settings, apiKey)
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	client := openai.NewClient(c.opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}
