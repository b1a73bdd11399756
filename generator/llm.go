package generator

import "context"

// LLMClient abstracts the text generation backend so providers can be
// swapped or mocked.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ImageGenerator is implemented by clients that can also return inline
// image bytes for a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (data []byte, mimeType string, err error)
}

// ClientFactory builds an LLMClient bound to one resolved credential.
// The pipeline calls it once per run with the per-request override or
// the configured default key; factories whose backend needs a key
// return an error for an empty one.
type ClientFactory func(apiKey string) (LLMClient, error)

// Settings carries the provider-independent client configuration.
type Settings struct {
	Provider string
	Model    string
	BaseURL  string
}
