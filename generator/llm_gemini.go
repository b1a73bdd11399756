package generator

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// GeminiClient talks to a generativelanguage-shaped REST backend.
type GeminiClient struct {
	model   string
	baseURL string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

// NewGeminiClient builds a client for one resolved API key.
func NewGeminiClient(settings Settings, apiKey string, log zerolog.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: generation API key is required, set GEMINI_API_KEY or pass one with the request", ErrConfig)
	}
	if settings.Model == "" {
		return nil, errors.New("gemini model is required")
	}
	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	return &GeminiClient{
		model:   settings.Model,
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 120 * time.Second},
		log:     log,
	}, nil
}

// GeminiFactory adapts NewGeminiClient to the pipeline's factory
// contract.
func GeminiFactory(settings Settings, log zerolog.Logger) ClientFactory {
	return func(apiKey string) (LLMClient, error) {
		return NewGeminiClient(settings, apiKey, log)
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature        float64  `json:"temperature,omitempty"`
	TopK               int      `json:"topK,omitempty"`
	TopP               float64  `json:"topP,omitempty"`
	MaxOutputTokens    int      `json:"maxOutputTokens,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

// Complete sends one prompt and extracts the first text candidate.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := c.generateContent(ctx, geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     0.7,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 8192,
		},
	})
	if err != nil {
		return "", err
	}

	text := gjson.GetBytes(body, "candidates.0.content.parts.0.text")
	if !text.Exists() {
		return "", fmt.Errorf("%w: no candidates in response", ErrUpstream)
	}
	return text.String(), nil
}

// GenerateImage asks the backend for a dual text/image response and
// returns the first inline binary part. A response without candidates
// and one without an inline image are reported as distinct failures.
func (c *GeminiClient) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	body, err := c.generateContent(ctx, geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	})
	if err != nil {
		return nil, "", err
	}

	candidates := gjson.GetBytes(body, "candidates")
	if !candidates.Exists() || len(candidates.Array()) == 0 {
		return nil, "", fmt.Errorf("%w: no candidates in response", ErrUpstream)
	}
	for _, part := range candidates.Get("0.content.parts").Array() {
		inline := part.Get("inlineData.data")
		if !inline.Exists() {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(inline.String())
		if err != nil {
			return nil, "", fmt.Errorf("%w: undecodable inline image: %v", ErrUpstream, err)
		}
		mimeType := part.Get("inlineData.mimeType").String()
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		return data, mimeType, nil
	}
	return nil, "", fmt.Errorf("%w: no image in response", ErrUpstream)
}

func (c *GeminiClient) generateContent(ctx context.Context, payload geminiRequest) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request payload: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// Both ends of the chain stay inspectable: ErrUpstream for the
		// taxonomy, the transport error for cancellation checks.
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().Int("status", resp.StatusCode).Str("model", c.model).Msg("generation backend rejected request")
		return nil, fmt.Errorf("%w: %s", ErrUpstream, upstreamMessage(body, resp.Status))
	}
	return body, nil
}

// upstreamMessage prefers the backend's own error text over the bare
// HTTP status.
func upstreamMessage(body []byte, status string) string {
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
		return msg.String()
	}
	if len(body) > 0 {
		return string(body)
	}
	return status
}
