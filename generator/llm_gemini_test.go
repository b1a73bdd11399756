package generator_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto_content_pilot/generator"
)

func newGeminiTestClient(t *testing.T, handler http.HandlerFunc) *generator.GeminiClient {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := generator.NewGeminiClient(generator.Settings{
		Model:   "gemini-2.0-flash-exp",
		BaseURL: ts.URL,
	}, "test-key", zerolog.Nop())
	require.NoError(t, err)
	return client
}

func TestGeminiCompleteExtractsText(t *testing.T) {
	client := newGeminiTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "gemini-2.0-flash-exp:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "generationConfig")

		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"generated text"}]}}]}`)
	})

	text, err := client.Complete(context.Background(), "a prompt")
	require.NoError(t, err)
	assert.Equal(t, "generated text", text)
}

func TestGeminiCompleteSurfacesUpstreamErrorText(t *testing.T) {
	client := newGeminiTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"API key not valid"}}`)
	})

	_, err := client.Complete(context.Background(), "a prompt")
	require.ErrorIs(t, err, generator.ErrUpstream)
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestGeminiCompleteNoCandidates(t *testing.T) {
	client := newGeminiTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	})

	_, err := client.Complete(context.Background(), "a prompt")
	require.ErrorIs(t, err, generator.ErrUpstream)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestGeminiGenerateImageDecodesInlineData(t *testing.T) {
	raw := []byte{0xff, 0xd8, 0xff, 0x00}
	client := newGeminiTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		cfg := body["generationConfig"].(map[string]any)
		assert.Equal(t, []any{"TEXT", "IMAGE"}, cfg["responseModalities"])

		fmt.Fprintf(w, `{"candidates":[{"content":{"parts":[{"text":"caption"},{"inlineData":{"mimeType":"image/png","data":%q}}]}}]}`,
			base64.StdEncoding.EncodeToString(raw))
	})

	data, mimeType, err := client.GenerateImage(context.Background(), "a prompt")
	require.NoError(t, err)
	assert.Equal(t, raw, data)
	assert.Equal(t, "image/png", mimeType)
}

func TestGeminiGenerateImageDistinguishesMissingImageFromMissingCandidates(t *testing.T) {
	noImage := newGeminiTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"only text"}]}}]}`)
	})
	_, _, err := noImage.GenerateImage(context.Background(), "a prompt")
	require.ErrorIs(t, err, generator.ErrUpstream)
	assert.Contains(t, err.Error(), "no image in response")

	noCandidates := newGeminiTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	_, _, err = noCandidates.GenerateImage(context.Background(), "a prompt")
	require.ErrorIs(t, err, generator.ErrUpstream)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestGeminiClientRequiresKey(t *testing.T) {
	_, err := generator.NewGeminiClient(generator.Settings{Model: "m"}, "", zerolog.Nop())
	require.ErrorIs(t, err, generator.ErrConfig)
}
