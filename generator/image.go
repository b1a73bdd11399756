package generator

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ImageProvider obtains a cover image URL for a topic. Provider
// failures never abort a pipeline run; the run just loses its image.
type ImageProvider interface {
	ProvideImage(ctx context.Context, topic, apiKey string) (string, error)
}

// PlaceholderImages derives a deterministic stock image URL from the
// topic. No network call, no credential, cannot fail.
type PlaceholderImages struct{}

func (PlaceholderImages) ProvideImage(_ context.Context, topic, _ string) (string, error) {
	seed := topic
	if len(seed) > 20 {
		seed = seed[:20]
	}
	return fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", url.QueryEscape(seed)), nil
}

// GeneratedImages asks the generation backend for an inline image,
// stores the bytes under SavePath and serves them from PublicBaseURL.
type GeneratedImages struct {
	settings Settings
	savePath string
	baseURL  string
	log      zerolog.Logger
}

func NewGeneratedImages(settings Settings, savePath, publicBaseURL string, log zerolog.Logger) *GeneratedImages {
	return &GeneratedImages{
		settings: settings,
		savePath: savePath,
		baseURL:  strings.TrimSuffix(publicBaseURL, "/"),
		log:      log,
	}
}

func (g *GeneratedImages) ProvideImage(ctx context.Context, topic, apiKey string) (string, error) {
	client, err := NewGeminiClient(g.settings, apiKey, g.log)
	if err != nil {
		return "", err
	}

	data, mimeType, err := client.GenerateImage(ctx, ImagePrompt(topic))
	if err != nil {
		return "", err
	}

	fileName := uuid.NewString() + extensionFor(mimeType)
	filePath := filepath.Join(g.savePath, fileName)
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return "", fmt.Errorf("save generated image: %w", err)
	}
	g.log.Info().Str("path", filePath).Int("size_bytes", len(data)).Msg("stored generated cover image")

	return g.baseURL + "/" + fileName, nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
