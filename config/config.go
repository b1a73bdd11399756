package config

import (
	"errors"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds every credential and endpoint the application needs.
// Values come from the environment (an optional .env file is loaded
// first); request payloads may override credentials per call.
type Config struct {
	ServerAddr string `env:"SERVER_ADDR" env-default:":8080"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info"`

	LLMProvider string `env:"LLM_PROVIDER" env-default:"gemini"`
	LLMModel    string `env:"LLM_MODEL" env-default:"gemini-2.0-flash-exp"`

	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL" env-default:"https://generativelanguage.googleapis.com/v1beta"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`

	TypefullyAPIKey      string `env:"TYPEFULLY_API_KEY"`
	TypefullyBaseURL     string `env:"TYPEFULLY_BASE_URL" env-default:"https://api.typefully.com"`
	TypefullySocialSetID string `env:"TYPEFULLY_SOCIAL_SET_ID"`

	BlogAPIKey string `env:"BLOG_API_KEY"`
	BlogAPIURL string `env:"BLOG_API_URL"`

	AuthorName string `env:"AUTHOR_NAME" env-default:"Author"`

	// ImageProvider selects the image stage strategy: "placeholder"
	// derives a deterministic stock URL from the topic, "gemini" asks
	// the generation backend for an image and serves it from
	// ImageSavePath under ImagePublicBaseURL.
	ImageProvider      string `env:"IMAGE_PROVIDER" env-default:"placeholder"`
	ImageSavePath      string `env:"IMAGE_SAVE_PATH"`
	ImagePublicBaseURL string `env:"IMAGE_PUBLIC_BASE_URL"`
}

// Load reads the configuration from the environment. A missing .env
// file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	switch cfg.LLMProvider {
	case "gemini", "openai", "mock":
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLMProvider)
	}
	if cfg.ImageProvider == "gemini" && (cfg.ImageSavePath == "" || cfg.ImagePublicBaseURL == "") {
		return nil, errors.New("IMAGE_PROVIDER=gemini requires IMAGE_SAVE_PATH and IMAGE_PUBLIC_BASE_URL")
	}
	return &cfg, nil
}

// Resolve picks the per-request override when present, otherwise the
// configured default. Callers treat an empty result as a missing
// credential, never as a usable value.
func Resolve(override, configured string) string {
	if override != "" {
		return override
	}
	return configured
}
