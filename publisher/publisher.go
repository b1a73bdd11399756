// Package publisher pushes finished artifacts to the blog backend and
// to the Typefully-shaped social scheduling backend.
package publisher

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ErrValidation marks bad or missing caller input.
var ErrValidation = errors.New("invalid publish request")

// ErrConfig marks a missing backend credential or endpoint.
var ErrConfig = errors.New("missing publish configuration")

// ErrPublish marks a rejected publish call; the wrapped message
// carries the backend's response body verbatim.
var ErrPublish = errors.New("publish backend error")

// ErrUpload marks a media transfer or processing failure.
var ErrUpload = errors.New("media upload error")

// Config holds the resolved backend credentials for one publish call.
// Callers resolve per-request overrides against the process
// configuration before constructing a Publisher.
type Config struct {
	BlogAPIKey string
	BlogAPIURL string

	TypefullyAPIKey      string
	TypefullyBaseURL     string
	TypefullySocialSetID string

	// DefaultAuthor fills the blog payload when the frontmatter has no
	// author.
	DefaultAuthor string
}

// Publisher shapes platform payloads and performs the upload/publish
// calls.
type Publisher struct {
	cfg          Config
	client       *http.Client
	log          zerolog.Logger
	pollInterval time.Duration
}

func New(cfg Config, client *http.Client, log zerolog.Logger) *Publisher {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if cfg.TypefullyBaseURL == "" {
		cfg.TypefullyBaseURL = "https://api.typefully.com"
	}
	if cfg.DefaultAuthor == "" {
		cfg.DefaultAuthor = "Author"
	}
	return &Publisher{
		cfg:          cfg,
		client:       client,
		log:          log,
		pollInterval: mediaPollInterval,
	}
}
