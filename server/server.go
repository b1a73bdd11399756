package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"

	"auto_content_pilot/config"
	"auto_content_pilot/frontmatter"
	"auto_content_pilot/generator"
	"auto_content_pilot/publisher"
)

// Server exposes the generation pipeline and the publishers over HTTP.
type Server struct {
	cfg      *config.Config
	pipeline *generator.Pipeline
	store    *contentStore
	log      zerolog.Logger
}

func New(cfg *config.Config, pipeline *generator.Pipeline, log zerolog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("configuration required")
	}
	if pipeline == nil {
		return nil, errors.New("generation pipeline required")
	}
	return &Server{
		cfg:      cfg,
		pipeline: pipeline,
		store:    newContentStore(),
		log:      log,
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", s.handleGenerate)
	mux.HandleFunc("/api/publish/blog", s.handlePublishBlog)
	mux.HandleFunc("/api/publish/social", s.handlePublishSocial)
	mux.HandleFunc("/api/content", s.handleContent)
	mux.HandleFunc("/api/content/", s.handleContentByID)
	mux.HandleFunc("/api/settings", s.handleSettings)
	return s.logMiddleware(mux)
}

// --- Handlers ---

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req generator.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rep, err := newSSEReporter(w, s.log)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Failures are already on the stream as the terminal error record.
	res, err := s.pipeline.Run(r.Context(), req, rep)
	if err != nil {
		return
	}

	platforms := req.Platforms
	if platforms == nil {
		platforms = []string{}
	}
	s.store.add(&ContentItem{
		ID:           res.ID,
		Topic:        res.Topic,
		TopicSlug:    slugify(res.Topic),
		BlogPost:     res.Blog,
		XPost:        res.XPost,
		LinkedInPost: res.LinkedInPost,
		ImageURL:     res.ImageURL,
		Platforms:    platforms,
		Status:       "draft",
		CreatedAt:    time.Now(),
	})
}

type publishBlogReq struct {
	BlogContent string `json:"blogContent"`
	BlogAPIKey  string `json:"blogApiKey"`
	BlogAPIURL  string `json:"blogApiUrl"`
}

func (s *Server) handlePublishBlog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req publishBlogReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pub := publisher.New(publisher.Config{
		BlogAPIKey:    config.Resolve(req.BlogAPIKey, s.cfg.BlogAPIKey),
		BlogAPIURL:    config.Resolve(req.BlogAPIURL, s.cfg.BlogAPIURL),
		DefaultAuthor: s.cfg.AuthorName,
	}, nil, s.log)

	result, err := pub.PublishBlog(r.Context(), req.BlogContent)
	if err != nil {
		s.writePublishError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"success": true,
		"result":  result,
		"message": "Blog post published successfully",
	})
}

type publishSocialReq struct {
	XContent             string `json:"xContent"`
	LinkedInContent      string `json:"linkedinContent"`
	ImageURL             string `json:"imageUrl"`
	Schedule             string `json:"schedule"`
	TypefullyAPIKey      string `json:"typefullyApiKey"`
	TypefullySocialSetID string `json:"typefullySocialSetId"`
}

func (s *Server) handlePublishSocial(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req publishSocialReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pub := publisher.New(publisher.Config{
		TypefullyAPIKey:      config.Resolve(req.TypefullyAPIKey, s.cfg.TypefullyAPIKey),
		TypefullyBaseURL:     s.cfg.TypefullyBaseURL,
		TypefullySocialSetID: config.Resolve(req.TypefullySocialSetID, s.cfg.TypefullySocialSetID),
	}, nil, s.log)

	result, err := pub.PublishSocial(r.Context(), publisher.SocialParams{
		XText:        req.XContent,
		LinkedInText: req.LinkedInContent,
		ImageURL:     req.ImageURL,
		Schedule:     req.Schedule,
	})
	if err != nil {
		s.writePublishError(w, err)
		return
	}
	// Partial failure still returns the successful platform's result.
	writeJSON(w, map[string]any{
		"success": !result.PartialFailure(),
		"results": result,
	})
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		status := r.URL.Query().Get("status")
		writeJSON(w, map[string]any{"success": true, "data": s.store.list(limit, status)})

	case http.MethodPost:
		var req struct {
			Topic        string   `json:"topic"`
			BlogPost     string   `json:"blogPost"`
			XPost        string   `json:"xPost"`
			LinkedInPost string   `json:"linkedinPost"`
			ImageURL     string   `json:"imageUrl"`
			Platforms    []string `json:"platforms"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Topic == "" {
			http.Error(w, "topic is required", http.StatusBadRequest)
			return
		}
		platforms := req.Platforms
		if platforms == nil {
			platforms = []string{"x", "linkedin"}
		}
		item := &ContentItem{
			ID:           generator.NewContentID(),
			Topic:        req.Topic,
			TopicSlug:    slugify(req.Topic),
			BlogPost:     req.BlogPost,
			XPost:        req.XPost,
			LinkedInPost: req.LinkedInPost,
			ImageURL:     req.ImageURL,
			Platforms:    platforms,
			Status:       "draft",
			CreatedAt:    time.Now(),
		}
		s.store.add(item)
		writeJSON(w, map[string]any{"success": true, "data": item})

	case http.MethodPut:
		var req struct {
			ID string `json:"id"`
			ContentUpdate
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.ID == "" {
			http.Error(w, "content ID is required", http.StatusBadRequest)
			return
		}
		item, ok := s.store.update(req.ID, req.ContentUpdate)
		if !ok {
			http.Error(w, "content not found", http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{"success": true, "data": item})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleContentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/content/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	item, ok := s.store.get(id)
	if !ok {
		http.Error(w, "content not found", http.StatusNotFound)
		return
	}

	switch sub {
	case "":
		writeJSON(w, map[string]any{"success": true, "data": item})
	case "preview":
		s.renderPreview(w, item)
	default:
		http.NotFound(w, r)
	}
}

// renderPreview converts the stored blog body to HTML for a quick
// in-browser look at the generated post.
func (s *Server) renderPreview(w http.ResponseWriter, item *ContentItem) {
	if item.BlogPost == "" {
		http.Error(w, "content has no blog post", http.StatusNotFound)
		return
	}
	body := frontmatter.Parse(item.BlogPost).Body
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(body), &buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handleSettings reports which credentials are configured so a client
// can prompt for the missing ones. Key material itself never leaves
// the process.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]any{
		"geminiApiKeyConfigured":    s.cfg.GeminiAPIKey != "",
		"typefullyApiKeyConfigured": s.cfg.TypefullyAPIKey != "",
		"typefullySocialSetId":      s.cfg.TypefullySocialSetID,
		"blogApiKeyConfigured":      s.cfg.BlogAPIKey != "",
		"blogApiUrl":                s.cfg.BlogAPIURL,
	})
}

// --- Helpers ---

func (s *Server) writePublishError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, publisher.ErrValidation) || errors.Is(err, publisher.ErrConfig) {
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
