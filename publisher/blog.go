package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"auto_content_pilot/frontmatter"
)

// BlogPayload is the normalized document the blog backend accepts.
type BlogPayload struct {
	Title    string   `json:"title"`
	Excerpt  string   `json:"excerpt"`
	Author   string   `json:"author"`
	Date     string   `json:"date"`
	ReadTime string   `json:"readTime"`
	Tags     []string `json:"tags"`
	Content  string   `json:"content"`
}

const defaultReadTime = "5 min read"

// PublishBlog parses the post's frontmatter, shapes the backend
// payload and POSTs it. The frontmatter must carry a title; tags come
// from the comma-separated keywords field. Returns the backend's
// response body on success.
func (p *Publisher) PublishBlog(ctx context.Context, content string) (json.RawMessage, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: blog content is required", ErrValidation)
	}
	if p.cfg.BlogAPIKey == "" {
		return nil, fmt.Errorf("%w: blog API key is required", ErrConfig)
	}
	if p.cfg.BlogAPIURL == "" {
		return nil, fmt.Errorf("%w: blog API URL is required", ErrConfig)
	}

	doc := frontmatter.Parse(content)
	if doc.Meta["title"] == "" {
		return nil, fmt.Errorf("%w: blog post must have a title in frontmatter", ErrValidation)
	}

	payload := BlogPayload{
		Title:    doc.Meta["title"],
		Excerpt:  doc.Meta["description"],
		Author:   doc.Meta["author"],
		Date:     doc.Meta["date"],
		ReadTime: doc.Meta["readTime"],
		Tags:     splitKeywords(doc.Meta["keywords"]),
		Content:  strings.TrimSpace(doc.Body),
	}
	if payload.Author == "" {
		payload.Author = p.cfg.DefaultAuthor
	}
	if payload.Date == "" {
		payload.Date = time.Now().Format("2006-01-02")
	}
	if payload.ReadTime == "" {
		payload.ReadTime = defaultReadTime
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal blog payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BlogAPIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", p.cfg.BlogAPIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPublish, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: blog publishing failed: %s", ErrPublish, string(respBody))
	}

	p.log.Info().Str("title", payload.Title).Msg("blog post published")
	return respBody, nil
}

// splitKeywords turns the comma-separated keywords value into tags.
// Duplicates are kept; order is the frontmatter's.
func splitKeywords(keywords string) []string {
	if keywords == "" {
		return []string{}
	}
	parts := strings.Split(keywords, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tags = append(tags, strings.TrimSpace(part))
	}
	return tags
}
