package server

import (
	"regexp"
	"strings"
	"sync"
	"time"
)

// ContentItem is one generated piece of content held by the in-memory
// store.
type ContentItem struct {
	ID           string     `json:"id"`
	Topic        string     `json:"topic"`
	TopicSlug    string     `json:"topic_slug"`
	BlogPost     string     `json:"blog_post,omitempty"`
	XPost        string     `json:"x_post,omitempty"`
	LinkedInPost string     `json:"linkedin_post,omitempty"`
	ImageURL     string     `json:"image_url,omitempty"`
	Platforms    []string   `json:"platforms"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
}

// ContentUpdate holds the mutable fields of a PUT request; nil means
// leave unchanged.
type ContentUpdate struct {
	BlogPost     *string `json:"blogPost"`
	XPost        *string `json:"xPost"`
	LinkedInPost *string `json:"linkedinPost"`
	ImageURL     *string `json:"imageUrl"`
	Status       *string `json:"status"`
}

// contentStore is a process-local content list. Persistence is out of
// scope; restarts start empty.
type contentStore struct {
	mu    sync.Mutex
	items []*ContentItem
}

func newContentStore() *contentStore {
	return &contentStore{}
}

func (s *contentStore) add(item *ContentItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Newest first, matching the listing order.
	s.items = append([]*ContentItem{item}, s.items...)
}

func (s *contentStore) list(limit int, status string) []*ContentItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*ContentItem, 0, limit)
	for _, item := range s.items {
		if status != "" && item.Status != status {
			continue
		}
		copied := *item
		out = append(out, &copied)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func (s *contentStore) get(id string) (*ContentItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ID == id {
			copied := *item
			return &copied, true
		}
	}
	return nil, false
}

func (s *contentStore) update(id string, upd ContentUpdate) (*ContentItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ID != id {
			continue
		}
		if upd.BlogPost != nil {
			item.BlogPost = *upd.BlogPost
		}
		if upd.XPost != nil {
			item.XPost = *upd.XPost
		}
		if upd.LinkedInPost != nil {
			item.LinkedInPost = *upd.LinkedInPost
		}
		if upd.ImageURL != nil {
			item.ImageURL = *upd.ImageURL
		}
		if upd.Status != nil {
			item.Status = *upd.Status
			if *upd.Status == "published" {
				now := time.Now()
				item.PublishedAt = &now
			}
		}
		copied := *item
		return &copied, true
	}
	return nil, false
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	slug := slugRe.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}
