package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPost = "---\n" +
	"title: \"Shipping Faster\"\n" +
	"description: \"How to ship faster\"\n" +
	"date: \"2026-08-01\"\n" +
	"keywords: go, ai , web\n" +
	"---\n" +
	"The body.\n"

func TestPublishBlogMissingTitleMakesNoNetworkCall(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer ts.Close()

	p := New(Config{BlogAPIKey: "key", BlogAPIURL: ts.URL}, nil, zerolog.Nop())
	_, err := p.PublishBlog(context.Background(), "no frontmatter here")
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "title")
	assert.Zero(t, calls.Load())
}

func TestPublishBlogMissingConfig(t *testing.T) {
	p := New(Config{}, nil, zerolog.Nop())
	_, err := p.PublishBlog(context.Background(), testPost)
	require.ErrorIs(t, err, ErrConfig)
}

func TestPublishBlogShapesPayload(t *testing.T) {
	var got BlogPayload
	var apiKey string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("X-API-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"slug":"shipping-faster"}`)
	}))
	defer ts.Close()

	p := New(Config{BlogAPIKey: "key", BlogAPIURL: ts.URL, DefaultAuthor: "Jordan"}, nil, zerolog.Nop())
	result, err := p.PublishBlog(context.Background(), testPost)
	require.NoError(t, err)
	assert.JSONEq(t, `{"slug":"shipping-faster"}`, string(result))

	assert.Equal(t, "key", apiKey)
	assert.Equal(t, "Shipping Faster", got.Title)
	assert.Equal(t, "How to ship faster", got.Excerpt)
	assert.Equal(t, "Jordan", got.Author)
	assert.Equal(t, "2026-08-01", got.Date)
	assert.Equal(t, "5 min read", got.ReadTime)
	assert.Equal(t, []string{"go", "ai", "web"}, got.Tags)
	assert.Equal(t, "The body.", got.Content)
}

func TestPublishBlogDefaultsDateWhenAbsent(t *testing.T) {
	var got BlogPayload
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{}`)
	}))
	defer ts.Close()

	p := New(Config{BlogAPIKey: "key", BlogAPIURL: ts.URL}, nil, zerolog.Nop())
	_, err := p.PublishBlog(context.Background(), "---\ntitle: T\n---\nbody")
	require.NoError(t, err)
	assert.NotEmpty(t, got.Date)
	assert.Equal(t, []string{}, got.Tags)
}

func TestPublishBlogSurfacesBackendBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "database exploded")
	}))
	defer ts.Close()

	p := New(Config{BlogAPIKey: "key", BlogAPIURL: ts.URL}, nil, zerolog.Nop())
	_, err := p.PublishBlog(context.Background(), testPost)
	require.ErrorIs(t, err, ErrPublish)
	assert.Contains(t, err.Error(), "database exploded")
}
