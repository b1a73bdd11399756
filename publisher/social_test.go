package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitThread(t *testing.T) {
	assert.Equal(t, []string{"one post"}, SplitThread("  one post \n"))
	assert.Equal(t, []string{"first", "second"}, SplitThread("first\n\n\n\nsecond"))
	// Double line breaks stay inside a single post.
	assert.Equal(t, []string{"first\n\nstill first"}, SplitThread("first\n\nstill first"))
	assert.Equal(t, []string{"a", "", "b"}, SplitThread("a\n\n\n\n\n\n\n\nb"))
}

// socialBackend captures draft payloads keyed by platform and lets
// individual platforms or the media phases be failed.
type socialBackend struct {
	mu           sync.Mutex
	drafts       map[string]draftPayload
	failX        bool
	failUpload   bool
	imageFetches int
}

func (b *socialBackend) serve(t *testing.T) *httptest.Server {
	t.Helper()
	b.drafts = make(map[string]draftPayload)
	mux := http.NewServeMux()
	var ts *httptest.Server

	mux.HandleFunc("/cover.jpg", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.imageFetches++
		b.mu.Unlock()
		w.Write([]byte{0xff, 0xd8, 0xff})
	})
	mux.HandleFunc("/v2/social-sets/set1/media/upload", func(w http.ResponseWriter, r *http.Request) {
		if b.failUpload {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `{"media_id":"m1","upload_url":"%s/bucket/m1"}`, ts.URL)
	})
	mux.HandleFunc("/bucket/m1", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/v2/social-sets/set1/media/m1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ready"}`)
	})
	mux.HandleFunc("/v2/social-sets/set1/drafts", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		var payload draftPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Platforms, 1)
		for platform := range payload.Platforms {
			b.mu.Lock()
			b.drafts[platform] = payload
			b.mu.Unlock()
			if platform == "x" && b.failX {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message":"x rejected"}`)
				return
			}
			fmt.Fprintf(w, `{"id":"draft-%s"}`, platform)
		}
	})

	ts = httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func newSocialPublisher(baseURL string) *Publisher {
	p := New(Config{
		TypefullyAPIKey:      "key",
		TypefullyBaseURL:     baseURL,
		TypefullySocialSetID: "set1",
	}, nil, zerolog.Nop())
	p.pollInterval = 0
	return p
}

func TestPublishSocialShapesDrafts(t *testing.T) {
	backend := &socialBackend{}
	ts := backend.serve(t)

	p := newSocialPublisher(ts.URL)
	res, err := p.PublishSocial(context.Background(), SocialParams{
		XText:        "tweet one\n\n\n\ntweet two",
		LinkedInText: "a longer linkedin post",
	})
	require.NoError(t, err)
	assert.False(t, res.PartialFailure())
	assert.JSONEq(t, `{"id":"draft-x"}`, string(res.X))
	assert.JSONEq(t, `{"id":"draft-linkedin"}`, string(res.LinkedIn))
	assert.Empty(t, res.MediaIDs)

	x := backend.drafts["x"].Platforms["x"]
	assert.True(t, x.Enabled)
	require.Len(t, x.Posts, 2)
	assert.Equal(t, "tweet one", x.Posts[0].Text)
	assert.Equal(t, "tweet two", x.Posts[1].Text)
	assert.Equal(t, ScheduleNextFreeSlot, backend.drafts["x"].PublishAt)

	li := backend.drafts["linkedin"].Platforms["linkedin"]
	assert.True(t, li.Enabled)
	require.Len(t, li.Posts, 1)
	assert.Equal(t, "a longer linkedin post", li.Posts[0].Text)
}

func TestPublishSocialAttachesMediaToFirstPostOnly(t *testing.T) {
	backend := &socialBackend{}
	ts := backend.serve(t)

	p := newSocialPublisher(ts.URL)
	res, err := p.PublishSocial(context.Background(), SocialParams{
		XText:        "tweet one\n\n\n\ntweet two",
		LinkedInText: "linkedin post",
		ImageURL:     ts.URL + "/cover.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, res.MediaIDs)
	assert.Equal(t, 1, backend.imageFetches)

	x := backend.drafts["x"].Platforms["x"]
	assert.Equal(t, []string{"m1"}, x.Posts[0].MediaIDs)
	assert.Empty(t, x.Posts[1].MediaIDs)

	li := backend.drafts["linkedin"].Platforms["linkedin"]
	assert.Equal(t, []string{"m1"}, li.Posts[0].MediaIDs)
}

func TestPublishSocialPartialFailure(t *testing.T) {
	backend := &socialBackend{failX: true}
	ts := backend.serve(t)

	p := newSocialPublisher(ts.URL)
	res, err := p.PublishSocial(context.Background(), SocialParams{
		XText:        "tweet",
		LinkedInText: "linkedin post",
	})
	require.NoError(t, err)
	assert.True(t, res.PartialFailure())
	assert.Contains(t, res.XError, "x rejected")
	assert.Empty(t, res.X)
	assert.JSONEq(t, `{"id":"draft-linkedin"}`, string(res.LinkedIn))
	assert.Empty(t, res.LinkedInError)
}

func TestPublishSocialUploadFailureDowngrades(t *testing.T) {
	backend := &socialBackend{failUpload: true}
	ts := backend.serve(t)

	p := newSocialPublisher(ts.URL)
	res, err := p.PublishSocial(context.Background(), SocialParams{
		XText:    "tweet",
		ImageURL: ts.URL + "/cover.jpg",
	})
	require.NoError(t, err)
	assert.False(t, res.PartialFailure())
	assert.Empty(t, res.MediaIDs)
	assert.Empty(t, backend.drafts["x"].Platforms["x"].Posts[0].MediaIDs)
}

func TestPublishSocialCustomSchedule(t *testing.T) {
	backend := &socialBackend{}
	ts := backend.serve(t)

	p := newSocialPublisher(ts.URL)
	_, err := p.PublishSocial(context.Background(), SocialParams{
		XText:    "tweet",
		Schedule: "2026-09-01T10:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-09-01T10:00:00Z", backend.drafts["x"].PublishAt)
}

func TestPublishSocialRejectsEmptyInput(t *testing.T) {
	p := newSocialPublisher("http://unused")
	_, err := p.PublishSocial(context.Background(), SocialParams{})
	require.ErrorIs(t, err, ErrValidation)
}

func TestPublishSocialMissingConfig(t *testing.T) {
	p := New(Config{}, nil, zerolog.Nop())
	_, err := p.PublishSocial(context.Background(), SocialParams{XText: "tweet"})
	require.ErrorIs(t, err, ErrConfig)
}
