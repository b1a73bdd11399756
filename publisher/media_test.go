package publisher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mediaBackend fakes the three upload phases; statuses is consumed one
// entry per poll, the last entry repeating once exhausted.
type mediaBackend struct {
	statuses   []string
	polls      atomic.Int32
	uploadPuts atomic.Int32
	slotStatus int
}

func (b *mediaBackend) serve(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var ts *httptest.Server

	mux.HandleFunc("/v2/social-sets/set1/media/upload", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		if b.slotStatus != 0 {
			w.WriteHeader(b.slotStatus)
			return
		}
		fmt.Fprintf(w, `{"media_id":"m1","upload_url":"%s/bucket/m1"}`, ts.URL)
	})
	mux.HandleFunc("/bucket/m1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		b.uploadPuts.Add(1)
	})
	mux.HandleFunc("/v2/social-sets/set1/media/m1", func(w http.ResponseWriter, r *http.Request) {
		n := int(b.polls.Add(1))
		status := b.statuses[len(b.statuses)-1]
		if n <= len(b.statuses) {
			status = b.statuses[n-1]
		}
		if status == "failed" {
			fmt.Fprintf(w, `{"status":"failed","reason":"bad pixels"}`)
			return
		}
		fmt.Fprintf(w, `{"status":%q}`, status)
	})

	ts = httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func newMediaPublisher(baseURL string) *Publisher {
	p := New(Config{
		TypefullyAPIKey:      "key",
		TypefullyBaseURL:     baseURL,
		TypefullySocialSetID: "set1",
	}, nil, zerolog.Nop())
	p.pollInterval = time.Millisecond
	return p
}

func TestUploadMediaStopsOnReady(t *testing.T) {
	backend := &mediaBackend{statuses: []string{"pending", "pending", "ready"}}
	ts := backend.serve(t)

	p := newMediaPublisher(ts.URL)
	id, err := p.UploadMedia(context.Background(), "image.jpg", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "m1", id)
	assert.Equal(t, int32(3), backend.polls.Load())
	assert.Equal(t, int32(1), backend.uploadPuts.Load())
}

func TestUploadMediaTimesOutAfterCap(t *testing.T) {
	backend := &mediaBackend{statuses: []string{"pending"}}
	ts := backend.serve(t)

	p := newMediaPublisher(ts.URL)
	_, err := p.UploadMedia(context.Background(), "image.jpg", []byte{1})
	require.ErrorIs(t, err, ErrUpload)
	assert.Contains(t, err.Error(), "timed out")
	assert.Equal(t, int32(mediaPollAttempts), backend.polls.Load())
}

func TestUploadMediaReportsBackendReason(t *testing.T) {
	backend := &mediaBackend{statuses: []string{"pending", "failed"}}
	ts := backend.serve(t)

	p := newMediaPublisher(ts.URL)
	_, err := p.UploadMedia(context.Background(), "image.jpg", []byte{1})
	require.ErrorIs(t, err, ErrUpload)
	assert.Contains(t, err.Error(), "bad pixels")
	assert.Equal(t, int32(2), backend.polls.Load())
}

func TestUploadMediaSlotFailure(t *testing.T) {
	backend := &mediaBackend{slotStatus: http.StatusForbidden}
	ts := backend.serve(t)

	p := newMediaPublisher(ts.URL)
	_, err := p.UploadMedia(context.Background(), "image.jpg", []byte{1})
	require.ErrorIs(t, err, ErrUpload)
	assert.Contains(t, err.Error(), "failed to get upload URL")
	assert.Zero(t, backend.polls.Load())
}

func TestUploadMediaMissingConfig(t *testing.T) {
	p := New(Config{}, nil, zerolog.Nop())
	_, err := p.UploadMedia(context.Background(), "image.jpg", []byte{1})
	require.ErrorIs(t, err, ErrConfig)
}
