package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Media processing is polled, never pushed: after the byte transfer
// the backend is asked for the asset state once per interval until it
// reports ready or failed, capped at mediaPollAttempts.
const (
	mediaPollInterval = time.Second
	mediaPollAttempts = 30
)

type mediaSlot struct {
	MediaID   string `json:"media_id"`
	UploadURL string `json:"upload_url"`
}

type mediaStatus struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// UploadMedia runs the three-phase upload protocol against the social
// backend: request an upload slot, PUT the raw bytes to the returned
// location, then poll until the asset is ready. It returns the media
// id to attach to posts.
func (p *Publisher) UploadMedia(ctx context.Context, fileName string, data []byte) (string, error) {
	if p.cfg.TypefullyAPIKey == "" {
		return "", fmt.Errorf("%w: Typefully API key is required", ErrConfig)
	}
	if p.cfg.TypefullySocialSetID == "" {
		return "", fmt.Errorf("%w: Typefully social set id is required", ErrConfig)
	}

	slot, err := p.requestUploadSlot(ctx, fileName)
	if err != nil {
		return "", err
	}
	if err := p.transferBytes(ctx, slot.UploadURL, data); err != nil {
		return "", err
	}
	return p.awaitMediaReady(ctx, slot.MediaID)
}

func (p *Publisher) requestUploadSlot(ctx context.Context, fileName string) (*mediaSlot, error) {
	url := fmt.Sprintf("%s/v2/social-sets/%s/media/upload", p.cfg.TypefullyBaseURL, p.cfg.TypefullySocialSetID)
	body, err := json.Marshal(map[string]string{"file_name": fileName})
	if err != nil {
		return nil, fmt.Errorf("marshal upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	p.authorize(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: failed to get upload URL: %s", ErrUpload, resp.Status)
	}
	var slot mediaSlot
	if err := json.NewDecoder(resp.Body).Decode(&slot); err != nil {
		return nil, fmt.Errorf("%w: undecodable upload slot response: %v", ErrUpload, err)
	}
	if slot.MediaID == "" || slot.UploadURL == "" {
		return nil, fmt.Errorf("%w: upload slot response missing media_id or upload_url", ErrUpload)
	}
	return &slot, nil
}

func (p *Publisher) transferBytes(ctx context.Context, uploadURL string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpload, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: failed to upload to storage: %s", ErrUpload, resp.Status)
	}
	return nil
}

func (p *Publisher) awaitMediaReady(ctx context.Context, mediaID string) (string, error) {
	url := fmt.Sprintf("%s/v2/social-sets/%s/media/%s", p.cfg.TypefullyBaseURL, p.cfg.TypefullySocialSetID, mediaID)

	for attempt := 0; attempt < mediaPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %w", ErrUpload, ctx.Err())
		case <-time.After(p.pollInterval):
		}

		status, err := p.pollMediaStatus(ctx, url)
		if err != nil {
			return "", err
		}
		switch status.Status {
		case "ready":
			return mediaID, nil
		case "failed":
			reason := status.Reason
			if reason == "" {
				reason = "media processing failed"
			}
			return "", fmt.Errorf("%w: %s", ErrUpload, reason)
		}
	}
	return "", fmt.Errorf("%w: media processing timed out", ErrUpload)
}

func (p *Publisher) pollMediaStatus(ctx context.Context, url string) (*mediaStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	p.authorize(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}
	defer resp.Body.Close()

	var status mediaStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("%w: undecodable media status: %v", ErrUpload, err)
	}
	return &status, nil
}

func (p *Publisher) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.cfg.TypefullyAPIKey)
	req.Header.Set("Content-Type", "application/json")
}
