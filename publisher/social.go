package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// ScheduleNextFreeSlot lets the backend pick the publish time.
const ScheduleNextFreeSlot = "next-free-slot"

// threadDelimiter splits X text into a thread. The split is literal:
// any quadruple newline starts a new post, even one the generator
// emitted by accident. Ordinary double line breaks stay inside a post.
const threadDelimiter = "\n\n\n\n"

// SocialParams describes one social publish call. At least one of
// XText and LinkedInText must be set.
type SocialParams struct {
	XText        string
	LinkedInText string
	ImageURL     string
	Schedule     string
}

// SocialResult carries the per-platform outcomes. The platforms are
// independent: one may succeed while the other records an error, and
// such a partial result is a valid return value.
type SocialResult struct {
	X             json.RawMessage `json:"x,omitempty"`
	XError        string          `json:"xError,omitempty"`
	LinkedIn      json.RawMessage `json:"linkedin,omitempty"`
	LinkedInError string          `json:"linkedinError,omitempty"`
	MediaIDs      []string        `json:"mediaIds,omitempty"`
}

// PartialFailure reports whether any attempted platform failed.
func (r *SocialResult) PartialFailure() bool {
	return r.XError != "" || r.LinkedInError != ""
}

type socialPost struct {
	Text     string   `json:"text"`
	MediaIDs []string `json:"media_ids,omitempty"`
}

type platformDraft struct {
	Enabled  bool         `json:"enabled"`
	Posts    []socialPost `json:"posts"`
	Settings struct{}     `json:"settings"`
}

type draftPayload struct {
	Platforms map[string]platformDraft `json:"platforms"`
	PublishAt string                   `json:"publish_at"`
}

// SplitThread cuts X text into thread posts on the literal
// quadruple-newline delimiter. Text without the delimiter becomes a
// single trimmed post.
func SplitThread(text string) []string {
	if !strings.Contains(text, threadDelimiter) {
		return []string{strings.TrimSpace(text)}
	}
	parts := strings.Split(text, threadDelimiter)
	posts := make([]string, 0, len(parts))
	for _, part := range parts {
		posts = append(posts, strings.TrimSpace(part))
	}
	return posts
}

// PublishSocial schedules the given posts through the social backend.
// An image URL, when present, is fetched and uploaded first; media
// failures are logged and the texts publish without the attachment.
// Media references attach to the first post of each platform only.
func (p *Publisher) PublishSocial(ctx context.Context, params SocialParams) (*SocialResult, error) {
	if params.XText == "" && params.LinkedInText == "" {
		return nil, fmt.Errorf("%w: at least one platform content is required", ErrValidation)
	}
	if p.cfg.TypefullyAPIKey == "" {
		return nil, fmt.Errorf("%w: Typefully API key is required", ErrConfig)
	}
	if p.cfg.TypefullySocialSetID == "" {
		return nil, fmt.Errorf("%w: Typefully social set id is required", ErrConfig)
	}
	schedule := params.Schedule
	if schedule == "" {
		schedule = ScheduleNextFreeSlot
	}

	res := &SocialResult{}
	if params.ImageURL != "" {
		res.MediaIDs = p.uploadCoverImage(ctx, params.ImageURL)
	}

	if params.XText != "" {
		posts := attachMedia(toPosts(SplitThread(params.XText)), res.MediaIDs)
		raw, err := p.createDraft(ctx, "x", "X", posts, schedule)
		if err != nil {
			res.XError = err.Error()
		} else {
			res.X = raw
		}
	}

	if params.LinkedInText != "" {
		posts := attachMedia([]socialPost{{Text: strings.TrimSpace(params.LinkedInText)}}, res.MediaIDs)
		raw, err := p.createDraft(ctx, "linkedin", "LinkedIn", posts, schedule)
		if err != nil {
			res.LinkedInError = err.Error()
		} else {
			res.LinkedIn = raw
		}
	}
	return res, nil
}

// uploadCoverImage fetches the image bytes and runs the media upload.
// Any failure along the way downgrades to publishing without media.
func (p *Publisher) uploadCoverImage(ctx context.Context, imageURL string) []string {
	data, err := p.fetchImage(ctx, imageURL)
	if err != nil {
		p.log.Warn().Err(err).Str("url", imageURL).Msg("image fetch failed, publishing without media")
		return nil
	}
	mediaID, err := p.UploadMedia(ctx, "image.jpg", data)
	if err != nil {
		p.log.Warn().Err(err).Msg("image upload failed, publishing without media")
		return nil
	}
	return []string{mediaID}
}

func (p *Publisher) fetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("image fetch returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (p *Publisher) createDraft(ctx context.Context, platform, label string, posts []socialPost, schedule string) (json.RawMessage, error) {
	payload := draftPayload{
		Platforms: map[string]platformDraft{platform: {Enabled: true, Posts: posts}},
		PublishAt: schedule,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal draft payload: %w", err)
	}

	url := fmt.Sprintf("%s/v2/social-sets/%s/drafts", p.cfg.TypefullyBaseURL, p.cfg.TypefullySocialSetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	p.authorize(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s publishing failed: %v", ErrPublish, label, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := resp.Status
		if m := gjson.GetBytes(respBody, "message"); m.Exists() {
			msg = m.String()
		} else if m := gjson.GetBytes(respBody, "error.message"); m.Exists() {
			msg = m.String()
		}
		return nil, fmt.Errorf("%w: %s publishing failed: %s", ErrPublish, label, msg)
	}

	p.log.Info().Str("platform", platform).Int("posts", len(posts)).Msg("social draft scheduled")
	return respBody, nil
}

func toPosts(texts []string) []socialPost {
	posts := make([]socialPost, 0, len(texts))
	for _, text := range texts {
		posts = append(posts, socialPost{Text: text})
	}
	return posts
}

// attachMedia puts the media references on the first post only.
func attachMedia(posts []socialPost, mediaIDs []string) []socialPost {
	if len(mediaIDs) > 0 && len(posts) > 0 {
		posts[0].MediaIDs = mediaIDs
	}
	return posts
}
