package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"auto_content_pilot/frontmatter"
)

// Reporter is the progress sink the pipeline pushes into. Calls are
// fire-and-forget; implementations deliver to a single consumer in the
// order received. Exactly one of Complete or Error terminates a run.
type Reporter interface {
	Step(ev StageEvent)
	Complete(res *Result)
	Error(msg string)
}

// NopReporter discards all progress.
type NopReporter struct{}

func (NopReporter) Step(StageEvent)  {}
func (NopReporter) Complete(*Result) {}
func (NopReporter) Error(string)     {}

// Pipeline runs the staged content generation sequence:
// blog, then the requested social posts, then the cover image.
type Pipeline struct {
	clients    ClientFactory
	images     ImageProvider
	defaultKey string
	log        zerolog.Logger
}

func NewPipeline(clients ClientFactory, images ImageProvider, defaultKey string, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		clients:    clients,
		images:     images,
		defaultKey: defaultKey,
		log:        log,
	}
}

// Run executes one generation request, pushing a StageEvent per stage
// transition into rep. The blog stage is always fatal on failure, the
// social stages are fatal when their platform was requested, and the
// image stage only degrades the result. A platform that was not
// requested reports a single complete event so progress consumers can
// treat it as done.
//
// The requested social generations run concurrently once the blog
// excerpt exists; their events are buffered and emitted in stage order
// afterwards.
func (p *Pipeline) Run(ctx context.Context, req Request, rep Reporter) (*Result, error) {
	if rep == nil {
		rep = NopReporter{}
	}

	if req.Topic == "" {
		return p.fail(rep, fmt.Errorf("%w: topic is required", ErrValidation))
	}
	for _, platform := range req.Platforms {
		if platform != "x" && platform != "linkedin" {
			return p.fail(rep, fmt.Errorf("%w: unsupported platform %q", ErrValidation, platform))
		}
	}

	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = p.defaultKey
	}
	client, err := p.clients(apiKey)
	if err != nil {
		return p.fail(rep, err)
	}

	log := p.log.With().Str("topic", req.Topic).Logger()
	log.Info().Strs("platforms", req.Platforms).Msg("starting generation run")

	// Cancellation must surface as the run's single terminal error even
	// when the active providers never touch the network (mock LLM,
	// placeholder images), so each stage boundary checks the context
	// itself instead of trusting the client to.
	if err := ctx.Err(); err != nil {
		return p.fail(rep, fmt.Errorf("generation cancelled: %w", err))
	}

	// Stage 1: blog post. Everything downstream needs its body.
	rep.Step(StageEvent{Stage: StageBlog, Status: StatusInProgress})
	blog, err := client.Complete(ctx, BlogPrompt(req.Topic))
	if err != nil {
		rep.Step(StageEvent{Stage: StageBlog, Status: StatusError})
		return p.fail(rep, fmt.Errorf("Blog generation failed: %w", err))
	}
	rep.Step(StageEvent{Stage: StageBlog, Status: StatusComplete})

	// Both social prompts must see the identical excerpt.
	excerpt := Excerpt(frontmatter.Parse(blog).Body)

	wantX := req.wants("x")
	wantLinkedIn := req.wants("linkedin")

	var xPost, linkedinPost string
	var xErr, linkedinErr error
	if wantX || wantLinkedIn {
		g, gctx := errgroup.WithContext(ctx)
		if wantX {
			g.Go(func() error {
				text, err := client.Complete(gctx, XPrompt(req.Topic, excerpt))
				if err != nil {
					xErr = err
					return err
				}
				xPost = text
				return nil
			})
		}
		if wantLinkedIn {
			g.Go(func() error {
				text, err := client.Complete(gctx, LinkedInPrompt(req.Topic, excerpt))
				if err != nil {
					linkedinErr = err
					return err
				}
				linkedinPost = text
				return nil
			})
		}
		// The first failure cancels the sibling via gctx, so neither
		// call outlives the run. Per-stage errors were captured above.
		_ = g.Wait()
	}

	// When one platform's call was cancelled only because the other
	// failed first, the sibling's error is the root cause to surface.
	xAborted := xErr != nil && errors.Is(xErr, context.Canceled)
	linkedinFailed := linkedinErr != nil && !errors.Is(linkedinErr, context.Canceled)

	if !wantX {
		rep.Step(StageEvent{Stage: StageX, Status: StatusComplete})
	} else {
		rep.Step(StageEvent{Stage: StageX, Status: StatusInProgress})
		switch {
		case xErr == nil:
			rep.Step(StageEvent{Stage: StageX, Status: StatusComplete})
		case xAborted && linkedinFailed:
			// X was cancelled only because LinkedIn failed first. Report
			// it as done so the stream carries one failed stage per root
			// cause, matching what a sequential run would have shown.
			rep.Step(StageEvent{Stage: StageX, Status: StatusComplete})
		default:
			rep.Step(StageEvent{Stage: StageX, Status: StatusError})
			return p.fail(rep, fmt.Errorf("X post generation failed: %w", xErr))
		}
	}

	if !wantLinkedIn {
		rep.Step(StageEvent{Stage: StageLinkedIn, Status: StatusComplete})
	} else {
		rep.Step(StageEvent{Stage: StageLinkedIn, Status: StatusInProgress})
		if linkedinErr != nil {
			rep.Step(StageEvent{Stage: StageLinkedIn, Status: StatusError})
			return p.fail(rep, fmt.Errorf("LinkedIn post generation failed: %w", linkedinErr))
		}
		rep.Step(StageEvent{Stage: StageLinkedIn, Status: StatusComplete})
	}

	if err := ctx.Err(); err != nil {
		return p.fail(rep, fmt.Errorf("generation cancelled: %w", err))
	}

	// Stage 4: cover image. Failure degrades the result, it never
	// aborts the run; cancellation still does.
	rep.Step(StageEvent{Stage: StageImage, Status: StatusInProgress})
	var imageURL string
	if p.images != nil {
		url, err := p.images.ProvideImage(ctx, req.Topic, apiKey)
		switch {
		case err != nil && ctx.Err() != nil:
			rep.Step(StageEvent{Stage: StageImage, Status: StatusError})
			return p.fail(rep, fmt.Errorf("generation cancelled: %w", ctx.Err()))
		case err != nil:
			log.Warn().Err(err).Msg("image stage failed, continuing without image")
		default:
			imageURL = url
		}
	}
	rep.Step(StageEvent{Stage: StageImage, Status: StatusComplete})

	if err := ctx.Err(); err != nil {
		return p.fail(rep, fmt.Errorf("generation cancelled: %w", err))
	}

	res := &Result{
		ID:           NewContentID(),
		Topic:        req.Topic,
		Blog:         blog,
		XPost:        xPost,
		LinkedInPost: linkedinPost,
		ImageURL:     imageURL,
	}
	log.Info().Str("content_id", res.ID).Bool("has_image", imageURL != "").Msg("generation run complete")
	rep.Complete(res)
	return res, nil
}

// fail delivers the single terminating error signal for a run.
func (p *Pipeline) fail(rep Reporter, err error) (*Result, error) {
	p.log.Error().Err(err).Msg("generation run aborted")
	rep.Error(err.Error())
	return nil, err
}
