package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"auto_content_pilot/config"
	"auto_content_pilot/generator"
	"auto_content_pilot/publisher"
	"auto_content_pilot/server"
)

func main() {
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides SERVER_ADDR)")
	topic := flag.String("topic", "", "topic to generate content for")
	platformsFlag := flag.String("platforms", "x,linkedin", "comma-separated social platforms")
	publish := flag.Bool("publish", false, "publish the generated content after the run")
	schedule := flag.String("schedule", publisher.ScheduleNextFreeSlot, "social publish schedule (datetime or next-free-slot)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	pipeline := generator.NewPipeline(
		buildClientFactory(cfg, log),
		buildImageProvider(cfg, log),
		defaultKeyFor(cfg),
		log,
	)

	// Web server mode
	if *serve {
		srv, err := server.New(cfg, pipeline, log)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		log.Info().Str("addr", listen).Msg("starting web server")
		if err := http.ListenAndServe(listen, srv.Routes()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	// One-shot CLI mode: generate, optionally publish, progress as one
	// JSON record per line.
	if *topic == "" {
		fmt.Fprintln(os.Stderr, "--topic is required (or use --serve)")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep := &lineReporter{enc: json.NewEncoder(os.Stdout)}
	res, err := pipeline.Run(ctx, generator.Request{
		Topic:     *topic,
		Platforms: splitPlatforms(*platformsFlag),
	}, rep)
	if err != nil {
		os.Exit(1)
	}

	if !*publish {
		return
	}

	pub := publisher.New(publisher.Config{
		BlogAPIKey:           cfg.BlogAPIKey,
		BlogAPIURL:           cfg.BlogAPIURL,
		TypefullyAPIKey:      cfg.TypefullyAPIKey,
		TypefullyBaseURL:     cfg.TypefullyBaseURL,
		TypefullySocialSetID: cfg.TypefullySocialSetID,
		DefaultAuthor:        cfg.AuthorName,
	}, nil, log)

	if _, err := pub.PublishBlog(ctx, res.Blog); err != nil {
		log.Error().Err(err).Msg("blog publish failed")
		os.Exit(1)
	}
	if res.XPost != "" || res.LinkedInPost != "" {
		social, err := pub.PublishSocial(ctx, publisher.SocialParams{
			XText:        res.XPost,
			LinkedInText: res.LinkedInPost,
			ImageURL:     res.ImageURL,
			Schedule:     *schedule,
		})
		if err != nil {
			log.Error().Err(err).Msg("social publish failed")
			os.Exit(1)
		}
		if social.XError != "" {
			log.Error().Str("error", social.XError).Msg("X publish failed")
		}
		if social.LinkedInError != "" {
			log.Error().Str("error", social.LinkedInError).Msg("LinkedIn publish failed")
		}
		if social.PartialFailure() {
			os.Exit(1)
		}
	}
	log.Info().Str("content_id", res.ID).Msg("published")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).Level(lvl).With().Timestamp().Logger()
}

func buildClientFactory(cfg *config.Config, log zerolog.Logger) generator.ClientFactory {
	switch cfg.LLMProvider {
	case "openai":
		return generator.OpenAIFactory(generator.Settings{
			Provider: cfg.LLMProvider,
			Model:    cfg.LLMModel,
			BaseURL:  cfg.OpenAIBaseURL,
		})
	case "mock":
		return generator.MockFactory()
	default:
		return generator.GeminiFactory(generator.Settings{
			Provider: cfg.LLMProvider,
			Model:    cfg.LLMModel,
			BaseURL:  cfg.GeminiBaseURL,
		}, log)
	}
}

func buildImageProvider(cfg *config.Config, log zerolog.Logger) generator.ImageProvider {
	if cfg.ImageProvider == "gemini" {
		return generator.NewGeneratedImages(generator.Settings{
			Provider: "gemini",
			Model:    cfg.LLMModel,
			BaseURL:  cfg.GeminiBaseURL,
		}, cfg.ImageSavePath, cfg.ImagePublicBaseURL, log)
	}
	return generator.PlaceholderImages{}
}

func defaultKeyFor(cfg *config.Config) string {
	switch cfg.LLMProvider {
	case "openai":
		return cfg.OpenAIAPIKey
	case "mock":
		return ""
	default:
		return cfg.GeminiAPIKey
	}
}

func splitPlatforms(s string) []string {
	var platforms []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			platforms = append(platforms, p)
		}
	}
	return platforms
}

// lineReporter prints pipeline progress as newline-delimited JSON, the
// message-per-event counterpart of the server's SSE stream.
type lineReporter struct {
	enc *json.Encoder
}

func (r *lineReporter) Step(ev generator.StageEvent) {
	_ = r.enc.Encode(map[string]any{"type": "step", "step": ev.Stage, "status": ev.Status})
}

func (r *lineReporter) Complete(res *generator.Result) {
	_ = r.enc.Encode(map[string]any{"type": "complete", "success": true, "contentId": res.ID, "results": res})
}

func (r *lineReporter) Error(msg string) {
	_ = r.enc.Encode(map[string]any{"type": "error", "error": msg})
}
