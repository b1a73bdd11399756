package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"auto_content_pilot/generator"
)

// sseReporter streams pipeline progress to the browser as
// server-sent events, one JSON record per event.
type sseReporter struct {
	w       io.Writer
	flusher http.Flusher
	log     zerolog.Logger
}

func newSSEReporter(w http.ResponseWriter, log zerolog.Logger) (*sseReporter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("streaming unsupported by response writer")
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return &sseReporter{w: w, flusher: flusher, log: log}, nil
}

type sseStepRecord struct {
	Type   string           `json:"type"`
	Step   generator.Stage  `json:"step"`
	Status generator.Status `json:"status"`
}

type sseCompleteRecord struct {
	Type      string            `json:"type"`
	Success   bool              `json:"success"`
	ContentID string            `json:"contentId"`
	Results   *generator.Result `json:"results"`
}

type sseErrorRecord struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func (r *sseReporter) Step(ev generator.StageEvent) {
	r.send(sseStepRecord{Type: "step", Step: ev.Stage, Status: ev.Status})
}

func (r *sseReporter) Complete(res *generator.Result) {
	r.send(sseCompleteRecord{Type: "complete", Success: true, ContentID: res.ID, Results: res})
}

func (r *sseReporter) Error(msg string) {
	r.send(sseErrorRecord{Type: "error", Error: msg})
}

func (r *sseReporter) send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		r.log.Error().Err(err).Msg("marshal SSE record")
		return
	}
	// Fire-and-forget: a disconnected client surfaces via the request
	// context, not here.
	if _, err := fmt.Fprintf(r.w, "data: %s\n\n", data); err != nil {
		r.log.Debug().Err(err).Msg("SSE write failed")
		return
	}
	r.flusher.Flush()
}
