package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Stage identifies one step of the generation pipeline. All canonical
// stages are declared as constants for compile-time safety.
type Stage string

const (
	StageBlog     Stage = "blog"
	StageX        Stage = "x"
	StageLinkedIn Stage = "linkedin"
	StageImage    Stage = "image"
	StageComplete Stage = "complete"
	StageError    Stage = "error"
)

// stageOrder fixes the progress order of the pipeline stages.
var stageOrder = []Stage{StageBlog, StageX, StageLinkedIn, StageImage, StageComplete}

// Index returns the position of the stage in pipeline order, or -1 for
// stages outside the happy path.
func (s Stage) Index() int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Status is the progress state of a single stage.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// StageEvent is one progress notification pushed to the reporter.
// Events of a single run arrive in non-decreasing stage order; a stage
// skipped by the platform selection emits a single complete event with
// no preceding in_progress.
type StageEvent struct {
	Stage  Stage  `json:"step"`
	Status Status `json:"status"`
}

// Request describes one generation run. The blog post is always
// generated; Platforms selects which social posts to add. APIKey
// overrides the configured generation credential for this run only.
type Request struct {
	Topic     string   `json:"topic"`
	Platforms []string `json:"platforms"`
	APIKey    string   `json:"geminiApiKey,omitempty"`
}

func (r Request) wants(platform string) bool {
	for _, p := range r.Platforms {
		if p == platform {
			return true
		}
	}
	return false
}

// Result holds everything one run produced. Fields other than ID and
// Blog may be empty when the matching stage was skipped or degraded.
type Result struct {
	ID           string `json:"id"`
	Topic        string `json:"topic"`
	Blog         string `json:"blog"`
	XPost        string `json:"x,omitempty"`
	LinkedInPost string `json:"linkedin,omitempty"`
	ImageURL     string `json:"image,omitempty"`
}

// NewContentID returns a process-unique content id. The millisecond
// prefix keeps ids roughly chronological; the uuid suffix makes
// collisions within one millisecond a non-issue.
func NewContentID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("content_%d_%s", time.Now().UnixMilli(), suffix)
}
