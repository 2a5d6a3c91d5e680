// Package ingest is the write path of the bin system: it validates uploaded
// images, classifies them, stores the ones that belong in the targeted bin,
// and raises a bin-full alert when a commit fills the bin. It also classifies
// single webcam frames without touching storage.
package ingest

import (
	"context"
	"io"
	"time"

	"github.com/JaimeStill/binsort/internal/alerts"
	"github.com/JaimeStill/binsort/internal/bins"
	"github.com/JaimeStill/binsort/internal/waste"
)

// Status is the per-file result of an upload.
type Status string

const (
	StatusSuccess              Status = "success"
	StatusWrongBin             Status = "wrong_bin"
	StatusInvalidType          Status = "invalid_type"
	StatusTooLarge             Status = "too_large"
	StatusNoFile               Status = "no_file"
	StatusClassificationFailed Status = "classification_failed"
	StatusError                Status = "error"
)

// Outcome records what happened to one uploaded file.
type Outcome struct {
	Filename   string         `json:"filename"`
	Status     Status         `json:"status"`
	Category   waste.Category `json:"category,omitempty"`
	Label      string         `json:"label,omitempty"`
	Bin        bins.ID        `json:"bin,omitempty"`
	CorrectBin bins.ID        `json:"correct_bin,omitempty"`
	Confidence *float64       `json:"confidence,omitempty"`
	Message    string         `json:"message,omitempty"`
	StoredName string         `json:"stored_name,omitempty"`
}

// Summary tallies a batch of outcomes.
type Summary struct {
	Success  int `json:"success"`
	WrongBin int `json:"wrong_bin"`
	Failed   int `json:"failed"`
}

// Summarize counts successes, misrouted items and everything else.
func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch o.Status {
		case StatusSuccess:
			s.Success++
		case StatusWrongBin:
			s.WrongBin++
		default:
			s.Failed++
		}
	}
	return s
}

// Upload is one file submitted for a bin. Size may be -1 when unknown; the
// limit is then enforced while reading.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// FrameResult is the classification of a single webcam frame.
type FrameResult struct {
	Status     string         `json:"status"`
	Category   waste.Category `json:"category"`
	Label      string         `json:"label"`
	Bin        bins.ID        `json:"bin"`
	Confidence float64        `json:"confidence"`
	Detector   string         `json:"detector"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Recorder observes every outcome, e.g. to journal or broadcast it.
type Recorder interface {
	RecordOutcome(ctx context.Context, target bins.ID, o Outcome) error
}

// Notifier accepts bin-full alerts without blocking.
type Notifier interface {
	Notify(a alerts.Alert) bool
}

// System defines the ingestion operations.
type System interface {
	// Ingest processes uploads for target and returns one outcome per upload
	// in input order. A fault in one file never affects the others.
	Ingest(ctx context.Context, target bins.ID, uploads []Upload) []Outcome
	// Classify detects and routes a base64 frame, optionally prefixed with a
	// data URI header. Nothing is stored and no alert is raised.
	Classify(ctx context.Context, frame string) (*FrameResult, error)
	Handler(maxUploadSize int64) *Handler
}
