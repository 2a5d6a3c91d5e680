// Package journal keeps a queryable history of upload outcomes and bin-full
// alerts in SQL. It observes the ingestion pipeline as a Recorder and the
// alert dispatcher as a Channel.
package journal

import (
	"time"

	"github.com/google/uuid"
)

// OutcomeEntry is a persisted upload outcome.
type OutcomeEntry struct {
	ID         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	Status     string    `json:"status"`
	TargetBin  string    `json:"target_bin"`
	Category   *string   `json:"category,omitempty"`
	Label      *string   `json:"label,omitempty"`
	Bin        *string   `json:"bin,omitempty"`
	CorrectBin *string   `json:"correct_bin,omitempty"`
	Confidence *float64  `json:"confidence,omitempty"`
	Message    *string   `json:"message,omitempty"`
	StoredName *string   `json:"stored_name,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// AlertEntry is a persisted bin-full alert.
type AlertEntry struct {
	ID       uuid.UUID `json:"id"`
	Bin      string    `json:"bin"`
	Count    int       `json:"count"`
	Capacity int       `json:"capacity"`
	RaisedAt time.Time `json:"raised_at"`
}
