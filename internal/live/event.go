// Package live pushes bin activity to dashboard clients over websockets.
package live

import (
	"time"

	"github.com/JaimeStill/binsort/internal/alerts"
	"github.com/JaimeStill/binsort/internal/bins"
	"github.com/JaimeStill/binsort/internal/ingest"
)

// Event types broadcast to clients.
const (
	EventStatus  = "status"
	EventOutcome = "outcome"
	EventAlert   = "alert"
)

// Event is the JSON envelope written to every client.
type Event struct {
	Type string    `json:"type"`
	Time time.Time `json:"time"`
	Data any       `json:"data"`
}

// OutcomeData is the payload of an outcome event.
type OutcomeData struct {
	Target  bins.ID        `json:"target"`
	Outcome ingest.Outcome `json:"outcome"`
}

// AlertData is the payload of an alert event.
type AlertData struct {
	Bin      bins.ID `json:"bin"`
	Count    int     `json:"count"`
	Capacity int     `json:"capacity"`
	Message  string  `json:"message"`
}

func alertData(a alerts.Alert) AlertData {
	return AlertData{
		Bin:      a.Bin,
		Count:    a.Count,
		Capacity: a.Capacity,
		Message:  a.Message(),
	}
}
