// Package alerts fans "bin full" notifications out to every configured
// channel. The ingestion pipeline hands alerts to a queue and never waits for
// delivery; a single worker drains the queue.
package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/binsort/internal/bins"
)

// Alert reports that a bin reached its capacity threshold.
type Alert struct {
	Bin      bins.ID   `json:"bin"`
	Count    int       `json:"count"`
	Capacity int       `json:"capacity"`
	RaisedAt time.Time `json:"raised_at"`
}

// Message is the human-readable alert body.
func (a Alert) Message() string {
	return fmt.Sprintf("Alert: The %s bin is full. Please empty it as soon as possible.", a.Bin)
}

// Subject is the alert title used by channels that carry one.
func (a Alert) Subject() string {
	return fmt.Sprintf("Bin Alert: %s is full", a.Bin)
}

// Channel delivers an alert to one destination.
type Channel interface {
	Name() string
	Send(ctx context.Context, a Alert) error
}
