package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/JaimeStill/binsort/pkg/lifecycle"
)

// Dispatcher delivers alerts to its channels.
type Dispatcher struct {
	channels []Channel
	queue    chan Alert
	timeout  time.Duration
	logger   *slog.Logger
}

// New creates a Dispatcher over the given channels.
func New(cfg Config, logger *slog.Logger, channels ...Channel) *Dispatcher {
	queueSize := cfg.QueueSize
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}

	d := &Dispatcher{
		channels: channels,
		queue:    make(chan Alert, queueSize),
		timeout:  cfg.TimeoutDuration(),
		logger:   logger.With("system", "alerts"),
	}

	names := make([]string, len(channels))
	for i, ch := range channels {
		names[i] = ch.Name()
	}
	d.logger.Info("alert channels configured", "channels", names)

	return d
}

// Start runs the delivery worker on the coordinator. Alerts still queued at
// shutdown are delivered before the worker returns.
func (d *Dispatcher) Start(lc *lifecycle.Coordinator) error {
	lc.Go(d.run)
	return nil
}

// Notify queues a for delivery without blocking. It reports false when the
// queue is full and the alert was dropped.
func (d *Dispatcher) Notify(a Alert) bool {
	select {
	case d.queue <- a:
		return true
	default:
		d.logger.Warn("alert queue full, alert dropped", "bin", a.Bin, "count", a.Count)
		return false
	}
}

// Dispatch sends a to every channel concurrently, each under its own timeout.
// A failing channel does not stop the others; all failures are combined.
func (d *Dispatcher) Dispatch(ctx context.Context, a Alert) error {
	errs := make([]error, len(d.channels))

	var wg sync.WaitGroup
	for i, ch := range d.channels {
		wg.Go(func() {
			sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()

			if err := ch.Send(sendCtx, a); err != nil {
				d.logger.Error("alert delivery failed", "channel", ch.Name(), "bin", a.Bin, "error", err)
				errs[i] = fmt.Errorf("%s: %w", ch.Name(), err)
				return
			}
			d.logger.Info("alert delivered", "channel", ch.Name(), "bin", a.Bin)
		})
	}
	wg.Wait()

	return multierr.Combine(errs...)
}

func (d *Dispatcher) run(ctx context.Context) {
	for {
		select {
		case a := <-d.queue:
			d.Dispatch(context.WithoutCancel(ctx), a)
		case <-ctx.Done():
			d.drain()
			return
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case a := <-d.queue:
			d.Dispatch(context.Background(), a)
		default:
			return
		}
	}
}
