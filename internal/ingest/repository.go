package ingest

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/binsort/internal/alerts"
	"github.com/JaimeStill/binsort/internal/bins"
	"github.com/JaimeStill/binsort/internal/detection"
	"github.com/JaimeStill/binsort/internal/waste"
	"github.com/JaimeStill/binsort/pkg/storage"
)

type repo struct {
	storage   storage.System
	bins      bins.System
	detector  detection.Detector
	notifier  Notifier
	recorders []Recorder
	clock     clock.Clock
	logger    *slog.Logger

	maxFileSize int64
	workers     int
	binLocks    map[bins.ID]*sync.Mutex
}

// New creates the ingestion system. The detector is selected by the caller;
// recorders observe every outcome.
func New(
	store storage.System,
	binSys bins.System,
	detector detection.Detector,
	notifier Notifier,
	cfg Config,
	clk clock.Clock,
	logger *slog.Logger,
	recorders ...Recorder,
) System {
	locks := make(map[bins.ID]*sync.Mutex)
	for _, id := range bins.All() {
		locks[id] = &sync.Mutex{}
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	return &repo{
		storage:     store,
		bins:        binSys,
		detector:    detector,
		notifier:    notifier,
		recorders:   recorders,
		clock:       clk,
		logger:      logger.With("system", "ingest", "detector", detector.Name()),
		maxFileSize: cfg.MaxFileSizeBytes(),
		workers:     workers,
		binLocks:    locks,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, maxUploadSize)
}

func (r *repo) Ingest(ctx context.Context, target bins.ID, uploads []Upload) []Outcome {
	outcomes := make([]Outcome, len(uploads))

	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, up := range uploads {
		g.Go(func() error {
			outcomes[i] = r.ingestRecovered(ctx, target, up)
			r.record(ctx, target, outcomes[i])
			return nil
		})
	}
	g.Wait()

	return outcomes
}

func (r *repo) Classify(ctx context.Context, frame string) (*FrameResult, error) {
	payload := strings.TrimSpace(frame)
	if i := strings.IndexByte(payload, ','); i >= 0 {
		payload = payload[i+1:]
	}
	if payload == "" {
		return nil, ErrNoImage
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", detection.ErrDecodeFailure, err)
	}

	res, category, err := r.classify(ctx, data)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return nil, ErrClassificationFailed
	}

	return &FrameResult{
		Status:     string(StatusSuccess),
		Category:   category,
		Label:      res.Label,
		Bin:        bins.Resolve(string(category)),
		Confidence: res.Confidence,
		Detector:   res.Detector,
		Timestamp:  r.clock.Now().UTC(),
	}, nil
}

type routed struct {
	name       string
	label      string
	category   waste.Category
	bin        bins.ID
	confidence float64
}

// ingestRecovered converts a panic on one file's path into that file's error
// outcome. Deferred discards in place have already run by the time the panic
// reaches here.
func (r *repo) ingestRecovered(ctx context.Context, target bins.ID, up Upload) (o Outcome) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("upload panicked",
				"bin", target,
				"filename", up.Filename,
				"panic", p,
				"stack", string(debug.Stack()),
			)
			o = Outcome{
				Filename: up.Filename,
				Status:   StatusError,
				Message:  ErrInternal.Error(),
			}
		}
	}()
	return r.ingestOne(ctx, target, up)
}

func (r *repo) ingestOne(ctx context.Context, target bins.ID, up Upload) Outcome {
	rt, err := r.place(ctx, target, up)

	o := Outcome{
		Filename: up.Filename,
		Status:   statusOf(err),
		Category: rt.category,
		Label:    rt.label,
	}
	if rt.category != "" {
		o.Confidence = &rt.confidence
	}

	switch o.Status {
	case StatusSuccess:
		o.Bin = rt.bin
		o.StoredName = rt.name
		r.logger.Info("upload stored", "bin", target, "name", rt.name, "category", rt.category)
	case StatusWrongBin:
		o.CorrectBin = rt.bin
		r.logger.Info("upload rejected: wrong bin", "bin", target, "correct_bin", rt.bin, "category", rt.category)
	case StatusError:
		o.Message = uploadMessage(err)
		r.logger.Error("upload failed", "bin", target, "filename", up.Filename, "error", err)
	default:
		o.Message = uploadMessage(err)
		r.logger.Warn("upload rejected", "bin", target, "filename", up.Filename, "status", o.Status)
	}

	return o
}

// place validates, stages, classifies and routes one upload. The staged copy
// is discarded on every path that does not commit it.
func (r *repo) place(ctx context.Context, target bins.ID, up Upload) (routed, error) {
	var rt routed

	if up.Filename == "" {
		return rt, ErrNoFile
	}
	if !bins.IsImage(up.Filename) {
		return rt, ErrInvalidType
	}
	if up.Size > r.maxFileSize {
		return rt, ErrTooLarge
	}

	data, err := r.read(up)
	if err != nil {
		return rt, err
	}

	rt.name = StoredName(r.clock.Now(), up.Filename)
	if err := r.storage.Stage(ctx, rt.name, bytes.NewReader(data)); err != nil {
		return rt, fmt.Errorf("stage upload: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			r.discard(ctx, rt.name)
		}
	}()

	res, category, err := r.classify(ctx, data)
	if err != nil {
		return rt, err
	}

	rt.label = res.Label
	rt.category = category
	rt.confidence = res.Confidence

	if category == "" {
		return rt, ErrClassificationFailed
	}

	rt.bin = bins.Resolve(string(category))
	if rt.bin != target {
		return rt, ErrWrongBin
	}

	if err := r.commit(ctx, target, rt.name); err != nil {
		return rt, err
	}
	committed = true

	return rt, nil
}

// commit moves the staged file into the bin and checks the fill state while
// holding the bin's lock, so the count observed includes this commit.
func (r *repo) commit(ctx context.Context, target bins.ID, name string) error {
	mu := r.binLocks[target]
	mu.Lock()
	defer mu.Unlock()

	if err := r.storage.Commit(ctx, name, string(target)); err != nil {
		return fmt.Errorf("commit upload: %w", err)
	}

	status := r.bins.StatusOf(ctx, target)
	if status.Full && r.notifier != nil {
		r.notifier.Notify(alerts.Alert{
			Bin:      target,
			Count:    status.Count,
			Capacity: status.Capacity,
			RaisedAt: r.clock.Now().UTC(),
		})
	}

	return nil
}

func (r *repo) classify(ctx context.Context, data []byte) (detection.Result, waste.Category, error) {
	img, err := detection.Decode(data)
	if err != nil {
		return detection.Result{}, "", err
	}

	res, err := r.detector.Detect(ctx, img)
	if err != nil {
		return detection.Result{}, "", fmt.Errorf("detect: %w", err)
	}

	return res, waste.Normalize(res.Label), nil
}

func (r *repo) read(up Upload) ([]byte, error) {
	if up.Open == nil {
		return nil, ErrNoFile
	}

	rc, err := up.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, r.maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > r.maxFileSize {
		return nil, ErrTooLarge
	}
	return data, nil
}

func (r *repo) discard(ctx context.Context, name string) {
	err := r.storage.Discard(context.WithoutCancel(ctx), name)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		r.logger.Warn("staged upload not discarded", "name", name, "error", err)
	}
}

func (r *repo) record(ctx context.Context, target bins.ID, o Outcome) {
	for _, rec := range r.recorders {
		if err := rec.RecordOutcome(context.WithoutCancel(ctx), target, o); err != nil {
			r.logger.Warn("outcome not recorded", "filename", o.Filename, "error", err)
		}
	}
}
