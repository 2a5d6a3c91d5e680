package bins

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/JaimeStill/binsort/pkg/lifecycle"
	"github.com/JaimeStill/binsort/pkg/storage"
)

// Status is the fill state of one bin. Count and Full are derived from
// storage on every call; Error is set when the bin could not be listed.
type Status struct {
	Count    int    `json:"count"`
	Capacity int    `json:"capacity"`
	Full     bool   `json:"full"`
	Error    string `json:"error,omitempty"`
}

// Listing is the content of one bin, newest first.
type Listing struct {
	Bin   ID               `json:"bin"`
	Count int              `json:"count"`
	Items []storage.Object `json:"items"`
}

// System reports bin contents and fill state. It never writes to storage.
type System interface {
	// Start ensures a storage container exists for every bin.
	Start(lc *lifecycle.Coordinator) error
	// Capacity returns the configured fill threshold.
	Capacity() int
	// Status computes the fill state of every bin. A fault on one bin is
	// reported in that bin's Status and does not affect the others.
	Status(ctx context.Context) map[ID]Status
	// StatusOf computes the fill state of a single bin.
	StatusOf(ctx context.Context, id ID) Status
	// List returns the images stored in a bin, newest first.
	List(ctx context.Context, id ID) (*Listing, error)
	// Open streams a stored image.
	Open(ctx context.Context, id ID, name string) (io.ReadCloser, error)
	Handler() *Handler
}

type system struct {
	storage  storage.System
	capacity int
	logger   *slog.Logger
}

// New creates the bin system over store with the given capacity threshold.
func New(store storage.System, cfg Config, logger *slog.Logger) System {
	capacity := cfg.Capacity
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &system{
		storage:  store,
		capacity: capacity,
		logger:   logger.With("system", "bins"),
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *system) Start(lc *lifecycle.Coordinator) error {
	containers := make([]string, len(all))
	for i, id := range all {
		containers[i] = string(id)
	}
	if err := s.storage.Ensure(lc.Context(), containers...); err != nil {
		return err
	}
	s.logger.Info("bins ready", "bins", containers, "capacity", s.capacity)
	return nil
}

func (s *system) Capacity() int {
	return s.capacity
}

func (s *system) Status(ctx context.Context) map[ID]Status {
	result := make(map[ID]Status, len(all))
	for _, id := range all {
		result[id] = s.StatusOf(ctx, id)
	}
	return result
}

func (s *system) StatusOf(ctx context.Context, id ID) Status {
	images, err := s.images(ctx, id)
	if err != nil {
		s.logger.Error("bin status failed", "bin", id, "error", err)
		return Status{Capacity: s.capacity, Error: err.Error()}
	}
	return newStatus(len(images), s.capacity)
}

func (s *system) List(ctx context.Context, id ID) (*Listing, error) {
	images, err := s.images(ctx, id)
	if err != nil {
		return nil, err
	}

	SortNewestFirst(images)
	return &Listing{Bin: id, Count: len(images), Items: images}, nil
}

func (s *system) Open(ctx context.Context, id ID, name string) (io.ReadCloser, error) {
	if !IsImage(name) {
		return nil, storage.ErrNotFound
	}
	return s.storage.Open(ctx, string(id), name)
}

func (s *system) images(ctx context.Context, id ID) ([]storage.Object, error) {
	objects, err := s.storage.List(ctx, string(id))
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(objects, func(o storage.Object) bool {
		return !IsImage(o.Name)
	}), nil
}

func newStatus(count, capacity int) Status {
	return Status{
		Count:    count,
		Capacity: capacity,
		Full:     count >= capacity,
	}
}

// SortNewestFirst orders objects by modification time, newest first, breaking
// ties by name descending so that stored names (which start with a timestamp)
// keep upload order.
func SortNewestFirst(objects []storage.Object) {
	slices.SortStableFunc(objects, func(a, b storage.Object) int {
		if c := b.ModifiedAt.Compare(a.ModifiedAt); c != 0 {
			return c
		}
		return strings.Compare(b.Name, a.Name)
	})
}
