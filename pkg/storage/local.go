package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"gopkg.in/src-d/go-billy.v4"
	"gopkg.in/src-d/go-billy.v4/osfs"

	"github.com/JaimeStill/binsort/pkg/lifecycle"
)

type local struct {
	fs     billy.Filesystem
	logger *slog.Logger
}

// NewLocalDir creates a local storage system rooted at dir on the host filesystem.
func NewLocalDir(dir string, logger *slog.Logger) System {
	return NewLocal(osfs.New(dir), logger)
}

// NewLocal creates a storage system over an arbitrary billy filesystem.
// Containers are top-level directories; commits are renames within fs.
func NewLocal(fs billy.Filesystem, logger *slog.Logger) System {
	return &local{
		fs:     fs,
		logger: logger.With("system", "storage", "backend", BackendLocal),
	}
}

func (l *local) Start(lc *lifecycle.Coordinator) error {
	l.logger.Info("starting storage system", "root", l.fs.Root())
	if err := l.fs.MkdirAll(StagingArea, 0o755); err != nil {
		return fmt.Errorf("create staging area: %w", err)
	}
	return nil
}

func (l *local) Ensure(ctx context.Context, containers ...string) error {
	for _, c := range containers {
		if err := validateKey(c); err != nil {
			return err
		}
		if err := l.fs.MkdirAll(c, 0o755); err != nil {
			return fmt.Errorf("create container %s: %w", c, err)
		}
	}
	return nil
}

func (l *local) Stage(ctx context.Context, name string, r io.Reader) error {
	if err := validateKey(name); err != nil {
		return err
	}

	path := l.fs.Join(StagingArea, name)
	f, err := l.fs.Create(path)
	if err != nil {
		return fmt.Errorf("stage %s: %w", name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		l.fs.Remove(path)
		return fmt.Errorf("stage %s: %w", name, err)
	}

	if err := f.Close(); err != nil {
		l.fs.Remove(path)
		return fmt.Errorf("stage %s: %w", name, err)
	}

	return nil
}

func (l *local) Commit(ctx context.Context, name, container string) error {
	if err := validate(name, container); err != nil {
		return err
	}
	if container == StagingArea {
		return ErrInvalidKey
	}

	if err := l.fs.Rename(l.fs.Join(StagingArea, name), l.fs.Join(container, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("commit %s to %s: %w", name, container, err)
	}

	return nil
}

func (l *local) Discard(ctx context.Context, name string) error {
	if err := validateKey(name); err != nil {
		return err
	}

	if err := l.fs.Remove(l.fs.Join(StagingArea, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("discard %s: %w", name, err)
	}

	return nil
}

func (l *local) List(ctx context.Context, container string) ([]Object, error) {
	if err := validateKey(container); err != nil {
		return nil, err
	}

	entries, err := l.fs.ReadDir(container)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("list %s: %w", container, ErrNotFound)
		}
		return nil, fmt.Errorf("list %s: %w", container, err)
	}

	objects := make([]Object, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		objects = append(objects, Object{
			Name:       e.Name(),
			Size:       e.Size(),
			ModifiedAt: e.ModTime(),
		})
	}

	return objects, nil
}

func (l *local) Open(ctx context.Context, container, name string) (io.ReadCloser, error) {
	if err := validate(container, name); err != nil {
		return nil, err
	}

	f, err := l.fs.Open(l.fs.Join(container, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open %s/%s: %w", container, name, err)
	}

	return f, nil
}
