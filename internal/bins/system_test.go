package bins_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/src-d/go-billy.v4"
	"gopkg.in/src-d/go-billy.v4/memfs"
	"gopkg.in/src-d/go-billy.v4/util"

	"github.com/JaimeStill/binsort/internal/bins"
	"github.com/JaimeStill/binsort/pkg/lifecycle"
	"github.com/JaimeStill/binsort/pkg/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSystem(t *testing.T, capacity int) (bins.System, billy.Filesystem) {
	t.Helper()
	fs := memfs.New()
	store := storage.NewLocal(fs, discardLogger())
	sys := bins.New(store, bins.Config{Capacity: capacity}, discardLogger())
	if err := sys.Start(lifecycle.New()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return sys, fs
}

func fill(t *testing.T, fs billy.Filesystem, bin bins.ID, n int, ext string) {
	t.Helper()
	for i := range n {
		name := fs.Join(string(bin), fmt.Sprintf("item_%02d%s", i, ext))
		if err := util.WriteFile(fs, name, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestStatusFullThreshold(t *testing.T) {
	tests := []struct {
		name  string
		count int
		full  bool
	}{
		{"empty", 0, false},
		{"capacity minus one", 4, false},
		{"at capacity", 5, true},
		{"over capacity", 7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, fs := newSystem(t, 5)
			fill(t, fs, bins.Blue, tt.count, ".jpg")

			got := sys.StatusOf(context.Background(), bins.Blue)
			want := bins.Status{Count: tt.count, Capacity: 5, Full: tt.full}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("StatusOf mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStatusCountsImagesOnly(t *testing.T) {
	sys, fs := newSystem(t, 20)
	fill(t, fs, bins.Green, 2, ".png")
	fill(t, fs, bins.Green, 1, ".txt")
	fill(t, fs, bins.Green, 1, ".WEBP")

	got := sys.StatusOf(context.Background(), bins.Green)
	if got.Count != 3 {
		t.Errorf("Count = %d, want 3", got.Count)
	}
}

func TestStatusAllBins(t *testing.T) {
	sys, fs := newSystem(t, 2)
	fill(t, fs, bins.Red, 2, ".jpg")
	fill(t, fs, bins.Blue, 1, ".jpeg")

	got := sys.Status(context.Background())
	want := map[bins.ID]bins.Status{
		bins.Red:   {Count: 2, Capacity: 2, Full: true},
		bins.Green: {Count: 0, Capacity: 2, Full: false},
		bins.Blue:  {Count: 1, Capacity: 2, Full: false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Status mismatch (-want +got):\n%s", diff)
	}
}

type faultyStorage struct {
	storage.System
	failing string
}

func (f *faultyStorage) List(ctx context.Context, container string) ([]storage.Object, error) {
	if container == f.failing {
		return nil, errors.New("disk unavailable")
	}
	return f.System.List(ctx, container)
}

func TestStatusFaultIsolatedPerBin(t *testing.T) {
	fs := memfs.New()
	store := &faultyStorage{System: storage.NewLocal(fs, discardLogger()), failing: string(bins.Green)}
	sys := bins.New(store, bins.Config{Capacity: 1}, discardLogger())
	if err := sys.Start(lifecycle.New()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	fill(t, fs, bins.Red, 1, ".jpg")

	got := sys.Status(context.Background())

	green := got[bins.Green]
	if green.Count != 0 || green.Full || green.Error == "" {
		t.Errorf("Green = %+v, want zero count, not full, with error", green)
	}
	if red := got[bins.Red]; red.Count != 1 || !red.Full || red.Error != "" {
		t.Errorf("Red = %+v, want count 1, full, no error", red)
	}
}

func TestListFiltersImages(t *testing.T) {
	sys, fs := newSystem(t, 20)
	fill(t, fs, bins.Red, 3, ".jpg")
	fill(t, fs, bins.Red, 2, ".log")

	listing, err := sys.List(context.Background(), bins.Red)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if listing.Bin != bins.Red || listing.Count != 3 || len(listing.Items) != 3 {
		t.Errorf("listing = %+v, want 3 Red items", listing)
	}
}

func TestOpenRejectsNonImages(t *testing.T) {
	sys, fs := newSystem(t, 20)
	fill(t, fs, bins.Red, 1, ".txt")

	_, err := sys.Open(context.Background(), bins.Red, "item_00.txt")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Open error = %v, want ErrNotFound", err)
	}
}

func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	objects := []storage.Object{
		{Name: "old.jpg", ModifiedAt: base},
		{Name: "new.jpg", ModifiedAt: base.Add(2 * time.Minute)},
		{Name: "20260101_b.jpg", ModifiedAt: base.Add(time.Minute)},
		{Name: "20260101_c.jpg", ModifiedAt: base.Add(time.Minute)},
	}

	bins.SortNewestFirst(objects)

	var names []string
	for _, o := range objects {
		names = append(names, o.Name)
	}
	want := []string{"new.jpg", "20260101_c.jpg", "20260101_b.jpg", "old.jpg"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}
