package app_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gopkg.in/src-d/go-billy.v4/memfs"
	"gopkg.in/src-d/go-billy.v4/util"

	"github.com/JaimeStill/binsort/internal/bins"
	"github.com/JaimeStill/binsort/pkg/lifecycle"
	"github.com/JaimeStill/binsort/pkg/module"
	"github.com/JaimeStill/binsort/pkg/storage"
	"github.com/JaimeStill/binsort/web/app"
)

func setup(t *testing.T) *module.Module {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fs := memfs.New()
	store := storage.NewLocal(fs, logger)

	sys := bins.New(store, bins.Config{Capacity: 2}, logger)
	if err := sys.Start(lifecycle.New()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	for _, name := range []string{"Red/a.jpg", "Red/b.png", "Blue/c.webp"} {
		if err := util.WriteFile(fs, name, []byte("img"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	m, err := app.NewModule(app.Config{BasePath: "/app", APIPath: "/api"}, sys, logger)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}
	return m
}

func get(m *module.Module, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	m.Serve(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPages(t *testing.T) {
	m := setup(t)

	tests := []struct {
		name   string
		path   string
		status int
		want   []string
	}{
		{
			name:   "home",
			path:   "/app/",
			status: http.StatusOK,
			want:   []string{"Smart Bins", `data-bin="Red"`, `data-bin="Green"`, `data-bin="Blue"`, "card bin-red full", "hazardous"},
		},
		{
			name:   "bin contents",
			path:   "/app/bins/red",
			status: http.StatusOK,
			want:   []string{"Red bin", "2 items", "Full", `src="/api/bins/Red/items/b.png"`, "3 B</small>"},
		},
		{
			name:   "empty bin",
			path:   "/app/bins/Green",
			status: http.StatusOK,
			want:   []string{"This bin is empty."},
		},
		{
			name:   "upload form",
			path:   "/app/bins/Blue/upload",
			status: http.StatusOK,
			want:   []string{`data-bin="Blue"`, `name="files"`, "recyclable"},
		},
		{
			name:   "webcam",
			path:   "/app/webcam",
			status: http.StatusOK,
			want:   []string{`id="camera"`, `data-api="/api"`},
		},
		{
			name:   "unknown bin",
			path:   "/app/bins/Purple",
			status: http.StatusNotFound,
		},
		{
			name:   "unknown page",
			path:   "/app/nowhere",
			status: http.StatusNotFound,
			want:   []string{"Not Found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(m, tt.path)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			body := rec.Body.String()
			for _, w := range tt.want {
				if !strings.Contains(body, w) {
					t.Errorf("body missing %q", w)
				}
			}
		})
	}
}

func TestStatic(t *testing.T) {
	m := setup(t)

	for _, path := range []string{"/app/static/app.css", "/app/static/app.js"} {
		rec := get(m, path)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
		if rec.Header().Get("Cache-Control") == "" {
			t.Errorf("%s missing Cache-Control", path)
		}
	}
}
