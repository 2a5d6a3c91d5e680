package middleware_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/binsort/pkg/middleware"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestApplyOrder(t *testing.T) {
	var order []string
	mw := middleware.New()

	for _, name := range []string{"outer", "inner"} {
		mw.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		})
	}

	handler := mw.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if diff := cmp.Diff([]string{"outer", "inner", "handler"}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestRecover(t *testing.T) {
	handler := middleware.Recover(discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("detector exploded")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/bins/Blue/items", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rec.Code)
	}
}

func TestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/bins/Red/items", nil))

	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want 409", rec.Code)
	}
	out := buf.String()
	for _, want := range []string{"status=409", "method=POST", "uri=/api/bins/Red/items"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q: %s", want, out)
		}
	}
}

func TestLoggerPreservesHijacker(t *testing.T) {
	var hijackable bool
	handler := middleware.Logger(discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hijackable = w.(http.Hijacker)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/live", nil))

	if !hijackable {
		t.Error("wrapped writer should implement http.Hijacker")
	}
}

func TestCORS(t *testing.T) {
	cfg := &middleware.CORSConfig{
		Enabled:          true,
		Origins:          []string{"http://kiosk.local"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           600,
	}

	tests := []struct {
		name       string
		cfg        *middleware.CORSConfig
		method     string
		origin     string
		wantOrigin string
		wantStatus int
	}{
		{"allowed origin", cfg, "GET", "http://kiosk.local", "http://kiosk.local", http.StatusOK},
		{"denied origin", cfg, "GET", "http://other.local", "", http.StatusOK},
		{"preflight", cfg, "OPTIONS", "http://kiosk.local", "http://kiosk.local", http.StatusOK},
		{"disabled", &middleware.CORSConfig{Origins: []string{"*"}}, "GET", "http://kiosk.local", "", http.StatusOK},
		{"wildcard", &middleware.CORSConfig{Enabled: true, Origins: []string{"*"}}, "GET", "http://any.local", "http://any.local", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			handler := middleware.CORS(tt.cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/api/bins", nil)
			req.Header.Set("Origin", tt.origin)
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow-origin: got %q, want %q", got, tt.wantOrigin)
			}
			if tt.method == "OPTIONS" && tt.cfg.Enabled && called {
				t.Error("preflight reached the handler")
			}
		})
	}

	t.Run("headers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Origin", "http://kiosk.local")
		middleware.CORS(cfg)(okHandler()).ServeHTTP(rec, req)

		h := rec.Header()
		if got := h.Get("Access-Control-Allow-Methods"); got != "GET, POST" {
			t.Errorf("allow-methods: got %q", got)
		}
		if got := h.Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("allow-credentials: got %q", got)
		}
		if got := h.Get("Access-Control-Max-Age"); got != "600" {
			t.Errorf("max-age: got %q", got)
		}
	})
}

func TestCORSConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := middleware.CORSConfig{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if diff := cmp.Diff([]string{"GET", "POST", "OPTIONS"}, cfg.AllowedMethods); diff != "" {
			t.Errorf("allowed methods (-want +got):\n%s", diff)
		}
		if cfg.MaxAge != 3600 {
			t.Errorf("max age: got %d, want 3600", cfg.MaxAge)
		}
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("TEST_CORS_ENABLED", "true")
		t.Setenv("TEST_CORS_ORIGINS", "http://a.local, ,http://b.local")
		t.Setenv("TEST_CORS_MAX_AGE", "120")

		cfg := middleware.CORSConfig{}
		err := cfg.Finalize(&middleware.CORSEnv{
			Enabled: "TEST_CORS_ENABLED",
			Origins: "TEST_CORS_ORIGINS",
			MaxAge:  "TEST_CORS_MAX_AGE",
		})
		if err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if !cfg.Enabled {
			t.Error("enabled: want true")
		}
		if diff := cmp.Diff([]string{"http://a.local", "http://b.local"}, cfg.Origins); diff != "" {
			t.Errorf("origins (-want +got):\n%s", diff)
		}
		if cfg.MaxAge != 120 {
			t.Errorf("max age: got %d, want 120", cfg.MaxAge)
		}
	})
}

func TestCORSConfigMerge(t *testing.T) {
	base := middleware.CORSConfig{
		Origins:        []string{"http://base.local"},
		AllowedMethods: []string{"GET"},
		MaxAge:         3600,
	}
	base.Merge(&middleware.CORSConfig{
		Enabled: true,
		Origins: []string{"http://overlay.local"},
		MaxAge:  7200,
	})

	if !base.Enabled {
		t.Error("enabled: want true")
	}
	if diff := cmp.Diff([]string{"http://overlay.local"}, base.Origins); diff != "" {
		t.Errorf("origins (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"GET"}, base.AllowedMethods); diff != "" {
		t.Errorf("allowed methods (-want +got):\n%s", diff)
	}
	if base.MaxAge != 7200 {
		t.Errorf("max age: got %d, want 7200", base.MaxAge)
	}
}
