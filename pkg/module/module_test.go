package module_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/binsort/pkg/module"
)

func echoPath(w http.ResponseWriter, r *http.Request) {
	io.WriteString(w, r.URL.Path)
}

func TestNewRejectsBadPrefix(t *testing.T) {
	for _, prefix := range []string{"", "api", "/api/v1"} {
		t.Run(prefix, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("no panic for prefix %q", prefix)
				}
			}()
			module.New(prefix, http.NewServeMux())
		})
	}
}

func TestServeStripsPrefix(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", echoPath)
	m := module.New("/api", mux)

	tests := []struct {
		path string
		want string
	}{
		{"/api", "/"},
		{"/api/bins", "/bins"},
		{"/api/bins/Blue", "/bins/Blue"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			m.Serve(rec, httptest.NewRequest("GET", tt.path, nil))
			if got := rec.Body.String(); got != tt.want {
				t.Errorf("inner path: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModuleMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", echoPath)
	m := module.New("/app", mux)

	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Module", m.Prefix())
			next.ServeHTTP(w, r)
		})
	})

	rec := httptest.NewRecorder()
	m.Serve(rec, httptest.NewRequest("GET", "/app/webcam", nil))

	if got := rec.Header().Get("X-Module"); got != "/app" {
		t.Errorf("middleware header: got %q", got)
	}
}

func TestRouter(t *testing.T) {
	api := http.NewServeMux()
	api.HandleFunc("GET /bins", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "api")
	})
	app := http.NewServeMux()
	app.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "app")
	})

	router := module.NewRouter()
	router.Mount(module.New("/api", api))
	router.Mount(module.New("/app", app))
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	})

	tests := []struct {
		name   string
		path   string
		status int
		body   string
	}{
		{"api module", "/api/bins", http.StatusOK, "api"},
		{"trailing slash", "/api/bins/", http.StatusOK, "api"},
		{"app module root", "/app", http.StatusOK, "app"},
		{"native fallback", "/healthz", http.StatusOK, "ok"},
		{"unmatched", "/missing", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d", rec.Code, tt.status)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body: got %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}
