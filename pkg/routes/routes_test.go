package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/binsort/pkg/routes"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func group() routes.Group {
	return routes.Group{
		Prefix: "/bins",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: ok},
			{Method: "GET", Pattern: "/{bin}", Handler: ok},
		},
		Children: []routes.Group{
			{
				Prefix: "/{bin}/items",
				Routes: []routes.Route{
					{Method: "POST", Pattern: "", Handler: ok},
				},
			},
		},
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, group())

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/bins", http.StatusOK},
		{"GET", "/bins/Blue", http.StatusOK},
		{"POST", "/bins/Blue/items", http.StatusOK},
		{"DELETE", "/bins/Blue", http.StatusMethodNotAllowed},
		{"GET", "/other", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestPatterns(t *testing.T) {
	want := []string{
		"GET /bins",
		"GET /bins/{bin}",
		"POST /bins/{bin}/items",
	}
	if diff := cmp.Diff(want, group().Patterns()); diff != "" {
		t.Errorf("patterns mismatch (-want +got):\n%s", diff)
	}
}
