package bins

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"

	"github.com/JaimeStill/binsort/pkg/handlers"
	"github.com/JaimeStill/binsort/pkg/routes"
)

// Handler provides HTTP endpoints for bin status and contents.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "bins"),
	}
}

// Routes returns the route group definition for bin endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/bins",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Status},
			{Method: "GET", Pattern: "/{bin}", Handler: h.List},
			{Method: "GET", Pattern: "/{bin}/items/{name}", Handler: h.Item},
		},
	}
}

// Status returns the fill state of every bin keyed by bin name.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Status(r.Context()))
}

// List returns the stored images of one bin, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id, err := Parse(r.PathValue("bin"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	listing, err := h.sys.List(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, listing)
}

// Item streams one stored image.
func (h *Handler) Item(w http.ResponseWriter, r *http.Request) {
	id, err := Parse(r.PathValue("bin"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	name := r.PathValue("name")
	rc, err := h.sys.Open(r.Context(), id, name)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer rc.Close()

	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("image stream interrupted", "bin", id, "name", name, "error", err)
	}
}
