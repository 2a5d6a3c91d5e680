package ingest

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/JaimeStill/binsort/internal/bins"
	"github.com/JaimeStill/binsort/pkg/handlers"
	"github.com/JaimeStill/binsort/pkg/routes"
)

// Handler provides HTTP endpoints for uploads and frame classification.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// UploadResponse is the body returned for a bin upload.
type UploadResponse struct {
	Results []Outcome `json:"results"`
	Summary Summary   `json:"summary"`
}

// FrameRequest carries a base64 frame, optionally as a data URI.
type FrameRequest struct {
	Image string `json:"image"`
}

// FrameError is the body returned when a frame cannot be classified.
type FrameError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewHandler creates a Handler bounded by maxUploadSize per request body.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "ingest"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for ingestion endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/bins/{bin}/upload", Handler: h.Upload},
			{Method: "POST", Pattern: "/frames", Handler: h.Frame},
		},
	}
}

// Upload accepts one or more images in the "files" or "file" multipart field
// and returns a per-file outcome for each. The whole request body is capped at
// maxUploadSize and answered with 413 past it; files within that cap that
// exceed the per-file limit get a too_large outcome instead.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	target, err := bins.Parse(r.PathValue("bin"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoFile)
		return
	}
	defer r.MultipartForm.RemoveAll()

	uploads := formUploads(r.MultipartForm)
	if !anySelected(uploads) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoFile)
		return
	}

	results := h.sys.Ingest(r.Context(), target, uploads)
	handlers.RespondJSON(w, http.StatusOK, UploadResponse{
		Results: results,
		Summary: Summarize(results),
	})
}

// Frame classifies a single webcam frame.
func (h *Handler) Frame(w http.ResponseWriter, r *http.Request) {
	var req FrameRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, h.maxUploadSize)).Decode(&req); err != nil {
		h.respondFrameError(w, ErrNoImage)
		return
	}

	result, err := h.sys.Classify(r.Context(), req.Image)
	if err != nil {
		h.respondFrameError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) respondFrameError(w http.ResponseWriter, err error) {
	status := MapHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("frame classification failed", "error", err)
	} else {
		h.logger.Warn("frame rejected", "error", err)
	}
	handlers.RespondJSON(w, status, FrameError{Status: string(StatusError), Message: frameMessage(err)})
}

func formUploads(form *multipart.Form) []Upload {
	headers := append(form.File["files"], form.File["file"]...)

	uploads := make([]Upload, len(headers))
	for i, fh := range headers {
		uploads[i] = Upload{
			Filename: fh.Filename,
			Size:     fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		}
	}
	return uploads
}

func anySelected(uploads []Upload) bool {
	for _, u := range uploads {
		if u.Filename != "" {
			return true
		}
	}
	return false
}
