package journal

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/binsort/pkg/handlers"
	"github.com/JaimeStill/binsort/pkg/pagination"
	"github.com/JaimeStill/binsort/pkg/routes"
)

// Handler provides HTTP endpoints for the outcome and alert history.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "journal"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for journal endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Children: []routes.Group{
			{
				Prefix: "/outcomes",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.ListOutcomes},
					{Method: "GET", Pattern: "/{id}", Handler: h.FindOutcome},
				},
			},
			{
				Prefix: "/alerts",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.ListAlerts},
				},
			},
		},
	}
}

// ListOutcomes returns a page of recorded outcomes filtered by bin, status and filename.
func (h *Handler) ListOutcomes(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := OutcomeFiltersFromQuery(r.URL.Query())

	result, err := h.sys.ListOutcomes(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// FindOutcome returns a single outcome by its UUID path parameter.
func (h *Handler) FindOutcome(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	entry, err := h.sys.FindOutcome(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, entry)
}

// ListAlerts returns a page of raised alerts, newest first.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := AlertFiltersFromQuery(r.URL.Query())

	result, err := h.sys.ListAlerts(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
