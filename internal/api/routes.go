package api

import (
	"net/http"

	"github.com/JaimeStill/binsort/internal/config"
	"github.com/JaimeStill/binsort/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) {
	routes.Register(
		mux,
		domain.Bins.Handler().Routes(),
		domain.Ingest.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Journal.Handler().Routes(),
		domain.Live.Routes(),
	)
}
