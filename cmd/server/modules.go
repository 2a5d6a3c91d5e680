package main

import (
	"encoding/json"
	"net/http"

	"github.com/JaimeStill/binsort/internal/api"
	"github.com/JaimeStill/binsort/internal/config"
	"github.com/JaimeStill/binsort/internal/infrastructure"
	"github.com/JaimeStill/binsort/pkg/middleware"
	"github.com/JaimeStill/binsort/pkg/module"
	"github.com/JaimeStill/binsort/web/app"
)

// Modules holds the HTTP modules mounted on the root router.
type Modules struct {
	API *api.API
	App *module.Module
}

// NewModules builds the API and dashboard modules.
func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule := api.New(cfg, infra)

	appModule, err := app.NewModule(
		app.Config{BasePath: cfg.API.AppPath, APIPath: cfg.API.BasePath},
		apiModule.Domain.Bins,
		infra.Logger,
	)
	if err != nil {
		return nil, err
	}
	appModule.Use(middleware.Logger(infra.Logger))

	return &Modules{
		API: apiModule,
		App: appModule,
	}, nil
}

// Mount registers every module on router.
func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API.Module)
	router.Mount(m.App)
}

func buildRouter(infra *infrastructure.Infrastructure, cfg *config.Config) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, cfg.API.AppPath+"/", http.StatusFound)
	})

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	return router
}
