// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/binsort/internal/config"
	"github.com/JaimeStill/binsort/internal/infrastructure"
	"github.com/JaimeStill/binsort/pkg/middleware"
	"github.com/JaimeStill/binsort/pkg/module"
)

// API is the mounted module together with the domain systems behind it.
type API struct {
	Module  *module.Module
	Domain  *Domain
	runtime *Runtime
}

// New creates the API module with all domain handlers and middleware.
func New(cfg *config.Config, infra *infrastructure.Infrastructure) *API {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.Recover(runtime.Logger))
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return &API{Module: m, Domain: domain, runtime: runtime}
}

// Start starts the domain systems. Call after the infrastructure has started.
func (a *API) Start() error {
	return a.Domain.Start(a.runtime)
}
