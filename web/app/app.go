// Package app serves the server-rendered dashboard: bin status, bin
// contents, the upload form and the webcam classifier.
package app

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/binsort/internal/bins"
	"github.com/JaimeStill/binsort/pkg/formatting"
	"github.com/JaimeStill/binsort/pkg/module"
	"github.com/JaimeStill/binsort/pkg/web"
)

//go:embed templates static
var content embed.FS

const layout = "base"

var (
	homeView     = web.ViewDef{Route: "GET /{$}", Template: "home.html", Title: "Smart Bins"}
	binView      = web.ViewDef{Route: "GET /bins/{bin}", Template: "bin.html", Title: "Bin Contents"}
	uploadView   = web.ViewDef{Route: "GET /bins/{bin}/upload", Template: "upload.html", Title: "Upload Waste"}
	webcamView   = web.ViewDef{Route: "GET /webcam", Template: "webcam.html", Title: "Webcam Classifier"}
	notFoundView = web.ViewDef{Template: "404.html", Title: "Not Found"}
)

// Config locates the app and the JSON API it calls from the browser.
type Config struct {
	BasePath string
	APIPath  string
}

// BinCard is the home page view of one bin.
type BinCard struct {
	ID     bins.ID
	Code   string
	Kind   string
	Status bins.Status
}

// BinPage is the data for the bin and upload pages.
type BinPage struct {
	Bin     bins.ID
	Kind    string
	Listing *bins.Listing
	Status  bins.Status
}

// NewModule creates the app module mounted at cfg.BasePath.
func NewModule(cfg Config, binSys bins.System, logger *slog.Logger) (*module.Module, error) {
	funcs := template.FuncMap{
		"api": func(parts ...string) string {
			return cfg.APIPath + strings.Join(parts, "")
		},
		"lower": func(id bins.ID) string {
			return strings.ToLower(string(id))
		},
		"bytes": func(n int64) string {
			return formatting.FormatBytes(n, 1)
		},
	}

	views := []web.ViewDef{homeView, binView, uploadView, webcamView, notFoundView}
	ts, err := web.NewTemplateSet(content, "templates/layouts/*.html", "templates/views", cfg.BasePath, funcs, views)
	if err != nil {
		return nil, err
	}
	ts.SetStatusMapper(bins.MapHTTPStatus)

	p := &pages{bins: binSys, logger: logger.With("module", "app")}

	router := web.NewRouter()
	router.HandleFunc(homeView.Route, ts.PageHandler(layout, homeView, p.home))
	router.HandleFunc(binView.Route, ts.PageHandler(layout, binView, p.bin))
	router.HandleFunc(uploadView.Route, ts.PageHandler(layout, uploadView, p.upload))
	router.HandleFunc(webcamView.Route, ts.PageHandler(layout, webcamView, nil))
	router.HandleFunc("GET /static/", web.DistServer(content, "static", "/static/"))
	router.SetFallback(ts.ErrorHandler(layout, notFoundView, http.StatusNotFound))

	return module.New(cfg.BasePath, router), nil
}

type pages struct {
	bins   bins.System
	logger *slog.Logger
}

func (p *pages) home(r *http.Request) (any, error) {
	status := p.bins.Status(r.Context())

	cards := make([]BinCard, 0, len(status))
	for _, id := range bins.All() {
		cards = append(cards, BinCard{
			ID:     id,
			Code:   id.Code(),
			Kind:   id.Kind(),
			Status: status[id],
		})
	}
	return cards, nil
}

func (p *pages) bin(r *http.Request) (any, error) {
	id, err := bins.Parse(r.PathValue("bin"))
	if err != nil {
		return nil, err
	}

	listing, err := p.bins.List(r.Context(), id)
	if err != nil {
		p.logger.Warn("bin listing failed", "bin", id, "error", err)
		return nil, err
	}

	return BinPage{
		Bin:     id,
		Kind:    id.Kind(),
		Listing: listing,
		Status:  p.bins.StatusOf(r.Context(), id),
	}, nil
}

func (p *pages) upload(r *http.Request) (any, error) {
	id, err := bins.Parse(r.PathValue("bin"))
	if err != nil {
		return nil, err
	}
	return BinPage{
		Bin:    id,
		Kind:   id.Kind(),
		Status: p.bins.StatusOf(r.Context(), id),
	}, nil
}
