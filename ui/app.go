// Package ui exposes the HTTP API: uploads, dashboard queries,
// classification management and reporting.
package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"spendlens/app"
	"spendlens/internal"
	"spendlens/internal/config"
	"spendlens/internal/ingest"
)

// App represents the HTTP application
type App struct {
	router    *chi.Mux
	ingest    *ingest.Service
	dashboard *app.DashboardService
	logger    *internal.Logger

	port           string
	maxUploadBytes int64
}

// NewApp creates the HTTP application and wires its routes
func NewApp(serverCfg config.ServerConfig, ingestCfg config.IngestConfig,
	ingestSvc *ingest.Service, dashboardSvc *app.DashboardService, logger *internal.Logger) *App {
	a := &App{
		router:         chi.NewRouter(),
		ingest:         ingestSvc,
		dashboard:      dashboardSvc,
		logger:         logger,
		port:           serverCfg.Port,
		maxUploadBytes: int64(ingestCfg.MaxFileSizeMB) * 1024 * 1024,
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/health", a.handleHealth)

	a.router.Route("/api", func(r chi.Router) {
		r.Post("/uploads", a.handleUpload)

		r.Get("/dashboard", a.handleDashboard)
		r.Get("/dashboard/compare", a.handleComparePeriods)

		r.Get("/campaigns", a.handleCampaignOverview)
		r.Get("/campaigns/unclassified", a.handleUnclassified)
		r.Put("/campaigns/{name}/classification", a.handleClassify)
		r.Delete("/campaigns/{name}/classification", a.handleDeleteClassification)

		r.Get("/imports", a.handleImports)
		r.Get("/report", a.handleReport)
	})
}

// Start starts the HTTP server
func (a *App) Start() error {
	addr := ":" + a.port
	a.logger.Info("[ui] listening on %s", addr)
	return http.ListenAndServe(addr, a.router)
}
