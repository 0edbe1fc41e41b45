package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"funnelboard/app"
	"funnelboard/domain/funnel"
	"funnelboard/internal"
	"funnelboard/ports"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// App is the dashboard HTTP application
type App struct {
	router    *chi.Mux
	config    Config
	funnels   *app.FunnelService
	queries   ports.QueryCatalogPort
	templates *template.Template
	logger    *internal.Logger
}

// Config holds UI application configuration
type Config struct {
	Port         string
	Title        string
	DefaultArea  funnel.Area
	Palette      []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig matches the dashboard's 400px tall pyramid canvas
func DefaultConfig() Config {
	return Config{
		Port:         "8080",
		Title:        "Funnel Analytics",
		DefaultArea:  funnel.Area{Width: 800, Height: 400},
		Palette:      funnel.DefaultPalette,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// NewApp creates a new UI application
func NewApp(config Config, funnels *app.FunnelService, queries ports.QueryCatalogPort, logger *internal.Logger) (*App, error) {
	if funnels == nil {
		return nil, fmt.Errorf("funnel service cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	templates, err := template.New("").ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	a := &App{
		router:    chi.NewRouter(),
		config:    config,
		funnels:   funnels,
		queries:   queries,
		templates: templates,
		logger:    logger,
	}

	if err := a.setupMiddleware(); err != nil {
		return nil, err
	}
	a.setupRoutes()

	return a, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() error {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.RealIP)
	a.router.Use(requestLogger(a.logger))
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to open static files: %w", err)
	}
	a.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	return nil
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Get("/healthz", a.handleHealth)

	a.router.Route("/api", func(r chi.Router) {
		r.Get("/funnels", a.handleListFunnels)
		r.Route("/funnel/{name}", func(r chi.Router) {
			r.Get("/", a.handleFunnel)
			r.Get("/summary", a.handleSummary)
			r.Get("/pyramid.svg", a.handlePyramid("svg"))
			r.Get("/pyramid.png", a.handlePyramid("png"))
			r.Get("/pyramid.json", a.handlePyramid("json"))
			r.Get("/export.xlsx", a.handleExport)
		})
		r.Get("/sql-queries", a.handleListQueries)
		r.Get("/sql-queries/{id}", a.handleGetQuery)
		r.Get("/metrics-metadata", a.handleMetricsMetadata)
	})

	a.router.Get("/charts/funnel/{name}", a.handleBarChart)
}

// Handler exposes the router, mainly for tests
func (a *App) Handler() http.Handler {
	return a.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (a *App) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + a.config.Port,
		Handler:      a.router,
		ReadTimeout:  a.config.ReadTimeout,
		WriteTimeout: a.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("[ui] Starting funnel dashboard on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("[ui] Shutting down funnel dashboard")
		return srv.Shutdown(shutdownCtx)
	}
}

func (a *App) renderTemplate(w http.ResponseWriter, templateName string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.ExecuteTemplate(w, templateName, data); err != nil {
		a.logger.Error("[ui] template %s: %v", templateName, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}
