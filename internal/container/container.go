package container

import (
	"context"
	"fmt"

	"funnelboard/adapters/api"
	"funnelboard/adapters/excel"
	"funnelboard/adapters/memory"
	"funnelboard/adapters/postgres"
	"funnelboard/app"
	"funnelboard/internal"
	"funnelboard/internal/config"
	"funnelboard/internal/queries"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Services
	Funnels *app.FunnelService
	Queries *queries.Catalog
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	catalog, err := queries.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load query catalog: %w", err)
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Funnels: app.NewFunnelService(ServiceConfig(cfg), logger),
		Queries: catalog,
	}
	return c, nil
}

// ServiceConfig derives the funnel service settings from the app config
func ServiceConfig(cfg *config.Config) app.ServiceConfig {
	svc := app.DefaultServiceConfig()
	svc.Layout = cfg.Render.Layout()
	svc.Text = cfg.Render.Text()
	svc.CacheTTL = cfg.Render.CacheTTL
	svc.Concurrency = cfg.Data.LoadConcurrency
	return svc
}

// InitWithDatabase registers the Postgres account-creation funnel
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	if err := c.Funnels.Register(postgres.NewFunnelRepository(db)); err != nil {
		return fmt.Errorf("failed to register database funnel: %w", err)
	}

	c.Logger.Info("[container] Registered database funnel source")
	return nil
}

// InitSources registers the workbook and remote sources that are configured.
// Without a database the demo onboarding funnel stands in for it.
func (c *Container) InitSources(ctx context.Context) error {
	if c.DB == nil {
		if err := c.Funnels.Register(memory.DemoAccountCreation()); err != nil {
			return err
		}
		c.Logger.Warn("[container] No DATABASE_URL set, serving demo account-creation funnel")
	}

	if path := c.Config.Data.ExcelFile; path != "" {
		workbookConfig := excel.DefaultExcelConfig()
		workbookConfig.FilePath = path
		workbookConfig.Enabled = true
		if err := c.Funnels.RegisterCatalog(ctx, excel.NewWorkbook(workbookConfig, c.Logger)); err != nil {
			return fmt.Errorf("failed to register workbook funnels from %s: %w", path, err)
		}
		c.Logger.Info("[container] Registered workbook funnels from %s", path)
	}

	if base := c.Config.Data.RemoteURL; base != "" {
		clientConfig := api.DefaultClientConfig()
		clientConfig.BaseURL = base
		clientConfig.Timeout = c.Config.Data.RemoteTimeout
		clientConfig.Funnels = c.Config.Data.RemoteFunnels
		if err := c.Funnels.RegisterCatalog(ctx, api.NewClient(clientConfig)); err != nil {
			return fmt.Errorf("failed to register remote funnels from %s: %w", base, err)
		}
		c.Logger.Info("[container] Registered remote funnels from %s", base)
	}

	return nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
