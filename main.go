package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"funnelboard/internal"
	"funnelboard/internal/config"
	"funnelboard/internal/container"
	"funnelboard/internal/errors"
	"funnelboard/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase opens the read-only funnel database. The dashboard never
// migrates or resets it; use cmd/migrate for local bootstrapping.
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to connect to database"))
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	logger := internal.NewDefaultLogger()

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	if appConfig.Database.Enabled() {
		db, err := initDatabase(appConfig)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		if err := appContainer.InitWithDatabase(db); err != nil {
			log.Fatalf("Failed to initialize container: %v", err)
		}
	}

	if err := appContainer.InitSources(ctx); err != nil {
		log.Fatalf("Failed to register funnel sources: %v", err)
	}

	go pruneRenderCache(ctx, appContainer, appConfig.Render.CacheTTL)

	if appConfig.Profiling.Enabled {
		go func() {
			logger.Info("Starting pprof server on :%s", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				logger.Error("pprof server failed: %v", err)
			}
		}()
	}

	uiConfig := ui.DefaultConfig()
	uiConfig.Port = appConfig.Server.Port
	uiConfig.ReadTimeout = appConfig.Server.ReadTimeout
	uiConfig.WriteTimeout = appConfig.Server.WriteTimeout
	uiConfig.Palette = appConfig.Render.Layout().Palette

	dashboard, err := ui.NewApp(uiConfig, appContainer.Funnels, appContainer.Queries, logger)
	if err != nil {
		log.Fatalf("Failed to create dashboard: %v", err)
	}

	logger.Info("Serving %d funnel(s): %v", len(appContainer.Funnels.Names()), appContainer.Funnels.Names())
	if err := dashboard.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func pruneRenderCache(ctx context.Context, c *container.Container, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Funnels.PruneCache(); n > 0 {
				c.Logger.Debug("Pruned %d expired render(s)", n)
			}
		}
	}
}
