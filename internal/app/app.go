package app

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/statusboard/internal/config"
	"github.com/MrSnakeDoc/statusboard/internal/httpserver"
	"github.com/MrSnakeDoc/statusboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/statusboard/internal/logger"
	"github.com/MrSnakeDoc/statusboard/internal/metrics"
	"github.com/MrSnakeDoc/statusboard/internal/scheduler"
	"github.com/MrSnakeDoc/statusboard/internal/sources/catalog"
	"github.com/MrSnakeDoc/statusboard/internal/store"
	"github.com/MrSnakeDoc/statusboard/internal/tracker"
	"github.com/MrSnakeDoc/statusboard/internal/utils"
	"github.com/MrSnakeDoc/statusboard/internal/version"
)

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	server   *httpserver.Server
	store    store.Store
	tracker  *tracker.Tracker
	reloader *scheduler.CatalogReloader
}

// New opens the store and wires the tracker, catalog reloader and HTTP
// server. Nothing runs until Run.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	s, err := OpenStore(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}
	loggerClient.Info("store initialized successfully", logger.String("engine", s.Engine()))

	m := metrics.New()
	t := NewTracker(s, loggerClient, m)

	// Create manual reload trigger channel
	var (
		reloader      *scheduler.CatalogReloader
		reloadTrigger chan struct{}
		catalogState  deps.CatalogState
	)
	if cfg.CatalogFile != "" {
		loggerClient.Info("catalog file configured, initializing catalog reloader",
			logger.String("file", cfg.CatalogFile))
		reloadTrigger = make(chan struct{}, 1)
		reloader = scheduler.NewCatalogReloader(
			catalog.NewSeeder(cfg.CatalogFile, t, loggerClient),
			loggerClient,
			cfg.ReloadInterval,
			reloadTrigger,
		)
		catalogState = reloader
	} else {
		loggerClient.Info("catalog file not configured, catalog seeding disabled")
	}

	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
		Tracker:        t,
		Store:          s,
		Metrics:        m,
		Catalog:        catalogState,
		ReloadTrigger:  reloadTrigger,
	}

	return &App{
		cfg:      cfg,
		logger:   loggerClient,
		server:   httpserver.New(cfg.ListenPort, d),
		store:    s,
		tracker:  t,
		reloader: reloader,
	}, nil
}

// NewTracker builds a tracker reporting to m.
func NewTracker(s store.Store, log logger.Logger, m *metrics.Metrics) *tracker.Tracker {
	return tracker.New(s, log, tracker.WithMetrics(m))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("🚀 Starting statusboard v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())
	defer utils.MustClose(a.store, a.logger)

	// Seed the catalog (first pass runs synchronously) and start periodic reloads
	if a.reloader != nil {
		if err := a.reloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start catalog reloader: %w", err)
		}
		a.logger.Info("catalog reloader started",
			logger.Duration("interval", a.cfg.ReloadInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.reloader != nil {
		a.reloader.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.logger.Info("✅ statusboard stopped cleanly")
	return nil
}
