package app

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	cfg "github.com/streamforms/submission-exporter/config"
	"github.com/streamforms/submission-exporter/internal/cache"
	rediscache "github.com/streamforms/submission-exporter/internal/cache/redis"
	"github.com/streamforms/submission-exporter/internal/errors"
	"github.com/streamforms/submission-exporter/internal/i18n"
	"github.com/streamforms/submission-exporter/internal/metrics"
	"github.com/streamforms/submission-exporter/internal/server"
	"github.com/streamforms/submission-exporter/internal/service"
	"github.com/streamforms/submission-exporter/internal/store"
	"github.com/streamforms/submission-exporter/internal/store/postgres"
)

type App struct {
	Config   *cfg.AppConfig
	log      *slog.Logger
	exitCh   chan error
	shutdown func(ctx context.Context) error

	Store    store.Store
	Cache    cache.ExportCache
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	FormService       service.FormService
	SubmissionService service.SubmissionService

	server *server.Server
}

// New creates a fully initialized App.
func New(config *cfg.AppConfig, shutdown func(ctx context.Context) error) (*App, error) {
	app := &App{
		Config:   config,
		log:      slog.Default(),
		shutdown: shutdown,
		exitCh:   make(chan error),
	}

	if err := i18n.Load(); err != nil {
		return nil, errors.New("unable to load translations", errors.WithCause(err))
	}
	if err := app.initStore(); err != nil {
		return nil, err
	}
	if err := app.initCache(); err != nil {
		return nil, err
	}
	if err := app.initMetrics(); err != nil {
		return nil, err
	}
	if err := app.initServices(); err != nil {
		return nil, err
	}
	if err := app.initServer(); err != nil {
		return nil, err
	}

	// --------- Route Registration (HTTP) ---------
	RegisterRoutes(app.server.Mux, app)

	return app, nil
}

// --------- Private init methods ---------

func (app *App) initStore() error {
	if app.Config.Database == nil {
		return errors.New("database config is nil")
	}
	app.Store = postgres.New(app.Config.Database)
	return nil
}

// initCache never fails the boot: exports work without Redis, every
// document is just built fresh.
func (app *App) initCache() error {
	if app.Config.Redis == nil || app.Config.Redis.Addr == "" {
		app.log.Info("submission_exporter.main.cache_disabled")
		return nil
	}

	redisCache, err := rediscache.NewRedisCache(app.Config.Redis.Addr, app.Config.Redis.Password, app.Config.Redis.DB)
	if err != nil {
		app.log.Warn(
			"submission_exporter.main.cache_unavailable",
			slog.Any("error", err),
		)
		return nil
	}
	app.Cache = redisCache
	return nil
}

func (app *App) initMetrics() error {
	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.Metrics = metrics.New(app.Registry)
	return nil
}

func (app *App) initServices() error {
	forms, err := service.NewFormService(app.Store, app.log)
	if err != nil {
		return errors.New("failed to init form service", errors.WithCause(err))
	}
	app.FormService = forms

	submissions, err := service.NewSubmissionService(
		app.Store,
		app.Cache,
		app.Metrics,
		app.log,
		app.Config.Export.CacheTTL,
	)
	if err != nil {
		return errors.New("failed to init submission service", errors.WithCause(err))
	}
	app.SubmissionService = submissions
	return nil
}

func (app *App) initServer() error {
	srv, err := server.BuildServer(app.Config, app.Metrics, app.Registry, app.log, app.exitCh)
	if err != nil {
		return errors.New("failed to build server", errors.WithCause(err))
	}
	app.server = srv
	return nil
}

// Start opens the database pool and serves HTTP until Stop or a server error.
func (app *App) Start() error {
	if err := app.Store.Open(); err != nil {
		return errors.New("failed to open store", errors.WithCause(err))
	}

	go app.server.Start()

	return <-app.exitCh
}

// Stop gracefully shuts down all services
func (app *App) Stop() error {
	slog.Info("submission_exporter.main.stop_starting")

	if app.server != nil {
		app.server.Stop()
		slog.Info("server stopped")
	}

	if app.Cache != nil {
		if err := app.Cache.Close(); err != nil {
			slog.Error("cache close error", "err", err)
		} else {
			slog.Info("cache closed")
		}
	}

	if app.Store != nil {
		if err := app.Store.Close(); err != nil {
			slog.Error("store close error", "err", err)
		} else {
			slog.Info("store closed")
		}
	}

	if app.shutdown != nil {
		if err := app.shutdown(context.Background()); err != nil {
			slog.Error("shutdown hook error", "err", err)
		} else {
			slog.Info("shutdown hook executed")
		}
	}

	slog.Info("submission_exporter.main.stop_complete")
	return nil
}
