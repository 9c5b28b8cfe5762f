package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/vk/rustdex/internal/catalog"
	"github.com/vk/rustdex/internal/config"
	"github.com/vk/rustdex/internal/ctxlog"
	"github.com/vk/rustdex/internal/loader"
	"github.com/vk/rustdex/internal/metrics"
)

// ErrNotLoaded is returned by operations that need a catalog before Load
// has succeeded.
var ErrNotLoaded = errors.New("catalog not loaded")

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	logger   *slog.Logger
	config   config.Config
	metrics  *metrics.Metrics
	registry atomic.Pointer[catalog.Registry]
}

// NewApp is the constructor for the main application. Log output goes to
// logW. The catalog is not read until Load is called.
func NewApp(logW io.Writer, cfg config.Config) *App {
	logger := newLogger(cfg.Log.Level, cfg.Log.Format, logW)
	logger.Debug("Logger configured successfully.", "level", cfg.Log.Level, "format", cfg.Log.Format)

	return &App{
		logger:  logger,
		config:  cfg,
		metrics: metrics.New(),
	}
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Config returns the configuration the app was built with.
func (a *App) Config() config.Config { return a.config }

// Metrics returns the application's collectors.
func (a *App) Metrics() *metrics.Metrics { return a.metrics }

// Context returns ctx carrying the application's logger.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Registry returns the active registry, or nil before a successful Load.
// Callers should read it once per unit of work.
func (a *App) Registry() *catalog.Registry {
	return a.registry.Load()
}

// Load reads the configured catalog and makes it active.
func (a *App) Load(ctx context.Context) error {
	ctx = a.Context(ctx)
	reg, err := loader.Load(ctx, a.config.Catalog)
	if err != nil {
		return err
	}
	a.activate(reg)
	a.logger.Debug("Catalog ready.",
		"source", loader.Describe(a.config.Catalog),
		"modules", len(reg.ListModules()),
		"capabilities", reg.Len())
	return nil
}

// Reload rebuilds the registry from the configured catalog and swaps it in.
// On failure the active registry stays in place and the error is returned.
func (a *App) Reload(ctx context.Context) error {
	ctx = a.Context(ctx)
	reg, err := loader.Load(ctx, a.config.Catalog)
	if err != nil {
		a.metrics.ObserveReload(false)
		a.logger.Error("Catalog reload failed; keeping the previous catalog.",
			"source", loader.Describe(a.config.Catalog),
			"error", err)
		return err
	}
	a.activate(reg)
	a.metrics.ObserveReload(true)
	a.logger.Info("Catalog reloaded.",
		"modules", len(reg.ListModules()),
		"capabilities", reg.Len())
	return nil
}

func (a *App) activate(reg *catalog.Registry) {
	a.registry.Store(reg)
	a.metrics.SetCatalogSize(len(reg.ListModules()), reg.Len())
}
