package app

import (
	"context"
	"fmt"
	"net"

	"github.com/vk/rustdex/internal/bus"
	"github.com/vk/rustdex/internal/loader"
	"github.com/vk/rustdex/internal/relay"
	"github.com/vk/rustdex/internal/server"
	"golang.org/x/sync/errgroup"
)

// Serve loads the catalog when needed and runs the HTTP API, plus the relay,
// the NATS responder and the catalog watcher when configured, until ctx is
// cancelled or one of them fails.
func (a *App) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.config.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.config.Server.Addr, err)
	}
	return a.serve(ctx, ln)
}

func (a *App) serve(ctx context.Context, ln net.Listener) error {
	ctx = a.Context(ctx)
	if a.Registry() == nil {
		if err := a.Load(ctx); err != nil {
			ln.Close()
			return err
		}
	}

	reg := a.Registry()
	a.logger.Info("Serving catalog.",
		"source", loader.Describe(a.config.Catalog),
		"modules", len(reg.ListModules()),
		"capabilities", reg.Len())

	watcher, err := a.newWatcher()
	if err != nil {
		ln.Close()
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	srv := server.New(a, a.metrics, a.logger)
	g.Go(func() error { return srv.Serve(ctx, ln) })

	if cfg := a.config.Relay; cfg.URL != "" {
		r := relay.New(relay.Config{
			URL:                cfg.URL,
			Namespace:          cfg.Namespace,
			Event:              cfg.Event,
			ReplyEvent:         cfg.ReplyEvent,
			Timeout:            cfg.Timeout.Duration,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		}, a, a.metrics)
		g.Go(func() error { return r.Run(ctx) })
	} else {
		a.logger.Debug("Relay disabled: no URL configured.")
	}

	if cfg := a.config.NATS; cfg.URL != "" {
		b := bus.New(bus.Config{URL: cfg.URL, Subject: cfg.Subject, Queue: cfg.Queue}, a, a.metrics)
		g.Go(func() error { return b.Run(ctx) })
	} else {
		a.logger.Debug("NATS responder disabled: no URL configured.")
	}

	if watcher != nil {
		g.Go(func() error {
			// Reload logs and counts its own failures.
			return watcher.Run(ctx, func(ctx context.Context) { _ = a.Reload(ctx) })
		})
	}

	return g.Wait()
}

// newWatcher returns nil when watching is off or there is nothing to watch.
func (a *App) newWatcher() (*loader.Watcher, error) {
	if !a.config.Server.Watch {
		return nil, nil
	}
	if a.config.Catalog == "" {
		a.logger.Warn("Catalog watch requested but the embedded catalog is in use; nothing to watch.")
		return nil, nil
	}
	w, err := loader.NewWatcher(a.config.Catalog, a.config.Server.Debounce.Duration)
	if err != nil {
		return nil, fmt.Errorf("failed to start catalog watcher: %w", err)
	}
	return w, nil
}
