// Package bus answers capability lookups over NATS request/reply.
//
// Requests carry a query as accepted by lookup.DecodeQuery; the reply body
// is the JSON-encoded lookup.Reply. Responders join a queue group, so any
// number of instances can share a subject.
package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/vk/rustdex/internal/catalog"
	"github.com/vk/rustdex/internal/ctxlog"
	"github.com/vk/rustdex/internal/lookup"
	"github.com/vk/rustdex/internal/metrics"
)

const (
	DefaultSubject = "rustdex.lookup"
	DefaultQueue   = "rustdex"
)

// Config describes the NATS connection and subscription.
type Config struct {
	URL     string
	Subject string
	Queue   string
}

// Source supplies the registry to answer from.
type Source interface {
	Registry() *catalog.Registry
}

// Responder serves lookups on a NATS subject.
type Responder struct {
	cfg     Config
	src     Source
	metrics *metrics.Metrics
}

// New returns a Responder. Connecting is deferred to Run.
func New(cfg Config, src Source, m *metrics.Metrics) *Responder {
	if cfg.Subject == "" {
		cfg.Subject = DefaultSubject
	}
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}
	return &Responder{cfg: cfg, src: src, metrics: m}
}

// Run connects to the configured server and serves until ctx is cancelled.
func (r *Responder) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("component", "bus", "url", r.cfg.URL)
	logger.Info("Connecting to NATS...")

	nc, err := nats.Connect(r.cfg.URL,
		nats.Name("rustdex"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected.", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected.", "server", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	return r.Serve(ctx, nc)
}

// Serve answers requests on nc until ctx is cancelled, then drains nc.
func (r *Responder) Serve(ctx context.Context, nc *nats.Conn) error {
	ctx, logger := ctxlog.With(ctx, "component", "bus", "subject", r.cfg.Subject)

	_, err := nc.QueueSubscribe(r.cfg.Subject, r.cfg.Queue, func(msg *nats.Msg) {
		reply := r.Handle(msg.Data)
		if err := msg.Respond(reply); err != nil {
			logger.Warn("Failed to respond to lookup.", "error", err)
		}
	})
	if err != nil {
		nc.Close()
		return fmt.Errorf("subscribe to %s: %w", r.cfg.Subject, err)
	}
	if err := nc.Flush(); err != nil {
		nc.Close()
		return fmt.Errorf("flush subscription: %w", err)
	}
	logger.Info("NATS responder listening.", "queue", r.cfg.Queue)

	<-ctx.Done()

	logger.Info("Draining NATS responder...")
	if err := nc.Drain(); err != nil {
		return fmt.Errorf("drain NATS connection: %w", err)
	}
	return nil
}

// Handle answers one request body.
func (r *Responder) Handle(payload []byte) []byte {
	var reply lookup.Reply
	q, err := lookup.DecodeQuery(payload)
	if err != nil {
		reply = lookup.Reply{Status: lookup.StatusInvalid, Error: err.Error()}
	} else {
		reply = lookup.Answer(r.src.Registry(), q)
	}
	r.metrics.ObserveLookup(metrics.TransportNATS, string(reply.Status))
	return reply.Encode()
}
