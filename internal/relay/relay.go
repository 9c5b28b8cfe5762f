// Package relay answers capability lookups posted to a socket.io chat
// server. It connects as a client, listens for a query event and emits the
// reply on a second event.
package relay

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/rustdex/internal/catalog"
	"github.com/vk/rustdex/internal/ctxlog"
	"github.com/vk/rustdex/internal/lookup"
	"github.com/vk/rustdex/internal/metrics"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Config describes the chat server connection.
type Config struct {
	URL                string
	Namespace          string
	Event              string
	ReplyEvent         string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Source supplies the registry to answer from.
type Source interface {
	Registry() *catalog.Registry
}

// Relay is a socket.io lookup bot.
type Relay struct {
	cfg     Config
	src     Source
	metrics *metrics.Metrics
}

// New returns a Relay. Connecting is deferred to Run.
func New(cfg Config, src Source, m *metrics.Metrics) *Relay {
	if cfg.Event == "" {
		cfg.Event = "lookup"
	}
	if cfg.ReplyEvent == "" {
		cfg.ReplyEvent = "lookup_result"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Relay{cfg: cfg, src: src, metrics: m}
}

// Run connects, answers queries until ctx is cancelled, then disconnects.
// An unreachable chat server is logged and retried, never returned.
func (r *Relay) Run(ctx context.Context) error {
	ctx, logger := ctxlog.With(ctx, "component", "relay", "url", r.cfg.URL)

	parsedURL, err := url.Parse(r.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to parse relay URL: %w", err)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if r.cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(r.cfg.Namespace, opts)

	// The manager reconnects on its own.
	connected := make(chan struct{}, 1)
	io.On(types.EventName("connect"), func(...any) {
		logger.Info("Relay connected.", "sid", io.Id())
		select {
		case connected <- struct{}{}:
		default:
		}
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		logger.Warn("Relay connection failed.", "error", fmt.Sprint(errs...))
	})
	io.On(types.EventName("disconnect"), func(reason ...any) {
		logger.Warn("Relay disconnected.", "reason", fmt.Sprint(reason...))
	})
	io.On(types.EventName(r.cfg.Event), func(data ...any) {
		reply := r.handle(data...)
		logger.Debug("Answering relay query.", "ref", reply.Query.Ref, "status", reply.Status)
		io.Emit(r.cfg.ReplyEvent, toWire(reply))
	})

	logger.Debug("Initiating relay connection...")
	io.Connect()

	select {
	case <-connected:
	case <-ctx.Done():
		io.Disconnect()
		return nil
	case <-time.After(r.cfg.Timeout):
		logger.Warn("Relay is not connected yet; retrying in the background.", "timeout", r.cfg.Timeout)
	}

	<-ctx.Done()
	logger.Info("Relay shutting down.")
	io.Disconnect()
	return nil
}

// handle turns one event payload into a reply. The first argument is the
// query: a reference string or an object with ref and module.
func (r *Relay) handle(data ...any) lookup.Reply {
	var reply lookup.Reply
	q, err := decodePayload(data)
	if err != nil {
		reply = lookup.Reply{Status: lookup.StatusInvalid, Error: err.Error()}
	} else {
		reply = lookup.Answer(r.src.Registry(), q)
	}
	r.metrics.ObserveLookup(metrics.TransportRelay, string(reply.Status))
	return reply
}

func decodePayload(data []any) (lookup.Query, error) {
	if len(data) == 0 {
		return lookup.Query{}, fmt.Errorf("event carried no query")
	}
	switch v := data[0].(type) {
	case string:
		return lookup.DecodeQuery([]byte(v))
	case []byte:
		return lookup.DecodeQuery(v)
	case map[string]any:
		raw, err := json.Marshal(v)
		if err != nil {
			return lookup.Query{}, fmt.Errorf("failed to read query object: %w", err)
		}
		return lookup.DecodeQuery(raw)
	default:
		return lookup.Query{}, fmt.Errorf("unsupported query payload of type %T", v)
	}
}

// toWire converts a reply into the plain map form the socket.io encoder
// sends as a JSON object.
func toWire(reply lookup.Reply) map[string]any {
	var out map[string]any
	if err := json.Unmarshal(reply.Encode(), &out); err != nil {
		panic(fmt.Sprintf("relay: reply did not round-trip: %v", err))
	}
	return out
}
