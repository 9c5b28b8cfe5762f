package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config is the complete service configuration.
type Config struct {
	// Catalog is a catalog file or directory. Empty means the bundled catalog.
	Catalog string       `toml:"catalog"`
	Log     LogConfig    `toml:"log"`
	Server  ServerConfig `toml:"server"`
	Relay   RelayConfig  `toml:"relay"`
	NATS    NATSConfig   `toml:"nats"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig configures the HTTP API and catalog hot reload.
type ServerConfig struct {
	Addr     string   `toml:"addr"`
	Watch    bool     `toml:"watch"`
	Debounce Duration `toml:"debounce"`
}

// RelayConfig configures the socket.io lookup bot. An empty URL disables it.
type RelayConfig struct {
	URL                string   `toml:"url"`
	Namespace          string   `toml:"namespace"`
	Event              string   `toml:"event"`
	ReplyEvent         string   `toml:"reply_event"`
	Timeout            Duration `toml:"timeout"`
	InsecureSkipVerify bool     `toml:"insecure_skip_verify"`
}

// NATSConfig configures the NATS lookup responder. An empty URL disables it.
type NATSConfig struct {
	URL     string `toml:"url"`
	Subject string `toml:"subject"`
	Queue   string `toml:"queue"`
}

// Duration is a time.Duration written as a string such as "500ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr:     ":8080",
			Debounce: Duration{500 * time.Millisecond},
		},
		Relay: RelayConfig{
			Namespace:  "/",
			Event:      "lookup",
			ReplyEvent: "lookup_result",
			Timeout:    Duration{15 * time.Second},
		},
		NATS: NATSConfig{
			Subject: "rustdex.lookup",
			Queue:   "rustdex",
		},
	}
}

var (
	logLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	logFormats = map[string]bool{"text": true, "json": true}
)

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if !logLevels[c.Log.Level] {
		return fmt.Errorf("log.level: invalid value %q (expected debug, info, warn or error)", c.Log.Level)
	}
	if !logFormats[c.Log.Format] {
		return fmt.Errorf("log.format: invalid value %q (expected text or json)", c.Log.Format)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr: must not be empty")
	}
	if c.Server.Debounce.Duration <= 0 {
		return fmt.Errorf("server.debounce: must be positive")
	}

	if c.Relay.URL != "" {
		u, err := url.Parse(c.Relay.URL)
		if err != nil {
			return fmt.Errorf("relay.url: %w", err)
		}
		switch u.Scheme {
		case "http", "https", "ws", "wss":
		default:
			return fmt.Errorf("relay.url: unsupported scheme %q", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("relay.url: missing host")
		}
		if c.Relay.Event == "" || c.Relay.ReplyEvent == "" {
			return fmt.Errorf("relay: event and reply_event must not be empty")
		}
		if c.Relay.Timeout.Duration <= 0 {
			return fmt.Errorf("relay.timeout: must be positive")
		}
	}

	if c.NATS.URL != "" {
		if c.NATS.Subject == "" {
			return fmt.Errorf("nats.subject: must not be empty")
		}
		if c.NATS.Queue == "" {
			return fmt.Errorf("nats.queue: must not be empty")
		}
	}
	return nil
}
