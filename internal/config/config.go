package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sigs.k8s.io/yaml"

	logpkg "github.com/rzbill/httpmq/pkg/log"
)

// DefaultMaxQueue is the per-queue depth limit when nothing else is configured.
const DefaultMaxQueue = 100000000

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// MaxQueue is the default max depth and the ceiling for per-queue overrides.
	MaxQueue          uint64        `json:"maxQueue"`
	QueueNameMaxBytes int           `json:"queueNameMaxBytes"`
	PayloadMaxBytes   int           `json:"payloadMaxBytes"`
	Compaction        Compaction    `json:"compaction"`
	HTTP              HTTP          `json:"http"`
	Log               logpkg.Config `json:"log"`
}

// Compaction controls the background removal of delivered items.
type Compaction struct {
	Enabled    bool `json:"enabled"`
	IntervalMs int  `json:"intervalMs"`
	BatchLimit int  `json:"batchLimit"`
	ThrottleMs int  `json:"throttleMs"`
}

// HTTP captures limits applied by the HTTP server middleware.
type HTTP struct {
	RequestTimeoutMs int      `json:"requestTimeoutMs"`
	ConcurrencyLimit int      `json:"concurrencyLimit"`
	AllowedOrigins   []string `json:"allowedOrigins,omitempty"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		MaxQueue:          DefaultMaxQueue,
		QueueNameMaxBytes: 256,
		PayloadMaxBytes:   1 << 20,
		Compaction: Compaction{
			Enabled:    true,
			IntervalMs: 30000,
			BatchLimit: 1024,
		},
		HTTP: HTTP{
			RequestTimeoutMs: 10000,
			ConcurrencyLimit: 1024,
			AllowedOrigins:   []string{"*"},
		},
		Log: logpkg.Config{Level: "info", Format: "text"},
	}
}

// Load reads configuration from a JSON or YAML file (by extension) on top of
// the defaults. If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be served.
func (c Config) Validate() error {
	switch {
	case c.QueueNameMaxBytes <= 0:
		return errors.New("queueNameMaxBytes must be positive")
	case c.PayloadMaxBytes <= 0:
		return errors.New("payloadMaxBytes must be positive")
	case c.Compaction.Enabled && c.Compaction.IntervalMs <= 0:
		return errors.New("compaction.intervalMs must be positive when compaction is enabled")
	case c.HTTP.RequestTimeoutMs < 0:
		return errors.New("http.requestTimeoutMs must not be negative")
	case c.HTTP.ConcurrencyLimit < 0:
		return errors.New("http.concurrencyLimit must not be negative")
	}
	if _, err := logpkg.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// CompactionInterval returns the sweep interval as a duration.
func (c Config) CompactionInterval() time.Duration {
	return time.Duration(c.Compaction.IntervalMs) * time.Millisecond
}

// RequestTimeout returns the HTTP request timeout; zero disables it.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTP.RequestTimeoutMs) * time.Millisecond
}
