package config

import (
	"os"
	"strconv"
	"strings"
)

// FromEnv overlays HTTPMQ_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("HTTPMQ_MAXQUEUE"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.MaxQueue = n
		}
	}
	if v := os.Getenv("HTTPMQ_QUEUE_NAME_MAX_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueueNameMaxBytes = n
		}
	}
	if v := os.Getenv("HTTPMQ_PAYLOAD_MAX_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PayloadMaxBytes = n
		}
	}
	if v := os.Getenv("HTTPMQ_COMPACTION_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Compaction.Enabled = b
		}
	}
	if v := os.Getenv("HTTPMQ_COMPACTION_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Compaction.IntervalMs = n
		}
	}
	if v := os.Getenv("HTTPMQ_COMPACTION_BATCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Compaction.BatchLimit = n
		}
	}
	if v := os.Getenv("HTTPMQ_HTTP_REQUEST_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RequestTimeoutMs = n
		}
	}
	if v := os.Getenv("HTTPMQ_HTTP_CONCURRENCY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.ConcurrencyLimit = n
		}
	}
	if v := os.Getenv("HTTPMQ_HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = nil
		for _, p := range strings.Split(v, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				cfg.HTTP.AllowedOrigins = append(cfg.HTTP.AllowedOrigins, p)
			}
		}
	}
	if v := os.Getenv("HTTPMQ_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HTTPMQ_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}
