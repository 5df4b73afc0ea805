package log

import (
	"fmt"
	"log/slog"
	"strings"
)

// Config declares how to build a logger.
type Config struct {
	Level   string         `json:"level"`
	Format  string         `json:"format"`
	Outputs []OutputConfig `json:"outputs,omitempty"`
	// Redact lists field keys whose values are replaced with [REDACTED].
	Redact []string `json:"redact,omitempty"`
	// SampleInitial and SampleThereafter enable per-message sampling when
	// SampleThereafter > 0.
	SampleInitial    int `json:"sampleInitial,omitempty"`
	SampleThereafter int `json:"sampleThereafter,omitempty"`
}

// OutputConfig selects one output. Type is console, file or null.
type OutputConfig struct {
	Type string `json:"type"`
	Path string `json:"path,omitempty"`
}

// ParseLevel maps a level name to a Level. Matching is case-insensitive.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// ApplyConfig builds a Logger from cfg. A nil cfg yields an info-level text
// logger on stderr.
func ApplyConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var formatter Formatter
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		formatter = &TextFormatter{}
	case "json":
		formatter = &JSONFormatter{}
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	opts := []LoggerOption{WithLevel(level), WithFormatter(formatter)}
	for _, oc := range cfg.Outputs {
		switch strings.ToLower(oc.Type) {
		case "", "console":
			opts = append(opts, WithOutput(NewConsoleOutput()))
		case "file":
			fo, err := NewFileOutput(oc.Path)
			if err != nil {
				return nil, fmt.Errorf("log file output: %w", err)
			}
			opts = append(opts, WithOutput(fo))
		case "null":
			opts = append(opts, WithOutput(NullOutput{}))
		default:
			return nil, fmt.Errorf("unknown log output %q", oc.Type)
		}
	}

	logger := NewLogger(opts...).(*BaseLogger)
	if len(cfg.Redact) > 0 || cfg.SampleThereafter > 0 {
		h := logger.handler().withRedactions(cfg.Redact).withSampler(cfg.SampleInitial, cfg.SampleThereafter)
		logger.slogLogger = slog.New(h)
	}
	return logger, nil
}
