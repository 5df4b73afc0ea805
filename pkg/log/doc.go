// Package log provides httpmq's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. Internally it is backed by log/slog via
// a handler that writes through a Formatter and one or more Outputs.
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("server"), log.Queue("orders"))
//	l.Info("queue put", log.Uint64("pos", 3))
//
// # Configuration
//
// ApplyConfig builds a logger from a declarative Config (level, text or json
// format, console/file/null outputs, field redaction and sampling).
//
// # Interop
//
// RedirectStdLog routes the standard library logger, which Pebble and
// net/http use by default, into a Logger. ToStdLogger produces a *log.Logger
// for APIs such as http.Server.ErrorLog.
package log
