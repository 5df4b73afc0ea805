// Package config provides loading and environment overlay for httpmq server
// configuration. It exposes a Default() baseline that files (JSON or YAML),
// HTTPMQ_* variables and finally command-line flags are layered on.
//
// Example:
//
//	cfg, err := config.Load("/etc/httpmq.yaml")
//	if err != nil {
//	    return err
//	}
//	config.FromEnv(&cfg)
//	rt, err := runtime.Open(runtime.Options{DataDir: config.DefaultDataDir(), Config: cfg})
package config
