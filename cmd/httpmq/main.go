package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	clientcmd "github.com/rzbill/httpmq/internal/cmd/client"
	serverrun "github.com/rzbill/httpmq/internal/cmd/server"
	cfgpkg "github.com/rzbill/httpmq/internal/config"
	pebblestore "github.com/rzbill/httpmq/internal/storage/pebble"
)

// fsyncFlag parses --fsync into a pebblestore.FsyncMode.
type fsyncFlag struct {
	raw  string
	mode pebblestore.FsyncMode
}

var _ pflag.Value = (*fsyncFlag)(nil)

func (f *fsyncFlag) String() string { return f.raw }
func (f *fsyncFlag) Type() string   { return "mode" }

func (f *fsyncFlag) Set(s string) error {
	m, err := pebblestore.ParseFsyncMode(s)
	if err != nil {
		return err
	}
	f.raw, f.mode = s, m
	return nil
}

func main() {
	rootCmd := clientcmd.NewRoot()
	rootCmd.Long = "httpmq is a single-binary, disk-backed message queue served over an HTTP text protocol, a JSON API and gRPC."
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverCmd.AddCommand(newServerStartCommand())
	rootCmd.AddCommand(serverCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newServerStartCommand() *cobra.Command {
	fsync := &fsyncFlag{raw: "always", mode: pebblestore.FsyncModeAlways}

	startCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start httpmq server (HTTP and gRPC)",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			configPath, _ := flags.GetString("config")
			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfgpkg.FromEnv(&cfg)
			applyFlagOverrides(flags, &cfg)

			dataDir, _ := flags.GetString("data-dir")
			inMemory, _ := flags.GetBool("in-memory")
			httpAddr, _ := flags.GetString("http")
			grpcAddr, _ := flags.GetString("grpc")
			intervalMs, _ := flags.GetInt("fsync-interval-ms")

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			if err := serverrun.Run(ctx, serverrun.Options{
				DataDir:       dataDir,
				InMemory:      inMemory,
				HTTPAddr:      httpAddr,
				GRPCAddr:      grpcAddr,
				Fsync:         fsync.mode,
				FsyncInterval: time.Duration(intervalMs) * time.Millisecond,
				Config:        cfg,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}

	f := startCmd.Flags()
	f.String("config", os.Getenv("HTTPMQ_CONFIG"), "Config file (.json, .yaml or .yml)")
	f.String("data-dir", os.Getenv("HTTPMQ_DATA_DIR"), "Data directory (if not specified, uses an OS-specific application data directory)")
	f.Bool("in-memory", false, "Keep all data in memory (nothing survives a restart)")
	f.String("http", envOr("HTTPMQ_HTTP", ":1218"), "HTTP listen address")
	f.String("grpc", envOr("HTTPMQ_GRPC_LISTEN", ":50051"), "gRPC listen address")
	f.Var(fsync, "fsync", "Fsync mode: always|interval|never")
	f.Int("fsync-interval-ms", 5, "When --fsync=interval, group-commit window in ms")
	f.Uint64("maxqueue", cfgpkg.DefaultMaxQueue, "Default max depth per queue and ceiling for maxqueue overrides")
	f.String("log-level", "", "Log level: debug|info|warn|error")
	f.String("log-format", "", "Log format: text|json")
	return startCmd
}

// applyFlagOverrides copies explicitly set flags over file and env values.
func applyFlagOverrides(flags *pflag.FlagSet, cfg *cfgpkg.Config) {
	if flags.Changed("maxqueue") {
		cfg.MaxQueue, _ = flags.GetUint64("maxqueue")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
