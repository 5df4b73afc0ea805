package serverrun

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	cfgpkg "github.com/rzbill/httpmq/internal/config"
	"github.com/rzbill/httpmq/internal/runtime"
	grpcserver "github.com/rzbill/httpmq/internal/server/grpc"
	httpserver "github.com/rzbill/httpmq/internal/server/http"
	pebblestore "github.com/rzbill/httpmq/internal/storage/pebble"
	logpkg "github.com/rzbill/httpmq/pkg/log"
)

// Options configures Run.
type Options struct {
	DataDir string
	// InMemory runs on a throwaway in-memory store; DataDir is ignored.
	InMemory      bool
	HTTPAddr      string
	GRPCAddr      string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	// Logger overrides the logger built from Config.Log.
	Logger logpkg.Logger
	// Ready is called once both listeners are bound.
	Ready func(httpAddr, grpcAddr net.Addr)
}

// Run opens the runtime and serves HTTP and gRPC until ctx is cancelled or
// SIGINT/SIGTERM arrives. Listener errors stop both servers.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := opts.Config.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		l, err := logpkg.ApplyConfig(&opts.Config.Log)
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		logger = l
	}
	logpkg.RedirectStdLog(logger)

	storeDir := ""
	if !opts.InMemory {
		if opts.DataDir == "" {
			opts.DataDir = cfgpkg.DefaultDataDir()
		}
		storeDir = filepath.Join(opts.DataDir, "store")
		if err := os.MkdirAll(storeDir, 0o755); err != nil {
			return fmt.Errorf("data dir: %w", err)
		}
	}

	rt, err := runtime.Open(runtime.Options{
		DataDir:       storeDir,
		InMemory:      opts.InMemory,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Config:        opts.Config,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			logger.Error("close runtime", logpkg.Err(cerr))
		}
	}()
	rt.Start()

	hl, err := net.Listen("tcp", opts.HTTPAddr)
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}
	gl, err := net.Listen("tcp", opts.GRPCAddr)
	if err != nil {
		_ = hl.Close()
		return fmt.Errorf("grpc listen: %w", err)
	}

	logger.Info("starting httpmq",
		logpkg.Str("http", hl.Addr().String()),
		logpkg.Str("grpc", gl.Addr().String()),
		logpkg.Str("data_dir", storeDir),
		logpkg.Uint64("maxqueue", opts.Config.MaxQueue),
		logpkg.Str("level", opts.Config.Log.Level),
		logpkg.Str("format", opts.Config.Log.Format),
	)

	hsrv := httpserver.New(rt, logger)
	gsrv := grpcserver.New(rt, logger)
	if opts.Ready != nil {
		opts.Ready(hl.Addr(), gl.Addr())
	}

	g, gctx := errgroup.WithContext(sctx)
	g.Go(func() error {
		if err := hsrv.Serve(gctx, hl); err != nil {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := gsrv.Serve(gctx, gl); err != nil {
			return fmt.Errorf("grpc: %w", err)
		}
		return nil
	})

	err = g.Wait()
	logger.Info("httpmq stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
