package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/adfharrison1/go-tripdb/pkg/config"
	"github.com/adfharrison1/go-tripdb/pkg/logger"
	"github.com/adfharrison1/go-tripdb/pkg/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Command line flags
	var (
		configFile = flag.String("config", "", "YAML configuration file")
		port       = flag.Int("port", 0, "Server port (overrides config)")
		dataDir    = flag.String("data-dir", "", "Data directory for file storage (overrides config)")
		mode       = flag.String("storage", "", "Local storage mode: file or memory (overrides config)")
		remoteDSN  = flag.String("remote-dsn", "", "Postgres DSN for the remote backend (overrides config)")
		noSeed     = flag.Bool("no-seed", false, "Do not seed empty collections")
		showHelp   = flag.Bool("help", false, "Show help message")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\ntripdb serves hotels, bookings and travel data over HTTP, persisting to Postgres\n")
		fmt.Fprintf(os.Stderr, "when it is reachable and to local .godb files otherwise.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                         # Start with defaults\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -port 9090 -data-dir /tmp/tripdb         # Custom port and data directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -storage memory -no-seed                 # Throwaway in-memory instance\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -remote-dsn postgres://user@db/tripdb    # Prefer a Postgres backend\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  TRIPDB_PORT, TRIPDB_STORAGE, TRIPDB_DATA_DIR, TRIPDB_REMOTE_DSN, LOGGING_LEVEL, ...\n")
		fmt.Fprintf(os.Stderr, "  Flags take precedence over the environment, which takes precedence over -config.\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dataDir != "" {
		cfg.Storage.DataDir = *dataDir
	}
	if *mode != "" {
		cfg.Storage.Mode = *mode
	}
	if *remoteDSN != "" {
		cfg.Remote.DSN = *remoteDSN
	}
	if *noSeed {
		cfg.Seed.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	_, syncLogger := logger.Init(cfg.Logging.Level, logger.ParseFormat(cfg.Logging.Format))
	defer syncLogger()

	if err := run(cfg); err != nil {
		zap.S().Errorf("Server failed: %v", err)
		syncLogger()
		os.Exit(1)
	}
	zap.S().Infof("Server exited")
}

func run(cfg config.Config) error {
	ctx := context.Background()

	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer srv.Close()

	httpServer := &http.Server{
		Addr:    cfg.Addr(),
		Handler: srv.Router(),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		zap.S().Infof("Starting tripdb server on %s (%s backend)", cfg.Addr(), srv.Backend())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		// Wait for interrupt signal, or a listener failure, before shutting down
		select {
		case sig := <-quit:
			zap.S().Infof("Received %s, shutting down server...", sig)
		case <-groupCtx.Done():
		}

		// Give outstanding requests a deadline for completion
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return group.Wait()
}
