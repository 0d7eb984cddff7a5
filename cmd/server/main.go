package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"finlog/internal/api"
	"finlog/internal/config"
	"finlog/internal/logging"
	"finlog/pkg/finlog"
)

var getppid = os.Getppid
var sleep = time.Sleep
var exit = os.Exit

type serverFlags struct {
	dataDir  string
	dbPath   string
	timezone string
	host     string
	port     int
}

func parseFlags(args []string) (serverFlags, error) {
	var f serverFlags
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&f.dataDir, "data-dir", "", "Directory for storing database and application data")
	fs.StringVar(&f.dbPath, "db", "", "SQLite database path (overrides the data dir)")
	fs.StringVar(&f.timezone, "timezone", "", "IANA zone used for calendar dates")
	fs.IntVar(&f.port, "port", 8000, "Port to run the server on")
	fs.StringVar(&f.host, "host", "127.0.0.1", "Host to bind the server to")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	return f, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	if err := run(ctx, os.Args[1:], nil); err != nil {
		slog.Error("server failed", "err", err)
		exit(1)
	}
}

// run serves until ctx is done. ready, when non-nil, receives the bound address.
func run(ctx context.Context, args []string, ready chan<- string) error {
	flags, err := parseFlags(args)
	if err != nil {
		return err
	}
	if _, err := config.LoadEnv(""); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	if flags.dataDir != "" {
		config.SetRuntimeDataDir(flags.dataDir)
	}
	config.SetRuntimePort(flags.port)

	dataDir, err := config.GetDataDir()
	if err != nil {
		return fmt.Errorf("resolve data directory: %w", err)
	}
	envFiles, err := config.LoadEnv(dataDir)
	if err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	logger, writer, err := logging.NewLogger(logging.Options{Dir: filepath.Join(dataDir, "logs"), SetDefault: true})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("failed to close log writer", "err", err)
		}
	}()
	if len(envFiles) > 0 {
		logger.Info("loaded env files", "files", envFiles)
	}

	dbPath := flags.dbPath
	if dbPath == "" {
		if dbPath, err = config.GetDBPath(); err != nil {
			return fmt.Errorf("resolve db path: %w", err)
		}
	}

	loc, zone, ok := config.GetTimezone()
	if flags.timezone != "" {
		zone = flags.timezone
		if loc, err = time.LoadLocation(zone); err != nil {
			loc, ok = time.UTC, false
		} else {
			ok = true
		}
	}
	if !ok {
		logger.Warn("unknown timezone, using UTC", "timezone", zone)
	}

	core, err := finlog.OpenWithOptions(finlog.Options{DBPath: dbPath, Logger: logger, Location: loc})
	if err != nil {
		return fmt.Errorf("initialize core: %w", err)
	}
	defer func() {
		if err := core.Close(); err != nil {
			logger.Error("failed to close core", "err", err)
		}
	}()

	if os.Getenv("FINLOG_PARENT_WATCH") == "1" {
		go watchParent(logger)
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(flags.host, fmt.Sprint(flags.port)))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	server := &http.Server{
		Handler:           middleware.Compress(5)(api.NewRouter(core)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	addr := listener.Addr().String()
	logger.Info("server starting", "addr", addr, "db", dbPath, "timezone", loc.String())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()
	if ready != nil {
		ready <- addr
	}

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}
	return nil
}

func watchParent(logger *slog.Logger) {
	for {
		sleep(1 * time.Second)
		if getppid() == 1 {
			logger.Info("parent process exited; shutting down")
			exit(0)
		}
	}
}
