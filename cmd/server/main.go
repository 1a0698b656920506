/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the profile review server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (YAML file + flag overrides)
  2. Build the structured logger
  3. Open the configured store (sqlite, postgres or memory)
  4. Create API handler and router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config     YAML config file (optional)
  -port       HTTP server port (default: 8080)
  -driver     Storage driver: sqlite, postgres, memory (default: sqlite)
  -db         SQLite database path, or PostgreSQL URL with -driver=postgres
              Use ":memory:" for an in-memory SQLite database
  -log-level  debug, info, warn, error (default: info)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (server.shutdown_timeout)
  3. Close the store
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/review.db"

  # Run against PostgreSQL
  ./server -driver=postgres -db="postgres://review@localhost/review"

  # Run with a config file, overriding the port
  ./server -config=review.yaml -port=3000

SEE ALSO:
  - config/config.go: Configuration schema and defaults
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/profile-review/api"
	"github.com/warp/profile-review/config"
	"github.com/warp/profile-review/store"
	"github.com/warp/profile-review/store/memory"
	"github.com/warp/profile-review/store/postgres"
	"github.com/warp/profile-review/store/sqlite"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	logger := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	s, err := openStore(context.Background(), cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize %s store: %w", cfg.Database.Driver, err)
	}
	defer s.Close()

	handler := api.NewHandler(s, api.Options{
		Logger:            logger,
		WarmConcurrency:   cfg.Review.WarmConcurrency,
		LongTextThreshold: cfg.Review.LongTextThreshold,
	})
	router := api.NewRouter(handler, cfg.Server.CORSOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr, "driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		logger.Info("shutting down server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func openStore(ctx context.Context, db config.DatabaseConfig) (store.Store, error) {
	switch db.Driver {
	case config.DriverPostgres:
		return postgres.New(ctx, db.URL)
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return sqlite.New(db.Path)
	}
}
