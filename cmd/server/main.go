/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the attendance engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load configuration (file + ATTENDANCE_* environment)
  3. Build the zap logger
  4. Initialize SQLite store
  5. Create API handler and router
  6. Start the recompute worker
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to the config file (optional; defaults and environment
           apply when absent)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the recompute worker
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with defaults (./data/attendance.db, port 8080)
  ./server

  # Run with an explicit config file
  ./server -config=./config/production.yaml

  # Override a single setting
  ATTENDANCE_SERVER_PORT=3000 ./server

SEE ALSO:
  - config/config.go: Configuration schema and loading
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/config"
	"github.com/warp/attendance-engine/pkg/logger"
	"github.com/warp/attendance-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	defaults, err := cfg.EngineDefaults()
	if err != nil {
		zlog.Fatal("invalid engine configuration", zap.Error(err))
	}

	// Initialize store
	db, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Handler and router
	handler := api.NewHandler(db, defaults, zlog)
	router := api.NewRouter(handler, cfg.Server.AllowOrigins)

	// Background premium cache refresh
	worker := api.NewRecomputeWorker(db, defaults, zlog)
	worker.Interval = cfg.Recompute.Interval
	worker.BatchSize = cfg.Recompute.BatchSize
	worker.Start()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zlog.Info("server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("db", cfg.Database.Path))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}
	worker.Stop()

	zlog.Info("server stopped")
}
