/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the inventory engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize the record store (sqlite, memory, or rest)
  3. Create API handler with dependencies
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port      HTTP server port (default: 8080)
  -store     Record store backend: sqlite | memory | rest (default: sqlite)
  -db        SQLite database path (default: inventory.db)
             Use ":memory:" for an in-memory database
  -base-url  Remote record-store base URL (required for -store=rest)
  -seed      Insert demo employees and items on startup

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/inventory.db" -seed

  # Run against a remote sheet-style store
  ./server -store=rest -base-url="https://records.example.com/v1"

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/inventory-engine/api"
	"github.com/warp/inventory-engine/inventory"
	memstore "github.com/warp/inventory-engine/inventory/store"
	"github.com/warp/inventory-engine/store/rest"
	"github.com/warp/inventory-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	backend := flag.String("store", "sqlite", "record store backend: sqlite | memory | rest")
	dbPath := flag.String("db", "inventory.db", "SQLite database path")
	baseURL := flag.String("base-url", "", "remote record-store base URL (for -store=rest)")
	seedData := flag.Bool("seed", false, "insert demo employees and items on startup")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Initialize store
	store, closer, err := newStore(*backend, *dbPath, *baseURL)
	if err != nil {
		log.Fatal("failed to initialize store", zap.Error(err))
	}
	if closer != nil {
		defer closer.Close()
	}

	if *seedData {
		if err := seed(context.Background(), store); err != nil {
			log.Warn("failed to seed demo data", zap.Error(err))
		}
	}

	// Initialize handler and router
	handler := api.NewHandler(store)
	router := api.NewRouter(handler, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server starting",
			zap.Int("port", *port),
			zap.String("store", *backend),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

func newStore(backend, dbPath, baseURL string) (inventory.Store, io.Closer, error) {
	switch backend {
	case "sqlite":
		st, err := sqlite.New(dbPath)
		if err != nil {
			return nil, nil, err
		}
		return st, st, nil
	case "memory":
		return memstore.NewMemory(), nil, nil
	case "rest":
		if baseURL == "" {
			return nil, nil, fmt.Errorf("-store=rest requires -base-url")
		}
		return rest.New(baseURL), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
