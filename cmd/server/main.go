/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the drug pricing simulator API server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (file, then environment, then flags)
  2. Initialize SQLite run store (unless persistence is off)
  3. Start the run retention scheduler
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML configuration file (optional)
  -port    HTTP server port (default: 5000)
  -db      SQLite database path (default: pricing.db)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  PORT          HTTP server port
  DB_PATH       SQLite database path
  FRONTEND_URL  Allowed CORS origin(s), comma separated
                (default: http://localhost:3000)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (shutdown_timeout)
  3. Stop the retention scheduler
  4. Close database connection

EXAMPLES:
  # Run with file database
  ./server -db="./data/pricing.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on different port
  PORT=8080 ./server

SEE ALSO:
  - config/config.go: Configuration defaults and validation
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

	"github.com/warp/pricing-engine/api"
	"github.com/warp/pricing-engine/config"
	"github.com/warp/pricing-engine/store"
	"github.com/warp/pricing-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "YAML configuration file")
	port := flag.Int("port", 0, "HTTP server port (overrides config and PORT)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config and DB_PATH)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg, err = cfg.ApplyEnv(os.LookupEnv); err != nil {
		log.Fatalf("Failed to read environment: %v", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize store
	var runs store.RunStore
	if cfg.PersistRuns {
		st, err := sqlite.New(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer st.Close()
		runs = st
	} else {
		log.Println("Run history disabled")
	}

	retention := api.NewRetentionScheduler(runs, cfg.MaxRuns, cfg.PruneInterval)
	retention.Start()
	defer retention.Stop()

	// Initialize handler and router
	handler := api.NewHandler(runs)
	router := api.NewRouter(handler, cfg.AllowedOrigins)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", cfg.Port)
		log.Printf("API available at http://localhost:%d/api (origins: %v)", cfg.Port, cfg.AllowedOrigins)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		return
	}

	log.Println("Server stopped")
}
