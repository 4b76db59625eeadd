/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the refund engine server. Handles configuration,
  dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env/environment configuration, apply command-line flags
  2. Open the SQLite store
  3. Build the policy table (defaults + optional override file)
  4. Wire the engine and HTTP router
  5. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -db      SQLite database path (overrides REFUND_DB_PATH; ":memory:" works)
  -seed    Load demo packages and bookings on startup

ENVIRONMENT:
  PORT, REFUND_DB_PATH, LOG_LEVEL, REFUND_CURRENCY, REFUND_POLICY_FILE.
  A local .env file is honored in development.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for active
  requests, close the database, exit.
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tripline/refund-engine/api"
	"github.com/tripline/refund-engine/config"
	"github.com/tripline/refund-engine/refund"
	"github.com/tripline/refund-engine/store/sqlite"
)

func main() {
	cfg := config.Load()

	port := flag.String("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	seed := flag.Bool("seed", false, "load demo packages and bookings")
	flag.Parse()

	log := newLogger(cfg.LogLevel)
	defer log.Sync()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	table, err := cfg.PolicyTable()
	if err != nil {
		log.Fatal("failed to build policy table", zap.Error(err))
	}

	engine := refund.NewEngine(store, store, table, log)
	engine.Currency = cfg.Currency

	if *seed {
		if err := api.SeedDemoData(context.Background(), store); err != nil {
			log.Fatal("failed to seed demo data", zap.Error(err))
		}
		log.Info("demo data loaded")
	}

	handler := api.NewHandler(engine, store, log)
	router := api.NewRouter(handler, log)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", server.Addr), zap.String("db", *dbPath))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

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

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return log
}
