package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/studygraph/studygraph/internal/server/api"
	"github.com/studygraph/studygraph/internal/server/config"
	"github.com/studygraph/studygraph/internal/server/graph"
	"github.com/studygraph/studygraph/internal/server/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "building logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	collector := metrics.NewCollector("studygraph")

	service, err := newService(ctx, cfg, logger, collector)
	if err != nil {
		logger.Fatal("opening graph store", zap.Error(err))
	}
	defer service.Close(ctx)

	handler := api.NewHandler(service, logger, collector)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("backend", cfg.Backend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Development() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newService opens the configured backend. Both return the same Service
// surface, so everything past this point is backend-agnostic.
func newService(ctx context.Context, cfg *config.Config, logger *zap.Logger, collector *metrics.Collector) (graph.Service, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return graph.NewSQLite(ctx, cfg.SQLite.Path, logger, collector)
	default:
		store, err := graph.Connect(ctx, graph.StoreConfig{
			URI:      cfg.Neo4j.URI,
			Username: cfg.Neo4j.Username,
			Password: cfg.Neo4j.Password,
			Database: cfg.Neo4j.Database,
			Timeout:  cfg.QueryTimeout,
		}, logger, collector)
		if err != nil {
			return nil, err
		}
		return graph.NewRetriever(store, logger), nil
	}
}
