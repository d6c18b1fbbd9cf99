package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/sundsoffice-tech/messebau-pm/internal/api"
	"github.com/sundsoffice-tech/messebau-pm/internal/config"
	"github.com/sundsoffice-tech/messebau-pm/internal/middleware"
	"github.com/sundsoffice-tech/messebau-pm/internal/storage/sqlite"
	"github.com/sundsoffice-tech/messebau-pm/internal/web"
	"github.com/sundsoffice-tech/messebau-pm/pkg/logging"
)

const metricsPath = "/metrics"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize SQLite storage
	store, err := sqlite.NewContext(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	staticDir, err := filepath.Abs(cfg.StaticPath)
	if err != nil {
		return err
	}
	slog.Info("Serving static files", "path", staticDir)

	metrics := middleware.NewMetrics()

	mux := http.NewServeMux()
	mux.Handle("GET "+metricsPath, metrics.Handler())
	mux.Handle("GET /healthz", api.Health(store))
	mux.Handle("/", api.NewHandler(store, web.NewStatic(staticDir)))

	handler := middleware.Logging(metrics.Middleware(metricsPath)(middleware.CORS(mux)))

	srv := &http.Server{
		Addr: cfg.Addr(),
		// h2c serves HTTP/2 without TLS alongside HTTP/1.1
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", srv.Addr, "url", "http://localhost"+srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("Server stopped")
	return nil
}
