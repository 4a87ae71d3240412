package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/addonsmith/component"
	"github.com/c360studio/addonsmith/config"
	"github.com/c360studio/addonsmith/events"
	"github.com/c360studio/addonsmith/expand"
	"github.com/c360studio/addonsmith/metrics"
	"github.com/c360studio/addonsmith/storage"
	"github.com/c360studio/addonsmith/template"
)

// App holds the components shared by the subcommands.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	registry  *component.Registry
	expander  *expand.Expander
	templates *template.Registry
	metrics   *metrics.Metrics

	natsConn  *nats.Conn
	publisher *events.Publisher
	records   *storage.RecordStore
}

// NewApp discovers components and templates. NATS is not touched until
// Connect is called.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics.New(),
		publisher: events.NewPublisher(nil, cfg.NATS.SubjectPrefix),
	}

	a.registry = component.NewRegistry(cfg.Engine.Namespace,
		component.WithLogger(logger),
		component.WithRegisterHook(a.metrics.ComponentRegistered))

	providers := []component.Provider{component.Builtins()}
	for _, dir := range cfg.Plugins.Dirs {
		providers = append(providers, component.NewDirProvider(dir, cfg.Plugins.Patterns...))
	}
	if err := a.registry.Discover(providers...); err != nil {
		return nil, fmt.Errorf("discover components: %w", err)
	}
	logger.Debug("Components registered", "count", a.registry.Len(), "namespace", a.registry.Namespace())

	policy, err := expand.ParseConflictPolicy(cfg.Engine.OnConflict)
	if err != nil {
		return nil, err
	}
	a.expander = expand.New(a.registry,
		expand.WithMaxPasses(cfg.Engine.MaxPasses),
		expand.WithConflictPolicy(policy),
		expand.WithObserver(a.metrics.Expanded),
		expand.WithLogger(logger))

	a.templates, err = template.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("load builtin templates: %w", err)
	}
	for _, dir := range cfg.Templates.Dirs {
		if err := a.templates.LoadDir(dir); err != nil {
			return nil, fmt.Errorf("load templates from %s: %w", dir, err)
		}
	}

	return a, nil
}

// natsURL returns the server to publish to. Environment variables take
// precedence over the config file.
func (a *App) natsURL() string {
	if envURL := os.Getenv("NATS_URL"); envURL != "" {
		return envURL
	}
	if envURL := os.Getenv("ADDONSMITH_NATS_URL"); envURL != "" {
		return envURL
	}
	return a.cfg.NATS.URL
}

// Connect enables event publishing and build records when a NATS server is
// configured. A build still works without NATS, so connection failures
// are logged and publishing stays disabled.
func (a *App) Connect(ctx context.Context) {
	url := a.natsURL()
	if url == "" {
		return
	}

	a.logger.Info("Connecting to NATS", "url", url)
	conn, err := events.Connect(url)
	if err != nil {
		a.logger.Warn("Build events disabled", "error", wrapNATSError(err, url))
		return
	}
	a.natsConn = conn
	a.publisher = events.NewPublisher(conn, a.cfg.NATS.SubjectPrefix)
	a.logger.Info("Connected to NATS", "url", url)

	if !a.cfg.NATS.Records {
		return
	}
	js, err := jetstream.New(conn)
	if err != nil {
		a.logger.Warn("Build records disabled", "error", err)
		return
	}
	records, err := storage.NewRecordStore(ctx, js)
	if err != nil {
		a.logger.Warn("Build records disabled", "error", err)
		return
	}
	a.records = records
}

// Close flushes pending events and closes the NATS connection.
func (a *App) Close() {
	if a.natsConn == nil {
		return
	}
	if err := a.natsConn.Flush(); err != nil {
		a.logger.Warn("Failed to flush build events", "error", err)
	}
	a.natsConn.Close()
}

// serveMetrics exposes /metrics until ctx is done. It is a no-op when no
// address is configured.
func (a *App) serveMetrics(ctx context.Context) {
	if a.cfg.Metrics.Addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	srv := &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("Serving metrics", "addr", a.cfg.Metrics.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Metrics server failed", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

// wrapNATSError provides helpful guidance when NATS connection fails.
func wrapNATSError(err error, url string) error {
	errStr := err.Error()

	// Check for common connection errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no servers available") ||
		strings.Contains(errStr, "timeout") {
		return fmt.Errorf(`NATS connection failed: %w

NATS is not running at %s.

To start NATS:
  docker run -p 4222:4222 nats -js

Or set NATS_URL environment variable to point to your NATS server.`, err, url)
	}

	return fmt.Errorf("NATS connection failed: %w", err)
}
