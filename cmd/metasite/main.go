// Command metasite serves the marketing site.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/linkmeta/metasite/client"
	"github.com/linkmeta/metasite/internal/config"
	"github.com/linkmeta/metasite/internal/fetch"
	"github.com/linkmeta/metasite/internal/healthcheck"
	"github.com/linkmeta/metasite/internal/metadata"
	"github.com/linkmeta/metasite/internal/pages"
	"github.com/linkmeta/metasite/internal/platform/otel"
	"github.com/linkmeta/metasite/pkg/health"
	"github.com/linkmeta/metasite/pkg/limits"
	"github.com/linkmeta/metasite/pkg/logging"
	"github.com/linkmeta/metasite/pkg/metrics"
	"github.com/linkmeta/metasite/pkg/pubsub"
	"github.com/linkmeta/metasite/pkg/router"
	"github.com/linkmeta/metasite/pkg/shutdown"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("metasite: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		config.Exitf("metasite: %v", err)
	}
	logging.SetDefault(logger)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("server stopped", logging.Err(err))
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := []logging.LoggerOption{logging.WithLevel(level)}
	if cfg.LogJSON {
		opts = append(opts, logging.WithJSON())
	}
	return logging.NewSlogLogger(opts...).With(logging.String("service", "metasite")), nil
}

func run(ctx context.Context, cfg config.Config, logger logging.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	otelShutdown, err := otel.Setup(ctx, "metasite", otel.Config{
		Endpoint: cfg.OTelEndpoint,
		Enabled:  cfg.OTelEnabled,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}

	sd := shutdown.NewHandler(&shutdown.Config{
		Timeout: cfg.ShutdownTimeout,
		Signals: shutdown.DefaultConfig().Signals,
		OnHookComplete: func(name string, err error, d time.Duration) {
			if err != nil {
				logger.Warn("shutdown hook failed", logging.String("hook", name), logging.Err(err))
				return
			}
			logger.Debug("shutdown hook done", logging.String("hook", name), logging.Duration("took", d))
		},
	})
	sd.RegisterFunc("otel", shutdown.PriorityTelemetry, otelShutdown)

	ps := pubsub.NewMemoryPubSub()
	sd.Register(shutdown.CloseableHook("pubsub", shutdown.PriorityWorkers, ps))

	httpClient := &http.Client{Timeout: cfg.FetchTimeout}

	poller := healthcheck.NewPoller(healthcheck.PollerConfig{
		Source:   healthcheck.NewClient(cfg.HealthcheckURL, httpClient),
		Interval: cfg.HealthcheckInterval,
		PubSub:   ps,
		Logger:   logger,
	})
	go poller.Run(ctx)
	sd.RegisterFunc("healthcheck", shutdown.PriorityWorkers, func(context.Context) error {
		cancel()
		return nil
	})

	mc := metadata.NewClient(metadata.Config{
		Endpoint: cfg.APIEndpoint,
		APIKey:   cfg.APIKey,
		Timeout:  cfg.FetchTimeout,
		CacheTTL: cfg.CacheTTL,
		Logger:   logger,
	})
	sd.Register(shutdown.CloseableHook("metadata", shutdown.PriorityWorkers, mc))

	fetcher := fetch.NewService(mc, fetch.ServiceConfig{
		Rate:    cfg.DemoRate,
		Burst:   cfg.DemoBurst,
		Timeout: cfg.DemoTimeout,
		Options: metadata.DemoOptions,
		Logger:  logger,
	})
	sd.Register(shutdown.CloseableHook("fetch", shutdown.PriorityWorkers, fetcher))

	r := router.New(
		router.WithLogger(logger),
		router.WithMaxConnectionsPerIP(cfg.MaxConnectionsPerIP),
		router.WithMaxSessions(cfg.MaxSessions),
	)
	sd.RegisterFunc("live", shutdown.PriorityLive, r.Shutdown)

	stats, err := pages.FollowStats(ps, r.Sockets())
	if err != nil {
		return fmt.Errorf("follow stats: %w", err)
	}
	sd.RegisterFunc("stats", shutdown.PriorityLive, func(context.Context) error {
		return stats.Unsubscribe()
	})

	checker := health.NewChecker()
	checker.SetVersion(version)
	checker.AddCheck("healthcheck", poller.Check, 2*time.Second)
	checker.AddCheck("metadata", health.BreakerCheck(mc.BreakerState), time.Second)
	checker.AddCheck("memory", health.MemoryCheck(1<<30), time.Second)
	checker.AddCheck("sockets", health.SocketCapacityCheck(r.Sessions().Count, cfg.MaxSessions), time.Second)

	// Probes and assets stay outside the request rate limit.
	r.Use(router.Recovery())
	r.Use(logging.RequestLogger(logger))
	r.Handle("GET /healthz", checker.LivenessHandler())
	r.Handle("GET /readyz", checker.ReadinessHandler())
	r.Handle("GET /health", checker.HealthHandler())
	r.Handle("GET /metrics", metrics.Default.Handler())
	r.Handle("/_live/", router.Chain(http.StripPrefix("/_live/", client.Handler()), router.CacheControl(3600)))
	r.HandleFunc("GET /robots.txt", robotsHandler(cfg.BaseURL))
	r.HandleFunc("GET /sitemap.xml", sitemapHandler(cfg.BaseURL))

	limiter := limits.NewTokenBucket(20, 40)
	sd.RegisterFunc("ratelimit", shutdown.PriorityWorkers, func(context.Context) error {
		limiter.Stop()
		return nil
	})
	r.Use(router.SecureHeaders())
	r.Use(router.Compress())
	r.Use(router.RateLimit(limiter))

	pages.Register(r, pages.Deps{
		BaseURL: cfg.BaseURL,
		Fetcher: fetcher,
		Stats:   poller,
		// Views outwait the fetch service so its own timeout error wins.
		FetchTimeout: cfg.DemoTimeout + 5*time.Second,
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	sd.RegisterFunc("http", shutdown.PriorityHTTP, srv.Shutdown)

	// A failed listen cancels waitCtx, which runs the hooks like a signal.
	waitCtx, stopWait := context.WithCancel(ctx)
	defer stopWait()

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", logging.String("addr", cfg.Addr), logging.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
			stopWait()
		}
	}()

	shutdownErr := sd.Wait(waitCtx)
	select {
	case err := <-errc:
		return errors.Join(fmt.Errorf("listen: %w", err), shutdownErr)
	default:
	}
	if shutdownErr != nil {
		return fmt.Errorf("shutdown: %w", shutdownErr)
	}
	logger.Info("stopped")
	return nil
}

func robotsHandler(baseURL string) http.HandlerFunc {
	body := fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s/sitemap.xml\n", strings.TrimRight(baseURL, "/"))
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(body))
	}
}

var sitemapPaths = []string{"/", "/meta", "/pricing", "/colors"}

func sitemapHandler(baseURL string) http.HandlerFunc {
	base := strings.TrimRight(baseURL, "/")

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, p := range sitemapPaths {
		fmt.Fprintf(&sb, "  <url><loc>%s%s</loc></url>\n", base, p)
	}
	sb.WriteString("</urlset>\n")
	body := sb.String()

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.Write([]byte(body))
	}
}
