package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/redisstore"
	"storefront/internal/repos"
	"storefront/internal/storage"
	"storefront/web"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		applog.Error(nil, "config.load", err, nil)
		os.Exit(1)
	}

	// Optional file logging
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			applog.Warn(nil, "log.file.open", err, map[string]any{"path": cfg.LogFile})
		} else {
			defer f.Close()
			out = io.MultiWriter(os.Stdout, f)
		}
	}
	applog.Setup(applog.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: out})
	applog.Info(nil, "config.loaded", map[string]any{
		"port": cfg.Port, "db_dsn": cfg.DBDSN, "storage": cfg.Storage, "log_level": cfg.LogLevel,
	})

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		applog.Error(nil, "db.open", err, nil)
		os.Exit(1)
	}
	defer db.Close()

	// The catalog is loaded fully before serving.
	products, err := repos.NewProductRepo(db).All()
	if err != nil {
		applog.Error(nil, "catalog.load", err, nil)
		os.Exit(1)
	}
	cat := catalog.New(products)
	applog.Info(nil, "catalog.loaded", map[string]any{"products": cat.Len()})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var blobs storage.BlobStore
	health := func(ctx context.Context) error { return db.PingContext(ctx) }
	switch cfg.Storage {
	case config.BackendRedis:
		rs, err := redisstore.New(ctx, cfg.RedisURL, cfg.RedisTTL)
		if err != nil {
			applog.Error(nil, "redis.connect", err, nil)
			os.Exit(1)
		}
		defer rs.Close()
		blobs = rs
		health = func(ctx context.Context) error {
			if err := db.PingContext(ctx); err != nil {
				return err
			}
			return rs.Ping(ctx)
		}
	case config.BackendMemory:
		blobs = storage.NewMemory()
	default:
		blobs = repos.NewBlobRepo(db)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewCartMetrics(reg)

	deps := handlers.NewDeps(cat, blobs, repos.NewOrderRepo(db), m, handlers.DepsOptions{
		SecureCookie:   cfg.CookieSecure,
		SessionIdleTTL: cfg.SessionIdleTTL,
		MaxSessions:    cfg.MaxSessions,
	})
	app := handlers.NewApp(deps, handlers.AppOptions{
		Views:     web.Views(),
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		RateLimit: cfg.RateLimit,
		AccessLog: cfg.AccessLog,
		Health:    health,
	})

	go func() {
		<-ctx.Done()
		applog.Info(nil, "server.shutdown", nil)
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	applog.Info(nil, "server.listen", map[string]any{"addr": ":" + cfg.Port})
	if err := app.Listen(":" + cfg.Port); err != nil {
		applog.Error(nil, "server.listen", err, nil)
		os.Exit(1)
	}
}
