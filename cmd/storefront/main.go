package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"Livora/internal/catalog"
	"Livora/internal/config"
	"Livora/internal/notify"
	"Livora/internal/session"
	"Livora/internal/storage"
	"Livora/internal/storefront"
	"Livora/pkg/kit"
)

const service = "storefront"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	var (
		db    *sql.DB
		hooks []func(context.Context) error
	)

	if cfg.StorageBackend == config.BackendPostgres || cfg.CatalogSource == config.CatalogPostgres {
		db, err = storage.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("db connect failed", zap.Error(err))
		}
		hooks = append(hooks, func(context.Context) error { return db.Close() })

		if err := storage.Migrate(ctx, db); err != nil {
			log.Fatal("db migrate failed", zap.Error(err))
		}
	}

	kv, closeKV, err := openKV(ctx, cfg, db)
	if err != nil {
		log.Fatal("storage init failed", zap.Error(err), zap.String("backend", cfg.StorageBackend))
	}
	if closeKV != nil {
		hooks = append(hooks, closeKV)
	}
	log.Info("storage ready", zap.String("backend", cfg.StorageBackend))

	var src catalog.Source = catalog.Sample()
	if cfg.CatalogSource == config.CatalogPostgres {
		src = catalog.NewPostgresSource(db)
	}
	cat, err := catalog.Load(ctx, src)
	if err != nil {
		log.Fatal("catalog load failed", zap.Error(err), zap.String("source", cfg.CatalogSource))
	}
	log.Info("catalog loaded", zap.Int("products", cat.Len()), zap.String("source", cfg.CatalogSource))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	notes := notify.NewCenter()

	var limiter *kit.RateLimiter
	if cfg.SuggestRateLimit > 0 {
		limiter = storefront.NewSuggestLimiter(cfg.SuggestRateLimit)
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	go sweep(sweepCtx, notes, limiter)
	hooks = append(hooks, func(context.Context) error { stopSweep(); return nil })

	svc := storefront.NewService(storefront.Deps{
		Catalog:      cat,
		KV:           kv,
		Notes:        notes,
		Log:          log,
		Metrics:      storefront.NewMetrics(reg),
		CheckoutPath: cfg.CheckoutPath,
	})

	h := storefront.NewHandler(&storefront.Server{Service: svc, Log: log}, storefront.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		Tokens:         session.NewTokenMaker(cfg.SessionSecret, cfg.SessionTTL()),
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
		SuggestLimiter: limiter,
	})

	if err := kit.RunHTTPServer(ctx, cfg.Addr(), h, log, hooks...); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

// openKV returns the state store for cfg and, when the store owns a
// connection, a hook that closes it.
func openKV(ctx context.Context, cfg *config.Config, db *sql.DB) (storage.KV, func(context.Context) error, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return storage.NewMemKV(), nil, nil
	case config.BackendRedis:
		client, err := storage.NewRedisClient(ctx, storage.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedisKV(client, cfg.StateTTL()), func(context.Context) error { return client.Close() }, nil
	case config.BackendPostgres:
		return storage.NewPostgresKV(db), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// sweep drops expired notifications and idle rate-limit keys once a minute.
func sweep(ctx context.Context, c *notify.Center, l *kit.RateLimiter) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.Sweep()
			if l != nil {
				l.Sweep()
			}
		}
	}
}
