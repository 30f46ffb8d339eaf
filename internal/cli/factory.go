// Package cli wires configuration into a running catalog and implements the
// command behaviour behind cmd/verdant.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/verdant"
	"github.com/aretw0/verdant/internal/adapters/file"
	"github.com/aretw0/verdant/internal/config"
	"github.com/aretw0/verdant/pkg/adapters/gemini"
	verdanthttp "github.com/aretw0/verdant/pkg/adapters/http"
	"github.com/aretw0/verdant/pkg/adapters/memory"
	"github.com/aretw0/verdant/pkg/adapters/persisted"
	"github.com/aretw0/verdant/pkg/adapters/redis"
	"github.com/aretw0/verdant/pkg/adapters/sqlite"
	"github.com/aretw0/verdant/pkg/enrich"
	"github.com/aretw0/verdant/pkg/persistence/middleware"
	"github.com/aretw0/verdant/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Runtime is a fully wired catalog plus the resources it owns.
type Runtime struct {
	Config   config.Config
	Logger   *slog.Logger
	Catalog  *verdant.Catalog
	Streams  *verdanthttp.StreamManager
	Registry *prometheus.Registry

	closers []func() error
}

// BuildOption customizes Build, mainly for tests.
type BuildOption func(*buildOptions)

type buildOptions struct {
	storage   ports.Storage
	generator ports.TextGenerator
	debug     bool
}

// WithStorage bypasses the configured backend.
func WithStorage(s ports.Storage) BuildOption {
	return func(o *buildOptions) { o.storage = s }
}

// WithTextGenerator bypasses the configured enrichment provider.
func WithTextGenerator(g ports.TextGenerator) BuildOption {
	return func(o *buildOptions) { o.generator = g }
}

// WithDebugHooks logs every catalog transition at debug level.
func WithDebugHooks() BuildOption {
	return func(o *buildOptions) { o.debug = true }
}

// Build initializes a catalog with standard CLI conventions. The catalog is not
// started; callers decide when to fetch.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...BuildOption) (*Runtime, error) {
	var bo buildOptions
	for _, opt := range opts {
		opt(&bo)
	}

	rt := &Runtime{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	rt.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// 1. Storage
	storage := bo.storage
	var locker ports.Locker
	if storage == nil {
		var err error
		storage, locker, err = rt.openStorage(ctx)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
	}

	if cfg.EncryptionKey != "" {
		key, err := middleware.ParseKey(cfg.EncryptionKey)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		storage = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(storage)
	}

	// 2. Enrichment
	enricher, err := rt.openEnricher(ctx, bo.generator)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	// 3. Repository
	repoOpts := []persisted.Option{
		persisted.WithKey(cfg.StorageKey),
		persisted.WithLogger(logger),
	}
	if enricher != nil {
		repoOpts = append(repoOpts, persisted.WithEnricher(enricher))
	}
	if locker != nil {
		repoOpts = append(repoOpts, persisted.WithLocker(locker))
	}
	repo := middleware.Chain(persisted.New(storage, repoOpts...),
		middleware.NewMetrics(rt.Registry).Middleware(),
		middleware.NewLoggingMiddleware(logger),
	)

	// 4. Catalog
	rt.Streams = verdanthttp.NewStreamManager(logger)
	catalogOpts := []verdant.Option{
		verdant.WithLogger(logger),
		verdant.WithLifecycleHooks(rt.Streams.Hooks()),
	}
	if bo.debug {
		catalogOpts = append(catalogOpts, verdant.WithLifecycleHooks(createDebugHooks(logger)))
	}
	rt.Catalog = verdant.New(repo, catalogOpts...)

	return rt, nil
}

func (rt *Runtime) openStorage(ctx context.Context) (ports.Storage, ports.Locker, error) {
	cfg := rt.Config
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.NewStorage(), nil, nil

	case config.BackendFile:
		return file.New(cfg.File.Dir), nil, nil

	case config.BackendRedis:
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
		)
		rt.closers = append(rt.closers, store.Close)
		if err := store.Ping(ctx); err != nil {
			return nil, nil, fmt.Errorf("redis at %s is unreachable: %w", cfg.Redis.Addr, err)
		}
		var locker ports.Locker
		if cfg.Redis.Lock {
			locker = redis.NewLocker(store.Client(), cfg.Redis.Prefix)
		}
		return store, locker, nil

	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		rt.closers = append(rt.closers, store.Close)
		return store, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// openEnricher returns nil when enrichment is disabled; Enrich then reports an upstream error.
func (rt *Runtime) openEnricher(ctx context.Context, gen ports.TextGenerator) (ports.Enricher, error) {
	cfg := rt.Config.Enrichment
	if gen == nil {
		switch cfg.Provider {
		case config.ProviderNone:
			return nil, nil
		case config.ProviderGemini:
			if cfg.APIKey == "" {
				rt.Logger.Warn("enrichment disabled: GEMINI_API_KEY is not set")
				return nil, nil
			}
			g, err := gemini.New(ctx, gemini.Config{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL})
			if err != nil {
				return nil, fmt.Errorf("error initializing gemini client: %w", err)
			}
			gen = g
		default:
			return nil, fmt.Errorf("unknown enrichment provider %q", cfg.Provider)
		}
	}

	return enrich.New(gen, enrich.Options{
		MaxRetries:     cfg.MaxRetries,
		RequestTimeout: cfg.RequestTimeout,
		RateLimitRPS:   cfg.RateLimitRPS,
	}, enrich.WithLogger(rt.Logger)), nil
}

// Handler builds the HTTP API for this runtime.
func (rt *Runtime) Handler() http.Handler {
	return verdanthttp.NewHandler(rt.Catalog,
		verdanthttp.WithStreams(rt.Streams),
		verdanthttp.WithLogger(rt.Logger),
		verdanthttp.WithMetricsHandler(promhttp.HandlerFor(rt.Registry, promhttp.HandlerOpts{})),
	)
}

// Close releases backend connections.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i]())
	}
	rt.closers = nil
	return errors.Join(errs...)
}
