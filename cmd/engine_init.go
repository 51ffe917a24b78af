package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/smart-intake/internal/analytics"
	"github.com/sells-group/smart-intake/internal/config"
	"github.com/sells-group/smart-intake/internal/expectations"
	"github.com/sells-group/smart-intake/internal/intake"
	"github.com/sells-group/smart-intake/internal/registry"
	"github.com/sells-group/smart-intake/internal/store"
	"github.com/sells-group/smart-intake/internal/suppress"
)

// engineEnv holds everything the serve and generate commands share.
type engineEnv struct {
	Store        store.Store
	Expectations *expectations.Cache
	Generator    *intake.Generator
	Redis        *redis.Client // nil unless the redis sink is configured
}

// Close releases resources held by the environment.
func (e *engineEnv) Close() {
	if e.Generator != nil {
		e.Generator.Close()
	}
	if e.Redis != nil {
		_ = e.Redis.Close()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEngine opens and migrates the store, then wires the expectations
// cache, the catalog and the analytics sink into a generator. Callers should
// defer env.Close().
func initEngine(ctx context.Context, mode string) (*engineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	catalog, err := initCatalog()
	if err != nil {
		return nil, err
	}

	src, err := expectations.NewSource(cfg.Expectations.Source, cfg.Expectations.Path)
	if err != nil {
		return nil, eris.Wrap(err, "init expectations")
	}
	cache := expectations.NewCache(src)

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	env := &engineEnv{Store: st, Expectations: cache}

	sink, err := initSink(env)
	if err != nil {
		env.Close()
		return nil, err
	}

	env.Generator = intake.NewGenerator(intake.Deps{
		Catalog:      catalog,
		Expectations: cache,
		Store:        st,
		Sink:         sink,
	}, settingsFromConfig(cfg.Engine))

	zap.L().Info("intake engine ready",
		zap.String("store", cfg.Store.Driver),
		zap.String("expectations", cfg.Expectations.Source),
		zap.String("analytics", cfg.Analytics.Sink),
		zap.Int("catalog_questions", catalog.Len()),
		zap.Bool("enhanced", cfg.Engine.Enhanced),
	)
	return env, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "intake.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initCatalog() (*registry.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return registry.Default(), nil
	}
	c, err := registry.LoadCatalogFromFile(cfg.Catalog.Path)
	if err != nil {
		return nil, eris.Wrap(err, "load catalog")
	}
	zap.L().Info("catalog loaded from fixture",
		zap.String("path", cfg.Catalog.Path),
		zap.Int("questions", c.Len()),
	)
	return c, nil
}

func initSink(env *engineEnv) (analytics.Sink, error) {
	a := cfg.Analytics
	opts := analytics.Options{
		Kind:       a.Sink,
		Stream:     a.Stream,
		StreamMax:  a.StreamMax,
		WebhookURL: a.WebhookURL,
		RatePerSec: a.RatePerSec,
		Burst:      a.Burst,
		Timeout:    time.Duration(a.TimeoutSecs) * time.Second,
	}
	if a.Sink == "redis" {
		env.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		opts.RedisClient = env.Redis
	}
	sink, err := analytics.New(opts)
	if err != nil {
		return nil, eris.Wrap(err, "init analytics")
	}
	return sink, nil
}

func settingsFromConfig(e config.EngineConfig) intake.Settings {
	per := make(map[string]float64, len(e.NeedThresholds))
	for need, th := range e.NeedThresholds {
		per[need] = th
	}
	return intake.Settings{
		MaxQuestions:        e.MaxQuestions,
		PrevalenceThreshold: e.PrevalenceThreshold,
		MaxMissingExpected:  e.MaxMissingExpected,
		MinCompleteness:     e.MinCompleteness,
		Thresholds: suppress.Thresholds{
			Default: e.SuppressionThreshold,
			PerNeed: per,
		},
	}
}
