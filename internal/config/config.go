// Package config loads runtime configuration from config.yaml, a .env file
// and INTAKE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/smart-intake/internal/model"
)

// Config is the top-level configuration.
type Config struct {
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Redis        RedisConfig        `yaml:"redis" mapstructure:"redis"`
	Engine       EngineConfig       `yaml:"engine" mapstructure:"engine"`
	Expectations ExpectationsConfig `yaml:"expectations" mapstructure:"expectations"`
	Catalog      CatalogConfig      `yaml:"catalog" mapstructure:"catalog"`
	Analytics    AnalyticsConfig    `yaml:"analytics" mapstructure:"analytics"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// StoreConfig selects the snapshot store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite|postgres
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// RedisConfig holds the Redis connection used by the redis analytics sink.
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

// EngineConfig tunes question generation.
type EngineConfig struct {
	// Enhanced turns on context derivation, suppression write-back and
	// analytics. Callers may still override it per request.
	Enhanced             bool               `yaml:"enhanced" mapstructure:"enhanced"`
	MaxQuestions         int                `yaml:"max_questions" mapstructure:"max_questions"`
	PrevalenceThreshold  float64            `yaml:"prevalence_threshold" mapstructure:"prevalence_threshold"`
	MaxMissingExpected   int                `yaml:"max_missing_expected" mapstructure:"max_missing_expected"`
	MinCompleteness      float64            `yaml:"min_completeness" mapstructure:"min_completeness"`
	SuppressionThreshold float64            `yaml:"suppression_threshold" mapstructure:"suppression_threshold"`
	NeedThresholds       map[string]float64 `yaml:"need_thresholds" mapstructure:"need_thresholds"`
}

// ExpectationsConfig selects where the industry expectations table comes from.
type ExpectationsConfig struct {
	Source string `yaml:"source" mapstructure:"source"` // embedded|file
	Path   string `yaml:"path" mapstructure:"path"`
}

// CatalogConfig optionally replaces the built-in question catalog.
type CatalogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// AnalyticsConfig selects the analytics sink.
type AnalyticsConfig struct {
	Sink        string  `yaml:"sink" mapstructure:"sink"` // log|redis|webhook|none
	Stream      string  `yaml:"stream" mapstructure:"stream"`
	StreamMax   int64   `yaml:"stream_max" mapstructure:"stream_max"`
	WebhookURL  string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst       int     `yaml:"burst" mapstructure:"burst"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. A .env file in the
// working directory is loaded first; variables already set win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("INTAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "intake.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("engine.enhanced", true)
	v.SetDefault("engine.max_questions", 5)
	v.SetDefault("engine.prevalence_threshold", 0.7)
	v.SetDefault("engine.max_missing_expected", 5)
	v.SetDefault("engine.min_completeness", 50.0)
	v.SetDefault("engine.suppression_threshold", 0.8)
	v.SetDefault("engine.need_thresholds", map[string]float64{
		"years_in_business": 0.6,
		"service_radius":    0.7,
		"services":          0.85,
	})
	v.SetDefault("expectations.source", "embedded")
	v.SetDefault("expectations.path", "")
	v.SetDefault("catalog.path", "")
	v.SetDefault("analytics.sink", "log")
	v.SetDefault("analytics.stream", "intake:events")
	v.SetDefault("analytics.stream_max", 10000)
	v.SetDefault("analytics.webhook_url", "")
	v.SetDefault("analytics.rate_per_sec", 20.0)
	v.SetDefault("analytics.burst", 40)
	v.SetDefault("analytics.timeout_secs", 5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		errs = append(errs, c.validateStore()...)
		errs = append(errs, c.validateEngine()...)
		errs = append(errs, c.validateAnalytics()...)
		errs = append(errs, c.validateExpectations()...)
	case "generate":
		errs = append(errs, c.validateStore()...)
		errs = append(errs, c.validateEngine()...)
		errs = append(errs, c.validateAnalytics()...)
		errs = append(errs, c.validateExpectations()...)
	case "import", "migrate":
		errs = append(errs, c.validateStore()...)
	case "expectations":
		errs = append(errs, c.validateExpectations()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateStore() []string {
	var errs []string
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q must be sqlite or postgres", c.Store.Driver))
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}
	return errs
}

func (c *Config) validateEngine() []string {
	var errs []string
	e := c.Engine
	if e.MaxQuestions <= 0 || e.MaxQuestions > model.MaxQuestions {
		errs = append(errs, fmt.Sprintf("engine.max_questions must be between 1 and %d", model.MaxQuestions))
	}
	if e.MaxMissingExpected < 0 {
		errs = append(errs, "engine.max_missing_expected must be >= 0")
	}
	if !unit(e.PrevalenceThreshold) {
		errs = append(errs, "engine.prevalence_threshold must be between 0 and 1")
	}
	if !unit(e.SuppressionThreshold) {
		errs = append(errs, "engine.suppression_threshold must be between 0 and 1")
	}
	for need, th := range e.NeedThresholds {
		if !unit(th) {
			errs = append(errs, fmt.Sprintf("engine.need_thresholds.%s must be between 0 and 1", need))
		}
	}
	if e.MinCompleteness < 0 || e.MinCompleteness > 100 {
		errs = append(errs, "engine.min_completeness must be between 0 and 100")
	}
	return append(errs, c.validateExpectations()...)
}

func (c *Config) validateExpectations() []string {
	switch c.Expectations.Source {
	case "embedded", "":
		return nil
	case "file":
		if c.Expectations.Path == "" {
			return []string{"expectations.path is required when expectations.source is file"}
		}
		return nil
	default:
		return []string{fmt.Sprintf("expectations.source %q must be embedded or file", c.Expectations.Source)}
	}
}

func (c *Config) validateAnalytics() []string {
	switch c.Analytics.Sink {
	case "log", "none", "":
		return nil
	case "redis":
		if c.Redis.Addr == "" {
			return []string{"redis.addr is required for the redis analytics sink"}
		}
		return nil
	case "webhook":
		if c.Analytics.WebhookURL == "" {
			return []string{"analytics.webhook_url is required for the webhook analytics sink"}
		}
		return nil
	default:
		return []string{fmt.Sprintf("analytics.sink %q must be log, redis, webhook or none", c.Analytics.Sink)}
	}
}

func unit(v float64) bool { return v >= 0 && v <= 1 }

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
