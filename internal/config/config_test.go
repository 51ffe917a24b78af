package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "intake.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Engine.Enhanced)
	assert.Equal(t, 5, cfg.Engine.MaxQuestions)
	assert.Equal(t, 5, cfg.Engine.MaxMissingExpected)
	assert.InDelta(t, 0.7, cfg.Engine.PrevalenceThreshold, 0.001)
	assert.InDelta(t, 0.8, cfg.Engine.SuppressionThreshold, 0.001)
	assert.InDelta(t, 50, cfg.Engine.MinCompleteness, 0.001)
	assert.InDelta(t, 0.6, cfg.Engine.NeedThresholds["years_in_business"], 0.001)
	assert.InDelta(t, 0.7, cfg.Engine.NeedThresholds["service_radius"], 0.001)
	assert.InDelta(t, 0.85, cfg.Engine.NeedThresholds["services"], 0.001)
	assert.Equal(t, "embedded", cfg.Expectations.Source)
	assert.Equal(t, "log", cfg.Analytics.Sink)

	assert.NoError(t, cfg.Validate("serve"))
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/intake
engine:
  enhanced: false
  max_questions: 3
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.False(t, cfg.Engine.Enhanced)
	assert.Equal(t, 3, cfg.Engine.MaxQuestions)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.InDelta(t, 0.7, cfg.Engine.PrevalenceThreshold, 0.001)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log:\n  level: debug\n"), 0o644))
	t.Setenv("INTAKE_LOG_LEVEL", "warn")
	t.Setenv("INTAKE_ENGINE_PREVALENCE_THRESHOLD", "0.75")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.InDelta(t, 0.75, cfg.Engine.PrevalenceThreshold, 0.001)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("INTAKE_SERVER_PORT=3000\n"), 0o644))
	t.Setenv("INTAKE_SERVER_PORT", "")
	os.Unsetenv("INTAKE_SERVER_PORT") //nolint:errcheck

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

func validDefaults() *Config {
	return &Config{
		Store: StoreConfig{Driver: "sqlite", DatabaseURL: "intake.db"},
		Engine: EngineConfig{
			MaxQuestions:         5,
			PrevalenceThreshold:  0.7,
			MaxMissingExpected:   5,
			MinCompleteness:      50,
			SuppressionThreshold: 0.8,
			NeedThresholds:       map[string]float64{"service_radius": 0.7},
		},
		Expectations: ExpectationsConfig{Source: "embedded"},
		Analytics:    AnalyticsConfig{Sink: "log"},
		Server:       ServerConfig{Port: 8080},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mode   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid serve", "serve", func(*Config) {}, ""},
		{"bad port", "serve", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port ignored for generate", "generate", func(c *Config) { c.Server.Port = 0 }, ""},
		{"bad driver", "migrate", func(c *Config) { c.Store.Driver = "mysql" }, "store.driver"},
		{"no database url", "import", func(c *Config) { c.Store.DatabaseURL = "" }, "store.database_url"},
		{"zero max questions", "generate", func(c *Config) { c.Engine.MaxQuestions = 0 }, "max_questions"},
		{"max questions above five", "generate", func(c *Config) { c.Engine.MaxQuestions = 6 }, "engine.max_questions must be between 1 and 5"},
		{"prevalence above one", "generate", func(c *Config) { c.Engine.PrevalenceThreshold = 1.2 }, "prevalence_threshold"},
		{"negative suppression", "serve", func(c *Config) { c.Engine.SuppressionThreshold = -0.1 }, "suppression_threshold"},
		{"need threshold", "serve", func(c *Config) { c.Engine.NeedThresholds["service_radius"] = 2 }, "need_thresholds.service_radius"},
		{"completeness", "serve", func(c *Config) { c.Engine.MinCompleteness = 101 }, "min_completeness"},
		{"file source without path", "expectations", func(c *Config) { c.Expectations.Source = "file" }, "expectations.path"},
		{"unknown source", "expectations", func(c *Config) { c.Expectations.Source = "s3" }, "expectations.source"},
		{"webhook without url", "serve", func(c *Config) { c.Analytics.Sink = "webhook" }, "webhook_url"},
		{"unknown sink", "serve", func(c *Config) { c.Analytics.Sink = "kafka" }, "analytics.sink"},
		{"unknown mode", "unknown", func(*Config) {}, "unknown mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validDefaults()
			tt.mutate(cfg)
			err := cfg.Validate(tt.mode)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
