package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/smart-intake/internal/config"
)

// testConfig installs a valid configuration backed by a temporary SQLite
// database and returns it for further tweaks.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	prev := cfg
	t.Cleanup(func() { cfg = prev })

	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: filepath.Join(t.TempDir(), "intake.db"),
		},
		Engine: config.EngineConfig{
			Enhanced:             true,
			MaxQuestions:         5,
			PrevalenceThreshold:  0.7,
			MaxMissingExpected:   5,
			MinCompleteness:      50,
			SuppressionThreshold: 0.8,
			NeedThresholds: map[string]float64{
				"years_in_business": 0.6,
				"service_radius":    0.7,
				"services":          0.85,
			},
		},
		Expectations: config.ExpectationsConfig{Source: "embedded"},
		Analytics:    config.AnalyticsConfig{Sink: "none"},
		Server:       config.ServerConfig{Port: 8080},
		Log:          config.LogConfig{Level: "info"},
	}
	return cfg
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"serve", "generate", "import", "migrate", "expectations"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "smart-intake", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestGenerateCommand_Flags(t *testing.T) {
	for _, name := range []string{"id", "industry", "total", "missing", "enhanced"} {
		assert.NotNil(t, generateCmd.Flags().Lookup(name), "generate should have --%s", name)
	}
	assert.Equal(t, "true", generateCmd.Flags().Lookup("enhanced").DefValue)
}

func TestImportCommand_Flags(t *testing.T) {
	flag := importCmd.Flags().Lookup("file")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestExpectationsCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range expectationsCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["validate"])
	assert.True(t, names["show"])
	assert.NotNil(t, expectationsCmd.PersistentFlags().Lookup("path"))
}
