package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/smart-intake/internal/config"
	"github.com/sells-group/smart-intake/internal/intake"
	"github.com/sells-group/smart-intake/internal/model"
	"github.com/sells-group/smart-intake/internal/registry"
	"github.com/sells-group/smart-intake/internal/store"
)

func TestSettingsFromConfig(t *testing.T) {
	s := settingsFromConfig(config.EngineConfig{
		MaxQuestions:         4,
		PrevalenceThreshold:  0.65,
		MaxMissingExpected:   3,
		MinCompleteness:      40,
		SuppressionThreshold: 0.75,
		NeedThresholds:       map[string]float64{"service_radius": 0.9},
	})

	assert.Equal(t, 4, s.MaxQuestions)
	assert.Equal(t, 0.65, s.PrevalenceThreshold)
	assert.Equal(t, 3, s.MaxMissingExpected)
	assert.Equal(t, 40.0, s.MinCompleteness)
	assert.Equal(t, 0.9, s.Thresholds.For(model.NeedServiceRadius))
	assert.Equal(t, 0.75, s.Thresholds.For(model.NeedTeamSize))
}

func TestInitStore_UnsupportedDriver(t *testing.T) {
	c := testConfig(t)
	c.Store.Driver = "mongo"

	_, err := initStore(context.Background())
	assert.ErrorContains(t, err, "unsupported store driver")
}

func TestInitCatalog(t *testing.T) {
	c := testConfig(t)

	cat, err := initCatalog()
	require.NoError(t, err)
	assert.Equal(t, registry.Default().Len(), cat.Len())

	c.Catalog.Path = filepath.Join(t.TempDir(), "missing.json")
	_, err = initCatalog()
	assert.ErrorContains(t, err, "load catalog")
}

func TestInitSink(t *testing.T) {
	c := testConfig(t)

	tests := []struct {
		kind      string
		wantRedis bool
		wantErr   bool
	}{
		{kind: "none"},
		{kind: "log"},
		{kind: "redis", wantRedis: true},
		{kind: "carrier-pigeon", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			c.Analytics.Sink = tt.kind
			c.Redis.Addr = "localhost:6379"
			env := &engineEnv{}
			defer env.Close()

			sink, err := initSink(env)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, sink)
			assert.Equal(t, tt.wantRedis, env.Redis != nil)
		})
	}
}

func TestInitEngine_InvalidConfig(t *testing.T) {
	c := testConfig(t)
	c.Engine.MaxQuestions = 0

	_, err := initEngine(context.Background(), "generate")
	assert.ErrorContains(t, err, "engine.max_questions")
}

func TestInitEngine_GeneratesFromStoredSnapshot(t *testing.T) {
	testConfig(t)
	ctx := context.Background()

	env, err := initEngine(ctx, "generate")
	require.NoError(t, err)
	defer env.Close()

	_, err = store.PutAll(ctx, env.Store, []model.BusinessRecord{{
		IntelligenceID: "biz-1",
		Profile: model.BusinessProfileSnapshot{
			Name:        "Harbor Plumbing",
			Location:    &model.LatLng{Lat: 42.3601, Lng: -71.0589},
			Description: "Serving the area since 1998.",
			Industry:    model.IndustryPlumbing,
		},
		DataScore: model.DataScore{Total: 40},
	}})
	require.NoError(t, err)

	resp, err := env.Generator.Generate(ctx, intake.Request{
		IntelligenceID: "biz-1",
		Industry:       model.IndustryPlumbing,
		DataScore:      model.DataScore{Total: 40},
	}, intake.Options{Enhanced: true})
	require.NoError(t, err)

	require.NotNil(t, resp.SuppressionInfo)
	assert.Contains(t, resp.SuppressionInfo.Reasons, registry.QuestionBusinessStage)

	rec, err := env.Store.GetSnapshot(ctx, "biz-1")
	require.NoError(t, err)
	require.NotNil(t, rec.DataScore.ClimateZone)
	assert.Equal(t, "cold", *rec.DataScore.ClimateZone)
	require.NotNil(t, rec.DataScore.SuppressionInfo)
	assert.Equal(t, 1, rec.DataScore.SuppressionInfo.Count)
	assert.Equal(t, "2025.09-r3", env.Expectations.Version())
}

func TestInitEngine_CatalogFixture(t *testing.T) {
	c := testConfig(t)
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"question": {"id": "team-size", "type": "quick-pick", "priority": 3, "category": "personalization",
		  "question": "How big is your team?", "options": [{"value": "solo", "label": "Just me"}], "dataNeed": "team_size"},
		 "applies_when": {"always": true}}
	]`), 0o644))
	c.Catalog.Path = path

	env, err := initEngine(context.Background(), "generate")
	require.NoError(t, err)
	defer env.Close()

	resp, err := env.Generator.Generate(context.Background(), intake.Request{
		IntelligenceID: "x",
		Industry:       model.IndustryRoofing,
	}, intake.Options{})
	require.NoError(t, err)
	require.Len(t, resp.Questions, 1)
	assert.Equal(t, registry.QuestionTeamSize, resp.Questions[0].ID)
}
