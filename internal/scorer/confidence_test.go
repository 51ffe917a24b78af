package scorer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/smart-intake/internal/model"
)

func derived() *model.DerivedContext {
	years := 27
	miles := 18.0
	return &model.DerivedContext{
		ClimateZone:   model.ZoneCold,
		KnownServices: []string{"lawn_mowing", "snow_removal", "mulching", "tree_trimming"},
		Expected: []model.ExpectedService{
			{Key: "lawn_mowing", Prevalence: 0.9},
			{Key: "fall_cleanup", Prevalence: 0.86},
			{Key: "snow_removal", Prevalence: 0.81},
			{Key: "spring_cleanup", Prevalence: 0.79},
		},
		BusinessAge: model.AgeEstimate{Years: &years, Confidence: 0.7, Source: model.AgeSourceSinceYear, Evidence: "since 1998"},
		Radius:      model.RadiusEstimate{Miles: &miles, Confidence: 0.92, Method: model.RadiusMethodPolygon},
	}
}

func TestScore_Derived(t *testing.T) {
	res := Score(Input{Derived: derived(), Snapshot: &model.BusinessProfileSnapshot{}})

	assert.InDelta(t, 0.5, res.Confidence[model.NeedServices], 0.0001)
	assert.InDelta(t, 0.7, res.Confidence[model.NeedYearsInBusiness], 0.0001)
	assert.InDelta(t, 0.92, res.Confidence[model.NeedServiceRadius], 0.0001)
	assert.Zero(t, res.Confidence[model.NeedEmergencyService])

	assert.Equal(t, "2 of 4 expected services confirmed", res.Provenance[model.NeedServices].Detail)
	assert.Equal(t, model.RadiusMethodPolygon, res.Provenance[model.NeedServiceRadius].Source)
	assert.Contains(t, res.Provenance[model.NeedYearsInBusiness].Detail, "~27 years")
}

func TestScore_AllNeedsPresent(t *testing.T) {
	res := Score(Input{})
	for _, need := range manualNeeds {
		_, ok := res.Confidence[need]
		assert.True(t, ok, need)
	}
	assert.Empty(t, res.Provenance)
}

func TestScore_ManualOverrides(t *testing.T) {
	res := Score(Input{
		Derived:   derived(),
		DataScore: model.DataScore{Manual: map[string]any{model.NeedServices: []string{"mowing"}, model.NeedBrandStyle: "bold"}},
	})

	assert.InDelta(t, 1.0, res.Confidence[model.NeedServices], 0.0001)
	assert.Equal(t, SourceManual, res.Provenance[model.NeedServices].Source)
	assert.InDelta(t, 1.0, res.Confidence[model.NeedBrandStyle], 0.0001)
}

func TestScore_Emergency(t *testing.T) {
	tests := []struct {
		name string
		snap *model.BusinessProfileSnapshot
		want float64
	}{
		{"category", &model.BusinessProfileSnapshot{Categories: []model.Category{{Name: "Emergency Plumber"}}}, 0.9},
		{"description", &model.BusinessProfileSnapshot{Description: "Available 24/7 for burst pipes"}, 0.85},
		{"none", &model.BusinessProfileSnapshot{Description: "Friendly local plumbers"}, 0},
		{"negated service", &model.BusinessProfileSnapshot{Description: "We do not offer emergency service; scheduled appointments only."}, 0},
		{"no after hours", &model.BusinessProfileSnapshot{Description: "Sorry, no after-hours calls."}, 0},
		{"non-emergency repairs", &model.BusinessProfileSnapshot{Description: "Non-emergency repairs by appointment"}, 0},
		{"bare word", &model.BusinessProfileSnapshot{Description: "Please call 911 in an emergency."}, 0},
		{"negation in earlier clause", &model.BusinessProfileSnapshot{Description: "No job too small. 24/7 emergency service."}, 0.85},
		{"second mention affirms", &model.BusinessProfileSnapshot{Description: "Not just installs; 24 hour emergency repair too"}, 0.85},
		{"negated category", &model.BusinessProfileSnapshot{Categories: []model.Category{{Name: "Non-Emergency Medical Transport"}}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Score(Input{Snapshot: tt.snap})
			assert.InDelta(t, tt.want, res.Confidence[model.NeedEmergencyService], 0.0001)
		})
	}
}

func TestScore_NoExpectedServices(t *testing.T) {
	d := derived()
	d.Expected = nil
	res := Score(Input{Derived: d})
	assert.Zero(t, res.Confidence[model.NeedServices])
}

func TestScore_Bounds(t *testing.T) {
	d := derived()
	d.BusinessAge.Confidence = 1.7
	d.Radius.Confidence = -0.2
	res := Score(Input{Derived: d})
	for need, c := range res.Confidence {
		assert.GreaterOrEqual(t, c, 0.0, need)
		assert.LessOrEqual(t, c, 1.0, need)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-1))
	assert.Equal(t, 1.0, Clamp(3))
	assert.Equal(t, 0.4, Clamp(0.4))
	assert.Equal(t, 0.0, Clamp(math.NaN()))
}
