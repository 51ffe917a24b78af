package climate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/smart-intake/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
		expected model.ClimateZone
	}{
		{"boston", 42.3601, -71.0589, model.ZoneCold},
		{"minneapolis", 44.9778, -93.2650, model.ZoneCold},
		{"denver", 39.7392, -104.9903, model.ZoneCold},
		{"anchorage", 61.2181, -149.9003, model.ZoneCold},
		{"phoenix", 33.4484, -112.0740, model.ZoneArid},
		{"las vegas", 36.1699, -115.1398, model.ZoneArid},
		{"el paso", 31.7619, -106.4850, model.ZoneArid},
		{"los angeles", 34.0522, -118.2437, model.ZoneArid},
		{"houston", 29.7604, -95.3698, model.ZoneHumid},
		{"atlanta", 33.7490, -84.3880, model.ZoneHumid},
		{"miami", 25.7617, -80.1918, model.ZoneHumid},
		{"honolulu", 21.3069, -157.8583, model.ZoneHumid},
		{"seattle", 47.6062, -122.3321, model.ZoneTemperate},
		{"san francisco", 37.7749, -122.4194, model.ZoneTemperate},
		{"new york", 40.7128, -74.0060, model.ZoneTemperate},
		{"washington dc", 38.9072, -77.0369, model.ZoneTemperate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.lat, tt.lng))
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, model.ZoneArid, Classify(33.4484, -112.0740))
	}
}

func TestForLocation(t *testing.T) {
	assert.Equal(t, model.ZoneNational, ForLocation(nil))
	assert.Equal(t, model.ZoneNational, ForLocation(&model.LatLng{}))
	assert.Equal(t, model.ZoneNational, ForLocation(&model.LatLng{Lat: 120, Lng: 0}))
	assert.Equal(t, model.ZoneCold, ForLocation(&model.LatLng{Lat: 42.3601, Lng: -71.0589}))
}
