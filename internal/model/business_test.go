package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndustry_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, IndustryPlumbing.Valid())
	assert.False(t, Industry("bakery").Valid())
	assert.False(t, Industry("").Valid())
}

func TestLatLng_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		p    *LatLng
		want bool
	}{
		{"nil", nil, false},
		{"null island", &LatLng{}, false},
		{"boston", &LatLng{Lat: 42.3601, Lng: -71.0589}, true},
		{"lat out of range", &LatLng{Lat: 91, Lng: 10}, false},
		{"lng out of range", &LatLng{Lat: 10, Lng: -181}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Valid())
		})
	}
}

func TestServiceLabels(t *testing.T) {
	t.Parallel()

	s := &BusinessProfileSnapshot{Categories: []Category{
		{Name: "Landscaper", ServiceTypes: []string{"Lawn Mowing", "Snow Removal"}},
		{ServiceTypes: []string{"Mulching"}},
	}}
	assert.Equal(t, []string{"Landscaper", "Lawn Mowing", "Snow Removal", "Mulching"}, s.ServiceLabels())

	var nilSnap *BusinessProfileSnapshot
	assert.Nil(t, nilSnap.ServiceLabels())
}
