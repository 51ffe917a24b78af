package normalize

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestServiceKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Snow & Ice Removal", "snow_ice_removal"},
		{"  Drip  Irrigation  ", "drip_irrigation"},
		{"Heating/Cooling", "heating_cooling"},
		{"100% Organic Lawn Care", "100_organic_lawn_care"},
		{"Owner's Choice", "owners_choice"},
		{"Café Patio Design", "cafe_patio_design"},
		{"--Gutter--Cleaning--", "gutter_cleaning"},
		{"snow_ice_removal", "snow_ice_removal"},
		{"", ""},
		{"&&&", ""},
		{"24/7 Emergency Service", "24_7_emergency_service"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ServiceKey(tt.in))
		})
	}
}

func TestServiceKey_Idempotent(t *testing.T) {
	inputs := []string{
		"Snow & Ice Removal",
		"  Drip  Irrigation  ",
		"HVAC  Repair / Install",
		"Über Reinigung™",
		"a__b",
		"___",
		"Lawn\tMowing\n",
		"日本語 lawn",
	}
	for _, in := range inputs {
		once := ServiceKey(in)
		assert.Equal(t, once, ServiceKey(once), "input %q", in)
	}
}

func TestServiceKeys_DedupesAndDropsEmpty(t *testing.T) {
	got := ServiceKeys([]string{"Lawn Mowing", "lawn-mowing", "", "!!", "Mulching"})
	if diff := cmp.Diff([]string{"lawn_mowing", "mulching"}, got); diff != "" {
		t.Errorf("ServiceKeys mismatch (-want +got):\n%s", diff)
	}
}

func TestKeySet(t *testing.T) {
	set := KeySet([]string{"a", "b"})
	assert.True(t, set["a"])
	assert.False(t, set["c"])
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Snow Ice Removal", Label("snow_ice_removal"))
	assert.Equal(t, "Xeriscaping", Label("xeriscaping"))
}
