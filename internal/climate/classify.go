// Package climate maps coordinates to coarse climate zones that mirror broad
// US climate patterns.
package climate

import "github.com/sells-group/smart-intake/internal/model"

// Band edges (degrees).
const (
	alaskaMinLat   = 51.0
	alaskaMaxLng   = -129.0
	hawaiiMaxLat   = 23.0
	hawaiiMaxLng   = -154.0
	pacificMaxLng  = -121.0 // west of the Cascades / Sierra
	pacificMinLat  = 36.0
	mountainMinLat = 38.0
	mountainMinLng = -121.0
	mountainMaxLng = -102.0
	aridMaxLng     = -100.0 // roughly the 100th meridian
	northMinLat    = 41.0
	southMaxLat    = 36.5
)

// Classify returns the climate zone for a coordinate pair. Rules, first match
// wins:
//   - cold: Alaska
//   - humid: Hawaii
//   - temperate: Pacific coast north of 36°N (marine climate)
//   - cold: interior mountain West north of 38°N
//   - arid: west of the 100th meridian and south of 38°N
//   - cold: north of 41°N
//   - humid: south of 36.5°N
//   - temperate: everything else
//
// Callers must check coordinates with model.LatLng.Valid first and use the
// national pseudo-zone when they are missing.
func Classify(lat, lng float64) model.ClimateZone {
	switch {
	case lat >= alaskaMinLat && lng <= alaskaMaxLng:
		return model.ZoneCold
	case lat < hawaiiMaxLat && lng <= hawaiiMaxLng:
		return model.ZoneHumid
	case lng <= pacificMaxLng && lat >= pacificMinLat:
		return model.ZoneTemperate
	case lat >= mountainMinLat && lng > mountainMinLng && lng <= mountainMaxLng:
		return model.ZoneCold
	case lat < mountainMinLat && lng <= aridMaxLng:
		return model.ZoneArid
	case lat >= northMinLat:
		return model.ZoneCold
	case lat < southMaxLat:
		return model.ZoneHumid
	default:
		return model.ZoneTemperate
	}
}

// ForLocation classifies p, falling back to the national pseudo-zone when p
// is missing or out of range.
func ForLocation(p *model.LatLng) model.ClimateZone {
	if !p.Valid() {
		return model.ZoneNational
	}
	return Classify(p.Lat, p.Lng)
}
