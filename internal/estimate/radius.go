package estimate

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/sells-group/smart-intake/internal/model"
)

const (
	earthRadiusMiles = 3958.8

	// DefaultRadiusConfidenceThreshold is the confidence at or above which the
	// service-radius question is skipped.
	DefaultRadiusConfidenceThreshold = 0.7

	polygonConfidence         = 0.92 // business inside a well-formed polygon
	polygonOutsideConfidence  = 0.8  // business location outside the polygon's bounds
	polygonCentroidConfidence = 0.85 // no business location; measured from the centroid
	placesManyConfidence      = 0.6  // three or more located places
	placesFewConfidence       = 0.45 // one or two located places

	placesBuffer    = 1.15 // places are town centers; the service edge lies beyond them
	minRadiusMiles  = 1.0
	minPolygonVerts = 3
)

// CalculateServiceRadius estimates a service radius in miles from the
// snapshot's service area. A polygon is preferred; otherwise the distances to
// located places are used; otherwise the result is unavailable with zero
// confidence.
func CalculateServiceRadius(area *model.ServiceArea, center *model.LatLng) model.RadiusEstimate {
	if area != nil {
		if est, ok := fromPolygon(area.Polygon, center); ok {
			return est
		}
		if est, ok := fromPlaces(area.Places, center); ok {
			return est
		}
	}
	return model.RadiusEstimate{Confidence: 0, Method: model.RadiusMethodUnavailable}
}

func fromPolygon(vertices []model.LatLng, center *model.LatLng) (model.RadiusEstimate, bool) {
	poly, ok := buildPolygon(vertices)
	if !ok {
		return model.RadiusEstimate{}, false
	}

	confidence := polygonConfidence
	var cLat, cLng float64
	if center.Valid() {
		cLat, cLng = center.Lat, center.Lng
		if !poly.Bounds().OverlapsPoint(geom.XY, geom.Coord{center.Lng, center.Lat}) {
			confidence = polygonOutsideConfidence
		}
	} else {
		c, err := xy.Centroid(poly)
		if err != nil {
			return model.RadiusEstimate{}, false
		}
		cLng, cLat = c.X(), c.Y()
		confidence = polygonCentroidConfidence
	}

	var maxMiles float64
	for _, c := range poly.LinearRing(0).Coords() {
		if d := haversineMiles(cLat, cLng, c.Y(), c.X()); d > maxMiles {
			maxMiles = d
		}
	}
	if maxMiles < minRadiusMiles {
		return model.RadiusEstimate{}, false
	}

	miles := roundMiles(maxMiles)
	return model.RadiusEstimate{Miles: &miles, Confidence: confidence, Method: model.RadiusMethodPolygon}, true
}

// buildPolygon converts vertices into a closed go-geom polygon. Rings with
// fewer than three distinct valid vertices are rejected.
func buildPolygon(vertices []model.LatLng) (*geom.Polygon, bool) {
	flat := make([]float64, 0, 2*(len(vertices)+1))
	n := 0
	for i := range vertices {
		v := vertices[i]
		if !v.Valid() {
			continue
		}
		flat = append(flat, v.Lng, v.Lat)
		n++
	}
	if n > 1 && flat[0] == flat[2*n-2] && flat[1] == flat[2*n-1] {
		n--
		flat = flat[:2*n]
	}
	if n < minPolygonVerts {
		return nil, false
	}
	flat = append(flat, flat[0], flat[1])
	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)}), true
}

func fromPlaces(places []model.Place, center *model.LatLng) (model.RadiusEstimate, bool) {
	if !center.Valid() {
		return model.RadiusEstimate{}, false
	}
	located := 0
	var maxMiles float64
	for _, p := range places {
		if !p.Location.Valid() {
			continue
		}
		located++
		if d := haversineMiles(center.Lat, center.Lng, p.Location.Lat, p.Location.Lng); d > maxMiles {
			maxMiles = d
		}
	}
	if located == 0 {
		return model.RadiusEstimate{}, false
	}

	miles := roundMiles(math.Max(maxMiles*placesBuffer, minRadiusMiles))
	confidence := placesFewConfidence
	if located >= 3 {
		confidence = placesManyConfidence
	}
	return model.RadiusEstimate{Miles: &miles, Confidence: confidence, Method: model.RadiusMethodPlaces}, true
}

// haversineMiles returns the great-circle distance between two points.
func haversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	const rad = math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMiles * math.Asin(math.Min(1, math.Sqrt(a)))
}

func roundMiles(m float64) float64 {
	return math.Round(m)
}

// ShouldAskServiceRadiusQuestion reports whether the radius estimate is too
// weak to skip the service-radius question.
func ShouldAskServiceRadiusQuestion(est model.RadiusEstimate, threshold float64) bool {
	return est.Miles == nil || est.Confidence < threshold
}
