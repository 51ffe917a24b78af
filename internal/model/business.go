package model

// Industry is the fixed set of verticals the intake engine understands.
type Industry string

const (
	IndustryLandscaping Industry = "landscaping"
	IndustryHVAC        Industry = "hvac"
	IndustryPlumbing    Industry = "plumbing"
	IndustryCleaning    Industry = "cleaning"
	IndustryRoofing     Industry = "roofing"
	IndustryElectrical  Industry = "electrical"
	IndustryPestControl Industry = "pest_control"
	IndustryGeneral     Industry = "general"
)

// Industries lists every supported industry tag in display order.
var Industries = []Industry{
	IndustryLandscaping,
	IndustryHVAC,
	IndustryPlumbing,
	IndustryCleaning,
	IndustryRoofing,
	IndustryElectrical,
	IndustryPestControl,
	IndustryGeneral,
}

// Valid reports whether i is one of the known industry tags.
func (i Industry) Valid() bool {
	for _, known := range Industries {
		if i == known {
			return true
		}
	}
	return false
}

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the pair is inside the legal coordinate range and is
// not the (0,0) placeholder some upstream profiles emit for unknown locations.
func (p *LatLng) Valid() bool {
	if p == nil {
		return false
	}
	if p.Lat == 0 && p.Lng == 0 {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Category is a business-profile category with its nested service types.
type Category struct {
	Name         string   `json:"name"`
	ServiceTypes []string `json:"service_types,omitempty"`
}

// Place is a named locality a business lists as part of its service area.
type Place struct {
	Name     string  `json:"name"`
	Location *LatLng `json:"location,omitempty"`
}

// ServiceArea describes where a business operates. Either field may be empty.
// Polygon is a closed or open ring of vertices.
type ServiceArea struct {
	Polygon []LatLng `json:"polygon,omitempty"`
	Places  []Place  `json:"places,omitempty"`
}

// OpeningDate mirrors the partial date business profiles publish. Month and
// Day are zero when unknown.
type OpeningDate struct {
	Year  int `json:"year"`
	Month int `json:"month,omitempty"`
	Day   int `json:"day,omitempty"`
}

// BusinessProfileSnapshot is the normalized view of one business at intake
// time. The intake engine only reads it.
type BusinessProfileSnapshot struct {
	Name        string       `json:"name"`
	Location    *LatLng      `json:"location,omitempty"`
	Categories  []Category   `json:"categories,omitempty"`
	Description string       `json:"description,omitempty"`
	ServiceArea *ServiceArea `json:"service_area,omitempty"`
	OpeningDate *OpeningDate `json:"opening_date,omitempty"`
	Industry    Industry     `json:"industry"`
}

// ServiceLabels returns every category name and nested service type in the
// order they appear on the profile.
func (s *BusinessProfileSnapshot) ServiceLabels() []string {
	if s == nil {
		return nil
	}
	var labels []string
	for _, c := range s.Categories {
		if c.Name != "" {
			labels = append(labels, c.Name)
		}
		labels = append(labels, c.ServiceTypes...)
	}
	return labels
}

// BusinessRecord is what the snapshot store holds for one intelligence id.
type BusinessRecord struct {
	IntelligenceID string                  `json:"intelligence_id"`
	Profile        BusinessProfileSnapshot `json:"gbp_data"`
	DataScore      DataScore               `json:"data_score"`
}
