package model

// ClimateZone is a coarse climate category used to contextualize expected
// services.
type ClimateZone string

const (
	ZoneCold      ClimateZone = "cold"
	ZoneArid      ClimateZone = "arid"
	ZoneHumid     ClimateZone = "humid"
	ZoneTemperate ClimateZone = "temperate"
	ZoneNational  ClimateZone = "national"
)

// Radius inference methods.
const (
	RadiusMethodPolygon     = "polygon"
	RadiusMethodPlaces      = "places-list"
	RadiusMethodUnavailable = "unavailable"
)

// Age extraction sources.
const (
	AgeSourceOpeningDate = "opening_date"
	AgeSourceSinceYear   = "description_year"
	AgeSourceDuration    = "description_duration"
	AgeSourceNone        = "none"
)

// AgeEstimate is the Business Age Extractor's result. Years is nil when no
// signal was found.
type AgeEstimate struct {
	Years      *int    `json:"years,omitempty"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
	Evidence   string  `json:"evidence,omitempty"`
}

// RadiusEstimate is the Service Radius Calculator's result. Miles is nil when
// the method is unavailable.
type RadiusEstimate struct {
	Miles      *float64 `json:"miles,omitempty"`
	Confidence float64  `json:"confidence"`
	Method     string   `json:"method"`
}

// ExpectedService is one service the expectations table predicts for the
// business's industry and climate zone.
type ExpectedService struct {
	Key        string  `json:"key"`
	Prevalence float64 `json:"prevalence"`
}

// ConfidenceMap maps a data-need key to a confidence in [0,1].
type ConfidenceMap map[string]float64

// Get returns the confidence for need, or 0 when absent.
func (c ConfidenceMap) Get(need string) float64 {
	if c == nil {
		return 0
	}
	return c[need]
}

// FieldProvenance records where a confidence value came from so suppression
// can explain itself.
type FieldProvenance struct {
	Need       string  `json:"need"`
	Source     string  `json:"source"`
	Detail     string  `json:"detail,omitempty"`
	Confidence float64 `json:"confidence"`
}

// DerivedContext is the per-request scratch record built by the enhanced
// intake path.
type DerivedContext struct {
	ClimateZone         ClimateZone                `json:"climate_zone"`
	KnownServices       []string                   `json:"known_services"`
	Expected            []ExpectedService          `json:"expected"`
	MissingExpected     []string                   `json:"missing_expected"`
	BusinessAge         AgeEstimate                `json:"business_age"`
	Radius              RadiusEstimate             `json:"radius"`
	Confidence          ConfidenceMap              `json:"confidence"`
	Provenance          map[string]FieldProvenance `json:"provenance,omitempty"`
	ExpectationsVersion string                     `json:"expectations_version"`
}

// Patch converts the derived context into the fields written back to the
// business's score record.
func (d *DerivedContext) Patch() ScorePatch {
	zone := string(d.ClimateZone)
	p := ScorePatch{
		ClimateZone:       &zone,
		ConfirmedServices: append([]string{}, d.KnownServices...),
		MissingExpected:   append([]string{}, d.MissingExpected...),
		YearsConfidence:   Ptr(d.BusinessAge.Confidence),
		RadiusConfidence:  Ptr(d.Radius.Confidence),
		RadiusMethod:      Ptr(d.Radius.Method),
	}
	if d.BusinessAge.Years != nil {
		p.ExtractedYearsInBusiness = Ptr(*d.BusinessAge.Years)
	}
	if d.Radius.Miles != nil {
		p.CalculatedServiceRadius = Ptr(*d.Radius.Miles)
	}
	return p
}
