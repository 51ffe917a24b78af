package model

// SuppressionInfo summarizes which questions were dropped and why.
type SuppressionInfo struct {
	Count   int               `json:"count"`
	Reasons map[string]string `json:"reasons"`
}

// DataScore is the per-business completeness record. Total and Breakdown
// come from the business-intelligence collaborator; the remaining fields are
// written back by the intake engine after derivation.
type DataScore struct {
	Total        float64            `json:"total" validate:"gte=0,lte=100"`
	Breakdown    map[string]float64 `json:"breakdown,omitempty"`
	Manual       map[string]any     `json:"manual,omitempty"`
	ServiceAreas bool               `json:"serviceAreas,omitempty"`

	ClimateZone              *string          `json:"climate_zone,omitempty"`
	ConfirmedServices        []string         `json:"confirmed_services,omitempty"`
	MissingExpected          []string         `json:"missing_expected,omitempty"`
	ExtractedYearsInBusiness *int             `json:"extracted_years_in_business,omitempty"`
	YearsConfidence          *float64         `json:"years_confidence,omitempty"`
	CalculatedServiceRadius  *float64         `json:"calculated_service_radius,omitempty"`
	RadiusConfidence         *float64         `json:"radius_confidence,omitempty"`
	RadiusMethod             *string          `json:"radius_method,omitempty"`
	SuppressionInfo          *SuppressionInfo `json:"suppression_info,omitempty"`
}

// HasManual reports whether the business already answered the given data need.
func (d DataScore) HasManual(need string) bool {
	if d.Manual == nil {
		return false
	}
	v, ok := d.Manual[need]
	return ok && v != nil
}

// ScorePatch carries the derived fields to write back. Nil fields are left
// untouched by Merge.
type ScorePatch struct {
	ClimateZone              *string          `json:"climate_zone,omitempty"`
	ConfirmedServices        []string         `json:"confirmed_services,omitempty"`
	MissingExpected          []string         `json:"missing_expected,omitempty"`
	ExtractedYearsInBusiness *int             `json:"extracted_years_in_business,omitempty"`
	YearsConfidence          *float64         `json:"years_confidence,omitempty"`
	CalculatedServiceRadius  *float64         `json:"calculated_service_radius,omitempty"`
	RadiusConfidence         *float64         `json:"radius_confidence,omitempty"`
	RadiusMethod             *string          `json:"radius_method,omitempty"`
	SuppressionInfo          *SuppressionInfo `json:"suppression_info,omitempty"`
}

// Empty reports whether the patch would change nothing.
func (p ScorePatch) Empty() bool {
	return p.ClimateZone == nil && p.ConfirmedServices == nil && p.MissingExpected == nil &&
		p.ExtractedYearsInBusiness == nil && p.YearsConfidence == nil &&
		p.CalculatedServiceRadius == nil && p.RadiusConfidence == nil &&
		p.RadiusMethod == nil && p.SuppressionInfo == nil
}

// Merge returns a copy of d with every non-nil patch field applied.
func (d DataScore) Merge(p ScorePatch) DataScore {
	out := d
	if p.ClimateZone != nil {
		out.ClimateZone = p.ClimateZone
	}
	if p.ConfirmedServices != nil {
		out.ConfirmedServices = append([]string(nil), p.ConfirmedServices...)
	}
	if p.MissingExpected != nil {
		out.MissingExpected = append([]string(nil), p.MissingExpected...)
	}
	if p.ExtractedYearsInBusiness != nil {
		out.ExtractedYearsInBusiness = p.ExtractedYearsInBusiness
	}
	if p.YearsConfidence != nil {
		out.YearsConfidence = p.YearsConfidence
	}
	if p.CalculatedServiceRadius != nil {
		out.CalculatedServiceRadius = p.CalculatedServiceRadius
	}
	if p.RadiusConfidence != nil {
		out.RadiusConfidence = p.RadiusConfidence
	}
	if p.RadiusMethod != nil {
		out.RadiusMethod = p.RadiusMethod
	}
	if p.SuppressionInfo != nil {
		info := *p.SuppressionInfo
		info.Reasons = make(map[string]string, len(p.SuppressionInfo.Reasons))
		for k, v := range p.SuppressionInfo.Reasons {
			info.Reasons[k] = v
		}
		out.SuppressionInfo = &info
	}
	return out
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
