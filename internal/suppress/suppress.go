// Package suppress drops candidate questions whose data need is already
// satisfied with enough confidence, and explains each drop.
package suppress

import (
	"fmt"
	"math"

	"github.com/sells-group/smart-intake/internal/model"
)

// Source tag the scorer uses for answers given during onboarding.
const sourceManual = "manual"

// Thresholds holds the confidence a data need must reach before its question
// is suppressed. PerNeed overrides Default.
type Thresholds struct {
	Default float64
	PerNeed map[string]float64
}

// For returns the threshold for need.
func (t Thresholds) For(need string) float64 {
	if v, ok := t.PerNeed[need]; ok {
		return v
	}
	return t.Default
}

// Input is everything Apply reads.
type Input struct {
	Candidates      []model.SmartQuestion
	Confidence      model.ConfidenceMap
	Provenance      map[string]model.FieldProvenance
	Thresholds      Thresholds
	Total           float64
	MinCompleteness float64
}

// Result is the surviving questions in candidate order plus the audit trail.
type Result struct {
	Questions []model.SmartQuestion
	Info      model.SuppressionInfo
	// Restored lists critical question ids kept by the completeness safety
	// valve despite clearing their threshold.
	Restored []string
}

// Apply filters in.Candidates. It does not mutate its input and performs no
// I/O.
//
// If every critical candidate would be dropped while the business is below
// MinCompleteness, the critical candidates are kept so the business is still
// asked about its top gap.
func Apply(in Input) Result {
	res := Result{Info: model.SuppressionInfo{Reasons: map[string]string{}}}
	suppressed := make(map[string]bool)
	criticalSurvivor := false

	for _, q := range in.Candidates {
		if reason, ok := shouldSuppress(q, in); ok {
			suppressed[q.ID] = true
			res.Info.Reasons[q.ID] = reason
			continue
		}
		if q.Category == model.CategoryCritical {
			criticalSurvivor = true
		}
	}

	if !criticalSurvivor && in.Total < in.MinCompleteness {
		for _, q := range in.Candidates {
			if q.Category == model.CategoryCritical && suppressed[q.ID] {
				delete(suppressed, q.ID)
				delete(res.Info.Reasons, q.ID)
				res.Restored = append(res.Restored, q.ID)
			}
		}
	}

	for _, q := range in.Candidates {
		if !suppressed[q.ID] {
			res.Questions = append(res.Questions, q)
		}
	}
	res.Info.Count = len(suppressed)
	return res
}

func shouldSuppress(q model.SmartQuestion, in Input) (string, bool) {
	if q.DataNeed == "" {
		return "", false
	}
	c := in.Confidence.Get(q.DataNeed)
	if c <= 0 || c < in.Thresholds.For(q.DataNeed) {
		return "", false
	}
	return Reason(q.DataNeed, in.Provenance[q.DataNeed], c), true
}

// Reason renders the human-readable justification for suppressing the
// question behind need.
func Reason(need string, p model.FieldProvenance, confidence float64) string {
	if p.Source == sourceManual {
		return "already answered during onboarding"
	}
	pct := int(math.Round(confidence * 100))
	switch need {
	case model.NeedServiceRadius:
		return fmt.Sprintf("service radius inferred from %s (%d%% confidence)", radiusSource(p.Source), pct)
	case model.NeedYearsInBusiness:
		return fmt.Sprintf("years in business inferred from %s (%d%% confidence)", ageSource(p.Source), pct)
	case model.NeedServices:
		return fmt.Sprintf("services already known from profile (%d%% confidence)", pct)
	case model.NeedEmergencyService:
		return fmt.Sprintf("emergency availability advertised on profile (%d%% confidence)", pct)
	default:
		return fmt.Sprintf("confidently inferred from profile (%d%% confidence)", pct)
	}
}

func radiusSource(method string) string {
	switch method {
	case model.RadiusMethodPolygon:
		return "service-area polygon"
	case model.RadiusMethodPlaces:
		return "listed service-area places"
	default:
		return "profile"
	}
}

func ageSource(source string) string {
	switch source {
	case model.AgeSourceOpeningDate:
		return "profile opening date"
	case model.AgeSourceSinceYear, model.AgeSourceDuration:
		return "profile description"
	default:
		return "profile"
	}
}
