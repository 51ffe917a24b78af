// Package scorer aggregates per-field derivation confidence into the
// composite confidence map that drives question suppression.
package scorer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/sells-group/smart-intake/internal/model"
	"github.com/sells-group/smart-intake/internal/normalize"
)

// Provenance sources that are not derivation methods.
const (
	SourceProfile     = "profile"
	SourceProfileText = "profile_text"
	SourceManual      = "manual"
)

const (
	emergencyCategoryConfidence = 0.9
	emergencyTextConfidence     = 0.85
)

// emergencyKeywords are lower-cased phrases that advertise round-the-clock or
// emergency availability in a profile description. A bare "emergency" is too
// weak on its own ("not for emergencies").
var emergencyKeywords = []string{
	"24/7", "24-7", "24 hour", "24-hour", "emergency service", "emergency repair",
	"emergency call", "after hours", "after-hours", "same day service",
}

// negators cancel a keyword when they appear within negationWindow words
// before it in the same clause.
var negators = map[string]bool{
	"no": true, "not": true, "non": true, "never": true, "nor": true, "without": true,
	"don't": true, "dont": true, "doesn't": true, "doesnt": true, "cannot": true, "can't": true,
}

const negationWindow = 4

// manualNeeds are the data needs a business can answer directly during
// onboarding; a manual answer is authoritative.
var manualNeeds = []string{
	model.NeedServices,
	model.NeedYearsInBusiness,
	model.NeedServiceRadius,
	model.NeedEmergencyService,
	model.NeedDifferentiators,
	model.NeedBrandStyle,
	model.NeedTeamSize,
}

// Input is everything the scorer reads. Derived may be nil, in which case
// only manual answers contribute.
type Input struct {
	Derived   *model.DerivedContext
	Snapshot  *model.BusinessProfileSnapshot
	DataScore model.DataScore
}

// Result is the composite confidence map plus where each value came from.
type Result struct {
	Confidence model.ConfidenceMap
	Provenance map[string]model.FieldProvenance
}

// Score builds the confidence map. Every need in manualNeeds is present in
// the result; every value is clamped to [0,1]. Score performs no I/O.
func Score(in Input) Result {
	res := Result{
		Confidence: make(model.ConfidenceMap, len(manualNeeds)),
		Provenance: make(map[string]model.FieldProvenance),
	}
	for _, need := range manualNeeds {
		res.Confidence[need] = 0
	}

	if d := in.Derived; d != nil {
		res.set(servicesConfidence(d))
		res.set(model.FieldProvenance{
			Need:       model.NeedYearsInBusiness,
			Source:     d.BusinessAge.Source,
			Detail:     ageDetail(d.BusinessAge),
			Confidence: d.BusinessAge.Confidence,
		})
		res.set(model.FieldProvenance{
			Need:       model.NeedServiceRadius,
			Source:     d.Radius.Method,
			Detail:     radiusDetail(d.Radius),
			Confidence: d.Radius.Confidence,
		})
	}
	if in.Snapshot != nil {
		res.set(emergencyConfidence(in.Snapshot))
	}

	for _, need := range manualNeeds {
		if in.DataScore.HasManual(need) {
			res.set(model.FieldProvenance{
				Need:       need,
				Source:     SourceManual,
				Detail:     "answered during onboarding",
				Confidence: 1,
			})
		}
	}
	return res
}

// set records p when it is at least as confident as what is already there.
func (r *Result) set(p model.FieldProvenance) {
	p.Confidence = Clamp(p.Confidence)
	if cur, ok := r.Provenance[p.Need]; ok && cur.Confidence > p.Confidence {
		return
	}
	r.Confidence[p.Need] = p.Confidence
	if p.Confidence > 0 {
		r.Provenance[p.Need] = p
	}
}

// servicesConfidence is the fraction of expected services the profile
// already confirms.
func servicesConfidence(d *model.DerivedContext) model.FieldProvenance {
	p := model.FieldProvenance{Need: model.NeedServices, Source: SourceProfile}
	if len(d.Expected) == 0 {
		return p
	}
	known := normalize.KeySet(d.KnownServices)
	covered := 0
	for _, e := range d.Expected {
		if known[e.Key] {
			covered++
		}
	}
	p.Confidence = float64(covered) / float64(len(d.Expected))
	p.Detail = fmt.Sprintf("%d of %d expected services confirmed", covered, len(d.Expected))
	return p
}

func emergencyConfidence(snap *model.BusinessProfileSnapshot) model.FieldProvenance {
	p := model.FieldProvenance{Need: model.NeedEmergencyService, Source: SourceProfile}
	for _, c := range snap.Categories {
		if affirms(strings.ToLower(c.Name), "emergency") {
			p.Confidence = emergencyCategoryConfidence
			p.Detail = fmt.Sprintf("category %q", c.Name)
			return p
		}
	}
	desc := strings.ToLower(snap.Description)
	for _, kw := range emergencyKeywords {
		if affirms(desc, kw) {
			p.Source = SourceProfileText
			p.Confidence = emergencyTextConfidence
			p.Detail = fmt.Sprintf("description mentions %q", kw)
			return p
		}
	}
	return p
}

// affirms reports whether text mentions kw at least once without a negator
// shortly before it.
func affirms(text, kw string) bool {
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], kw)
		if i < 0 {
			return false
		}
		at := from + i
		if !negated(text[:at]) {
			return true
		}
		from = at + len(kw)
	}
	return false
}

// negated looks at the tail of the clause that ends at prefix.
func negated(prefix string) bool {
	if j := strings.LastIndexAny(prefix, ".;:,!?"); j >= 0 {
		prefix = prefix[j+1:]
	}
	words := strings.FieldsFunc(prefix, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\'' && r != '’'
	})
	if len(words) > negationWindow {
		words = words[len(words)-negationWindow:]
	}
	for _, w := range words {
		if negators[strings.ReplaceAll(w, "’", "'")] {
			return true
		}
	}
	return false
}

func ageDetail(a model.AgeEstimate) string {
	if a.Years == nil {
		return ""
	}
	if a.Evidence != "" {
		return fmt.Sprintf("~%d years, %q", *a.Years, a.Evidence)
	}
	return fmt.Sprintf("~%d years", *a.Years)
}

func radiusDetail(r model.RadiusEstimate) string {
	if r.Miles == nil {
		return ""
	}
	return fmt.Sprintf("~%.0f miles", *r.Miles)
}

// Clamp bounds c to [0,1].
func Clamp(c float64) float64 {
	switch {
	case c != c: // NaN
		return 0
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
