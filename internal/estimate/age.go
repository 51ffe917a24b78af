// Package estimate infers business facts (age, service radius) from noisy
// profile data, each with a confidence score.
package estimate

import (
	"regexp"
	"strconv"
	"time"

	"github.com/sells-group/smart-intake/internal/model"
)

// Confidence assigned per extraction strategy.
const (
	openingDateConfidence = 0.9
	sinceYearConfidence   = 0.7
	durationConfidence    = 0.5

	// DefaultYearsConfidenceThreshold is the confidence at or above which the
	// years-in-business question is skipped.
	DefaultYearsConfidenceThreshold = 0.6

	earliestPlausibleYear = 1800
)

var (
	// "since 1998", "established in 1998", "est. 1998", "founded 1998",
	// "in business since 1998", "serving the area since 1998".
	sinceYearRe = regexp.MustCompile(`(?i)\b(?:since|established(?:\s+in)?|est\.?|founded(?:\s+in)?|opened(?:\s+in)?)\s+(1[89]\d{2}|20\d{2})\b`)

	// "over 25 years", "more than 30 years", "25+ years of experience",
	// "40 years in business", "in business for 25 years",
	// "serving Tucson families for over 20 years".
	durationRe = regexp.MustCompile(`(?i)\b(?:` +
		`(?:over|more\s+than)\s+(\d{1,3})\+?\s+years?` +
		`|(\d{1,3})\+?\s+years?\s+(?:of\s+)?(?:experience|in\s+business|of\s+service)` +
		`|(?:in\s+business|operating|family[\s-]owned|serving(?:\s+[\w,'&-]+){0,6}?)\s+for\s+(?:(?:over|nearly|almost|more\s+than)\s+)?(\d{1,3})\+?\s+years?` +
		`)\b`)
)

// ExtractBusinessAge derives years in business from the snapshot, trying an
// explicit opening date first, then "since <year>" phrases in the description,
// then "<n> years" phrases. With no signal it returns nil years and zero
// confidence.
func ExtractBusinessAge(snap *model.BusinessProfileSnapshot, now time.Time) model.AgeEstimate {
	if snap == nil {
		return noAge()
	}

	if est, ok := fromOpeningDate(snap.OpeningDate, now); ok {
		return est
	}
	if est, ok := fromSinceYear(snap.Description, now); ok {
		return est
	}
	if est, ok := fromDuration(snap.Description); ok {
		return est
	}
	return noAge()
}

func noAge() model.AgeEstimate {
	return model.AgeEstimate{Confidence: 0, Source: model.AgeSourceNone}
}

func fromOpeningDate(d *model.OpeningDate, now time.Time) (model.AgeEstimate, bool) {
	if d == nil || !plausibleYear(d.Year, now) {
		return model.AgeEstimate{}, false
	}
	years := now.Year() - d.Year
	if d.Month >= 1 && d.Month <= 12 && time.Month(d.Month) > now.Month() {
		years--
	}
	if years < 0 {
		years = 0
	}
	return model.AgeEstimate{
		Years:      &years,
		Confidence: openingDateConfidence,
		Source:     model.AgeSourceOpeningDate,
		Evidence:   strconv.Itoa(d.Year),
	}, true
}

func fromSinceYear(text string, now time.Time) (model.AgeEstimate, bool) {
	// The earliest plausible year wins: "since 1998 ... renovated in 2015".
	best := 0
	evidence := ""
	for _, m := range sinceYearRe.FindAllStringSubmatch(text, -1) {
		y, err := strconv.Atoi(m[1])
		if err != nil || !plausibleYear(y, now) {
			continue
		}
		if best == 0 || y < best {
			best = y
			evidence = m[0]
		}
	}
	if best == 0 {
		return model.AgeEstimate{}, false
	}
	years := now.Year() - best
	return model.AgeEstimate{
		Years:      &years,
		Confidence: sinceYearConfidence,
		Source:     model.AgeSourceSinceYear,
		Evidence:   evidence,
	}, true
}

func fromDuration(text string) (model.AgeEstimate, bool) {
	best := 0
	evidence := ""
	for _, m := range durationRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(firstGroup(m))
		if err != nil || n <= 0 || n > 150 {
			continue
		}
		if n > best {
			best = n
			evidence = m[0]
		}
	}
	if best == 0 {
		return model.AgeEstimate{}, false
	}
	return model.AgeEstimate{
		Years:      &best,
		Confidence: durationConfidence,
		Source:     model.AgeSourceDuration,
		Evidence:   evidence,
	}, true
}

// firstGroup returns the first non-empty capture; each durationRe
// alternative captures its number in its own group.
func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

func plausibleYear(y int, now time.Time) bool {
	return y >= earliestPlausibleYear && y <= now.Year()
}

// ShouldAskYearsInBusinessQuestion reports whether the extraction is too weak
// to skip the years-in-business question.
func ShouldAskYearsInBusinessQuestion(est model.AgeEstimate, threshold float64) bool {
	return est.Years == nil || est.Confidence < threshold
}
