package intake

import (
	"fmt"
	"math"
	"strings"

	"github.com/sells-group/smart-intake/internal/model"
	"github.com/sells-group/smart-intake/internal/normalize"
	"github.com/sells-group/smart-intake/internal/registry"
)

// MaxServiceOptions caps the services grid.
const MaxServiceOptions = 12

// annotateServices rewrites the services question's options in place: known
// services first (pre-checked), then missing-but-expected services with a
// prevalence tooltip, then the remaining static options.
func annotateServices(candidates []model.SmartQuestion, dc *derivation, popularAt float64) {
	for i := range candidates {
		if candidates[i].ID != registry.QuestionServices {
			continue
		}
		candidates[i].Options = serviceOptions(candidates[i].Options, dc, popularAt)
	}
}

func serviceOptions(static []model.QuestionOption, dc *derivation, popularAt float64) []model.QuestionOption {
	d := dc.ctx
	labels := make(map[string]string, len(static))
	for _, o := range static {
		labels[o.Value] = o.Label
	}
	label := func(key string) string {
		if l, ok := labels[key]; ok {
			return l
		}
		return normalize.Label(key)
	}
	prevalence := make(map[string]float64, len(d.Expected))
	for _, e := range d.Expected {
		prevalence[e.Key] = e.Prevalence
	}

	out := make([]model.QuestionOption, 0, MaxServiceOptions)
	seen := make(map[string]bool)
	add := func(o model.QuestionOption) {
		if len(out) >= MaxServiceOptions || seen[o.Value] {
			return
		}
		seen[o.Value] = true
		out = append(out, o)
	}

	for _, key := range d.KnownServices {
		add(model.QuestionOption{
			Value:      key,
			Label:      label(key),
			Checked:    true,
			Confidence: model.Ptr(1.0),
			Tooltip:    "Listed on your business profile",
		})
	}
	for _, key := range d.MissingExpected {
		p := prevalence[key]
		add(model.QuestionOption{
			Value:      key,
			Label:      label(key),
			Popular:    p >= popularAt,
			Confidence: model.Ptr(p),
			Tooltip:    prevalenceTooltip(p, dc.industry, dc.tableZone),
		})
	}
	for _, o := range static {
		add(o)
	}
	return out
}

func prevalenceTooltip(p float64, industry model.Industry, zone model.ClimateZone) string {
	pct := int(math.Round(p * 100))
	who := strings.ReplaceAll(string(industry), "_", " ")
	if zone == model.ZoneNational || zone == "" {
		return fmt.Sprintf("%d%% of %s businesses nationwide offer this", pct, who)
	}
	return fmt.Sprintf("%d%% of %s businesses in %s climates offer this", pct, who, zone)
}
