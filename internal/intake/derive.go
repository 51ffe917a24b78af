package intake

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sells-group/smart-intake/internal/analytics"
	"github.com/sells-group/smart-intake/internal/climate"
	"github.com/sells-group/smart-intake/internal/estimate"
	"github.com/sells-group/smart-intake/internal/expectations"
	"github.com/sells-group/smart-intake/internal/model"
	"github.com/sells-group/smart-intake/internal/monitoring"
	"github.com/sells-group/smart-intake/internal/normalize"
	"github.com/sells-group/smart-intake/internal/scorer"
)

// derivation is the enhanced path's output for one request.
type derivation struct {
	ctx      *model.DerivedContext
	industry model.Industry
	// tableZone is the expectations zone actually used, which is national
	// when the detected zone has no entry.
	tableZone model.ClimateZone
}

// derive builds the derived context, writes it back and emits the analytics
// event. Any failure, including a panic, returns nil so the caller falls
// back to the basic path.
func (g *Generator) derive(ctx context.Context, req Request) (dc *derivation) {
	ctx, span := g.tracer.Start(ctx, "intake.derive")
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			g.degrade(span, req, "panic", eris.Errorf("intake: derive panic: %v", r))
			dc = nil
		}
	}()

	if g.deps.Store == nil || g.deps.Expectations == nil {
		g.degrade(span, req, "unconfigured", eris.New("intake: enhanced path has no store or expectations"))
		return nil
	}

	rec, err := g.deps.Store.GetSnapshot(ctx, req.IntelligenceID)
	if err != nil {
		g.degrade(span, req, "snapshot", err)
		return nil
	}
	table, err := g.deps.Expectations.Load(ctx)
	if err != nil {
		g.degrade(span, req, "expectations", err)
		return nil
	}

	dc, err = buildContext(req, rec, table, g.settings, g.deps.Now())
	if err != nil {
		g.degrade(span, req, "expectations", err)
		return nil
	}
	d := dc.ctx
	span.SetAttributes(
		attribute.String("intake.climate_zone", string(d.ClimateZone)),
		attribute.Int("intake.known_services", len(d.KnownServices)),
		attribute.Int("intake.missing_expected", len(d.MissingExpected)),
	)

	g.writeBack(ctx, req.IntelligenceID, "derived", d.Patch())

	th := g.settings.Thresholds
	analytics.Emit(ctx, g.deps.Sink, analytics.EventContextDerived, map[string]any{
		"intelligence_id":       req.IntelligenceID,
		"industry":              string(req.Industry),
		"climate_zone":          string(d.ClimateZone),
		"expectations_zone":     string(dc.tableZone),
		"known_services":        len(d.KnownServices),
		"missing_expected":      len(d.MissingExpected),
		"expectations_version":  d.ExpectationsVersion,
		"years_confidence":      d.BusinessAge.Confidence,
		"radius_method":         d.Radius.Method,
		"ask_years_in_business": estimate.ShouldAskYearsInBusinessQuestion(d.BusinessAge, th.For(model.NeedYearsInBusiness)),
		"ask_service_radius":    estimate.ShouldAskServiceRadiusQuestion(d.Radius, th.For(model.NeedServiceRadius)),
	})
	return dc
}

func (g *Generator) degrade(span trace.Span, req Request, stage string, err error) {
	monitoring.DerivationFailures.WithLabelValues(stage).Inc()
	span.RecordError(err)
	zap.L().Warn("intake: derivation failed, using basic path",
		zap.String("intelligence_id", req.IntelligenceID),
		zap.String("stage", stage),
		zap.Error(err),
	)
}

// buildContext is the pure part of derivation.
func buildContext(req Request, rec *model.BusinessRecord, table *expectations.Table, s Settings, now time.Time) (*derivation, error) {
	profile := rec.Profile

	zone := resolveZone(profile.Location, rec.DataScore.ClimateZone)
	expected, used, err := table.Expected(req.Industry, zone, s.PrevalenceThreshold)
	if err != nil {
		return nil, eris.Wrap(err, "intake: expected services")
	}

	manual := req.DataScore.Manual
	if manual == nil {
		manual = rec.DataScore.Manual
	}
	known := knownServices(&profile, manual)

	d := &model.DerivedContext{
		ClimateZone:         zone,
		KnownServices:       known,
		Expected:            expected,
		MissingExpected:     missingExpected(expected, known, s.MaxMissingExpected),
		BusinessAge:         estimate.ExtractBusinessAge(&profile, now),
		Radius:              estimate.CalculateServiceRadius(profile.ServiceArea, profile.Location),
		ExpectationsVersion: table.Version,
	}

	score := req.DataScore
	score.Manual = manual
	res := scorer.Score(scorer.Input{Derived: d, Snapshot: &profile, DataScore: score})
	d.Confidence = res.Confidence
	d.Provenance = res.Provenance

	return &derivation{ctx: d, industry: req.Industry, tableZone: used}, nil
}

// resolveZone classifies valid coordinates, else reuses a zone stored by an
// earlier run, else falls back to national.
func resolveZone(loc *model.LatLng, stored *string) model.ClimateZone {
	if loc.Valid() {
		return climate.Classify(loc.Lat, loc.Lng)
	}
	if stored != nil {
		switch z := model.ClimateZone(*stored); z {
		case model.ZoneCold, model.ZoneArid, model.ZoneHumid, model.ZoneTemperate:
			return z
		}
	}
	return model.ZoneNational
}

// knownServices normalizes every profile label plus any services the
// business entered manually.
func knownServices(profile *model.BusinessProfileSnapshot, manual map[string]any) []string {
	labels := profile.ServiceLabels()
	switch v := manual[model.NeedServices].(type) {
	case []string:
		labels = append(labels, v...)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				labels = append(labels, s)
			}
		}
	}
	return normalize.ServiceKeys(labels)
}

// missingExpected returns expected keys absent from known, most prevalent
// first, capped at max. The result never overlaps known.
func missingExpected(expected []model.ExpectedService, known []string, max int) []string {
	have := normalize.KeySet(known)
	out := []string{}
	for _, e := range expected {
		if len(out) >= max {
			break
		}
		if !have[e.Key] {
			out = append(out, e.Key)
		}
	}
	return out
}
