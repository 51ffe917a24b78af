// Package intake decides which onboarding questions to ask a business. It
// evaluates the question catalog, optionally derives context from the
// business profile to pre-fill and suppress questions, and bounds the result.
package intake

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sells-group/smart-intake/internal/analytics"
	"github.com/sells-group/smart-intake/internal/expectations"
	"github.com/sells-group/smart-intake/internal/model"
	"github.com/sells-group/smart-intake/internal/monitoring"
	"github.com/sells-group/smart-intake/internal/registry"
	"github.com/sells-group/smart-intake/internal/suppress"
)

// SnapshotStore is the slice of the store the generator needs.
type SnapshotStore interface {
	GetSnapshot(ctx context.Context, id string) (*model.BusinessRecord, error)
	UpdateScore(ctx context.Context, id string, patch model.ScorePatch) (model.DataScore, error)
}

// ExpectationsLoader returns the expectations table. *expectations.Cache
// implements it.
type ExpectationsLoader interface {
	Load(ctx context.Context) (*expectations.Table, error)
}

// Options is the per-call strategy.
type Options struct {
	// Enhanced runs context derivation, suppression and write-back.
	Enhanced bool
}

// Settings are the tunable limits and thresholds.
type Settings struct {
	MaxQuestions        int
	PrevalenceThreshold float64
	MaxMissingExpected  int
	MinCompleteness     float64
	Thresholds          suppress.Thresholds
}

// DefaultSettings returns the production defaults.
func DefaultSettings() Settings {
	return Settings{
		MaxQuestions:        model.MaxQuestions,
		PrevalenceThreshold: 0.7,
		MaxMissingExpected:  5,
		MinCompleteness:     50,
		Thresholds: suppress.Thresholds{
			Default: 0.8,
			PerNeed: map[string]float64{
				model.NeedYearsInBusiness: 0.6,
				model.NeedServiceRadius:   0.7,
				model.NeedServices:        0.85,
			},
		},
	}
}

// Deps are the generator's collaborators. Catalog is required; the rest are
// only used on the enhanced path and may be nil, in which case that part of
// the path degrades.
type Deps struct {
	Catalog      *registry.Catalog
	Expectations ExpectationsLoader
	Store        SnapshotStore
	// Sink is wrapped in an analytics.AsyncSink unless it already is one, so
	// a slow sink never delays Generate.
	Sink analytics.Sink
	// Now defaults to time.Now.
	Now func() time.Time
}

// Generator produces bounded, ordered question lists. It is safe for
// concurrent use.
type Generator struct {
	deps     Deps
	settings Settings
	validate *validator.Validate
	tracer   trace.Tracer
	// async is set when the generator owns the sink's delivery worker.
	async *analytics.AsyncSink
}

// NewGenerator creates a generator. A nil catalog uses registry.Default.
func NewGenerator(deps Deps, settings Settings) *Generator {
	if deps.Catalog == nil {
		deps.Catalog = registry.Default()
	}
	var async *analytics.AsyncSink
	switch s := deps.Sink.(type) {
	case nil:
		deps.Sink = analytics.NopSink{}
	case analytics.NopSink, *analytics.AsyncSink:
	default:
		async = analytics.NewAsync(s, analytics.DefaultQueueSize, analytics.DefaultDeliveryTimeout)
		deps.Sink = async
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if settings.MaxQuestions <= 0 || settings.MaxQuestions > model.MaxQuestions {
		settings.MaxQuestions = model.MaxQuestions
	}
	return &Generator{
		deps:     deps,
		settings: settings,
		validate: newValidator(),
		tracer:   otel.Tracer("github.com/sells-group/smart-intake/internal/intake"),
		async:    async,
	}
}

// Close delivers pending analytics events and stops the delivery worker the
// generator started. Events emitted afterwards are dropped and counted.
func (g *Generator) Close() {
	if g.async != nil {
		g.async.Close()
	}
}

func mode(opts Options) string {
	if opts.Enhanced {
		return "enhanced"
	}
	return "basic"
}

// Generate validates req and returns the questions to ask. Validation errors
// wrap ErrValidation. Failures on the enhanced path never surface here; they
// degrade to the basic question list.
func (g *Generator) Generate(ctx context.Context, req Request, opts Options) (resp *Response, err error) {
	m := mode(opts)
	start := time.Now()
	ctx, span := g.tracer.Start(ctx, "intake.Generate", trace.WithAttributes(
		attribute.String("intake.intelligence_id", req.IntelligenceID),
		attribute.String("intake.industry", string(req.Industry)),
		attribute.String("intake.mode", m),
	))
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, eris.Errorf("intake: generate panic: %v", r)
		}
		outcome := "ok"
		switch {
		case errors.Is(err, ErrValidation):
			outcome = "invalid"
		case err != nil:
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		monitoring.IntakeRequests.WithLabelValues(m, outcome).Inc()
		monitoring.GenerateDuration.WithLabelValues(m).Observe(time.Since(start).Seconds())
		span.End()
	}()

	if err := validateRequest(g.validate, req); err != nil {
		return nil, err
	}

	var dc *derivation
	if opts.Enhanced {
		dc = g.derive(ctx, req)
	}

	candidates := g.deps.Catalog.Evaluate(registry.EvalInput{
		Industry:    req.Industry,
		DataScore:   req.DataScore,
		MissingData: req.MissingData,
	})
	if dc != nil {
		annotateServices(candidates, dc, g.settings.PrevalenceThreshold)
	}

	survivors := candidates
	var info *model.SuppressionInfo
	if dc != nil {
		survivors, info = g.suppress(ctx, req, dc, candidates)
	}

	questions := model.Bound(survivors, g.settings.MaxQuestions)
	if questions == nil {
		questions = []model.SmartQuestion{}
	}
	span.SetAttributes(
		attribute.Int("intake.candidates", len(candidates)),
		attribute.Int("intake.questions", len(questions)),
	)

	return &Response{
		Success:         true,
		Questions:       questions,
		TotalQuestions:  len(questions),
		SuppressionInfo: info,
	}, nil
}

func (g *Generator) suppress(ctx context.Context, req Request, dc *derivation, candidates []model.SmartQuestion) ([]model.SmartQuestion, *model.SuppressionInfo) {
	res := suppress.Apply(suppress.Input{
		Candidates:      candidates,
		Confidence:      dc.ctx.Confidence,
		Provenance:      dc.ctx.Provenance,
		Thresholds:      g.settings.Thresholds,
		Total:           req.DataScore.Total,
		MinCompleteness: g.settings.MinCompleteness,
	})
	if len(res.Restored) > 0 {
		zap.L().Info("intake: kept critical questions below completeness bar",
			zap.String("intelligence_id", req.IntelligenceID),
			zap.Strings("question_ids", res.Restored),
			zap.Float64("total", req.DataScore.Total),
		)
	}
	if res.Info.Count == 0 {
		return res.Questions, nil
	}

	for id := range res.Info.Reasons {
		monitoring.QuestionsSuppressed.WithLabelValues(id).Inc()
	}
	info := res.Info
	g.writeBack(ctx, req.IntelligenceID, "suppression", model.ScorePatch{SuppressionInfo: &info})

	analytics.Emit(ctx, g.deps.Sink, analytics.EventQuestionsSuppressed, map[string]any{
		"intelligence_id":      req.IntelligenceID,
		"industry":             string(req.Industry),
		"candidates":           len(candidates),
		"suppressed":           info.Count,
		"reduction_percent":    reductionPercent(info.Count, len(candidates)),
		"reasons":              info.Reasons,
		"expectations_version": dc.ctx.ExpectationsVersion,
	})
	return res.Questions, &info
}

// writeBack persists patch and swallows failures.
func (g *Generator) writeBack(ctx context.Context, id, kind string, patch model.ScorePatch) {
	if g.deps.Store == nil || patch.Empty() {
		return
	}
	if _, err := g.deps.Store.UpdateScore(ctx, id, patch); err != nil {
		monitoring.WriteBackFailures.WithLabelValues(kind).Inc()
		zap.L().Warn("intake: score write-back failed",
			zap.String("intelligence_id", id),
			zap.String("kind", kind),
			zap.Error(err),
		)
	}
}

func reductionPercent(suppressed, candidates int) int {
	if candidates == 0 {
		return 0
	}
	return int(math.Round(float64(suppressed) * 100 / float64(candidates)))
}

// FailureResponse is the generic body returned when Generate fails for a
// reason other than validation.
func FailureResponse() *Response {
	return &Response{
		Success:   false,
		Questions: []model.SmartQuestion{},
		Error:     "failed to generate questions",
	}
}
