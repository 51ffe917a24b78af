// Package registry holds the fixed intake question catalog and the
// applicability rules that decide which catalog questions are candidates for
// a given business.
package registry

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/smart-intake/internal/model"
)

// Catalog question ids.
const (
	QuestionServices         = "services"
	QuestionDifferentiators  = "differentiators"
	QuestionEmergencyService = "emergency-service"
	QuestionBusinessStage    = "business-stage"
	QuestionServiceRadius    = "service-radius"
	QuestionBrandPersonality = "brand-personality"
	QuestionTeamSize         = "team-size"
)

// Applicability is a declarative predicate over the intake request. The
// industry filter must pass first; then any one trigger makes the question a
// candidate.
type Applicability struct {
	Industries         []model.Industry `json:"industries,omitempty"`
	Always             bool             `json:"always,omitempty"`
	MaxTotal           *float64         `json:"max_total,omitempty"`
	WhenMissing        []string         `json:"when_missing,omitempty"`
	WhenNoServiceAreas bool             `json:"when_no_service_areas,omitempty"`
}

// Entry is one catalog question plus its applicability rule. When
// IndustryOptions is set the question's options are taken from it for the
// request's industry, falling back to the general list.
type Entry struct {
	Question        model.SmartQuestion                       `json:"question"`
	AppliesWhen     Applicability                             `json:"applies_when"`
	IndustryOptions map[model.Industry][]model.QuestionOption `json:"industry_options,omitempty"`
}

// EvalInput is the slice of the intake request the catalog looks at.
type EvalInput struct {
	Industry    model.Industry
	DataScore   model.DataScore
	MissingData []string
}

// Applies reports whether the rule selects the question for in.
func (a Applicability) Applies(in EvalInput) bool {
	if len(a.Industries) > 0 && !containsIndustry(a.Industries, in.Industry) {
		return false
	}
	if a.Always {
		return true
	}
	if a.MaxTotal != nil && in.DataScore.Total < *a.MaxTotal {
		return true
	}
	for _, need := range a.WhenMissing {
		for _, m := range in.MissingData {
			if m == need {
				return true
			}
		}
	}
	return a.WhenNoServiceAreas && !in.DataScore.ServiceAreas
}

func containsIndustry(list []model.Industry, ind model.Industry) bool {
	for _, i := range list {
		if i == ind {
			return true
		}
	}
	return false
}

// Catalog is an ordered, validated set of entries. It is immutable after
// construction and safe for concurrent use.
type Catalog struct {
	entries []Entry
}

// NewCatalog validates entries and returns a catalog over them.
func NewCatalog(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, eris.New("registry: catalog is empty")
	}
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		q := e.Question
		if q.ID == "" {
			return nil, eris.Errorf("registry: entry %d has no id", i)
		}
		if seen[q.ID] {
			return nil, eris.Errorf("registry: duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
		if !model.ValidPriority(q.Priority) {
			return nil, eris.Errorf("registry: question %q has priority %d outside [%d,%d]",
				q.ID, q.Priority, model.PriorityHighest, model.PriorityLowest)
		}
		switch q.Type {
		case model.QuestionTypeSwipeCards, model.QuestionTypeServiceGrid,
			model.QuestionTypeQuickPick, model.QuestionTypeVisualBinary:
		default:
			return nil, eris.Errorf("registry: question %q has unknown type %q", q.ID, q.Type)
		}
		switch q.Category {
		case model.CategoryCritical, model.CategoryEnhancement, model.CategoryPersonalization:
		default:
			return nil, eris.Errorf("registry: question %q has unknown category %q", q.ID, q.Category)
		}
	}
	return &Catalog{entries: append([]Entry(nil), entries...)}, nil
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Evaluate returns deep copies of every applicable question in catalog order.
func (c *Catalog) Evaluate(in EvalInput) []model.SmartQuestion {
	var out []model.SmartQuestion
	for _, e := range c.entries {
		if !e.AppliesWhen.Applies(in) {
			continue
		}
		q := e.Question
		if e.IndustryOptions != nil {
			opts, ok := e.IndustryOptions[in.Industry]
			if !ok {
				opts = e.IndustryOptions[model.IndustryGeneral]
			}
			q.Options = opts
		}
		out = append(out, q.Clone())
	}
	return out
}

// Lookup returns a copy of the catalog question with the given id.
func (c *Catalog) Lookup(id string) (model.SmartQuestion, bool) {
	for _, e := range c.entries {
		if e.Question.ID == id {
			return e.Question.Clone(), true
		}
	}
	return model.SmartQuestion{}, false
}
