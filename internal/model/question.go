package model

import "sort"

// QuestionType is the UI presentation style of a question.
type QuestionType string

const (
	QuestionTypeSwipeCards   QuestionType = "swipe-cards"
	QuestionTypeServiceGrid  QuestionType = "service-grid"
	QuestionTypeQuickPick    QuestionType = "quick-pick"
	QuestionTypeVisualBinary QuestionType = "visual-binary"
)

// QuestionCategory buckets questions by how much they matter to the site.
type QuestionCategory string

const (
	CategoryCritical        QuestionCategory = "critical"
	CategoryEnhancement     QuestionCategory = "enhancement"
	CategoryPersonalization QuestionCategory = "personalization"
)

// Priority bounds. 1 is asked first.
const (
	PriorityHighest = 1
	PriorityLowest  = 3
)

// Data-need keys shared by the catalog, the confidence map and suppression.
const (
	NeedServices         = "services"
	NeedYearsInBusiness  = "years_in_business"
	NeedServiceRadius    = "service_radius"
	NeedEmergencyService = "emergency_service"
	NeedDifferentiators  = "differentiators"
	NeedBrandStyle       = "brand_style"
	NeedTeamSize         = "team_size"
)

// QuestionOption is one answer choice. Every field is always present on the
// wire; zero values mean "not set".
type QuestionOption struct {
	Value      string   `json:"value"`
	Label      string   `json:"label"`
	Icon       string   `json:"icon,omitempty"`
	Popular    bool     `json:"popular,omitempty"`
	Tooltip    string   `json:"tooltip,omitempty"`
	Checked    bool     `json:"checked,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// SmartQuestion is a candidate or final intake question.
type SmartQuestion struct {
	ID       string           `json:"id"`
	Type     QuestionType     `json:"type"`
	Priority int              `json:"priority"`
	Category QuestionCategory `json:"category"`
	Question string           `json:"question"`
	Options  []QuestionOption `json:"options"`
	DataNeed string           `json:"dataNeed,omitempty"`
}

// Clone returns a deep copy so callers can annotate options without touching
// the catalog template.
func (q SmartQuestion) Clone() SmartQuestion {
	out := q
	out.Options = make([]QuestionOption, len(q.Options))
	for i, o := range q.Options {
		if o.Confidence != nil {
			c := *o.Confidence
			o.Confidence = &c
		}
		out.Options[i] = o
	}
	return out
}

// ValidPriority reports whether p is within [PriorityHighest, PriorityLowest].
func ValidPriority(p int) bool {
	return p >= PriorityHighest && p <= PriorityLowest
}

// SortByPriority orders questions ascending by priority. The sort is stable
// so catalog order breaks ties.
func SortByPriority(questions []SmartQuestion) {
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Priority < questions[j].Priority
	})
}

// MaxQuestions is the most questions a single response may carry.
const MaxQuestions = 5

// Bound sorts questions by priority and truncates them to max.
func Bound(questions []SmartQuestion, max int) []SmartQuestion {
	SortByPriority(questions)
	if max >= 0 && len(questions) > max {
		return questions[:max]
	}
	return questions
}
