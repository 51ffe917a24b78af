package registry

import (
	"github.com/sells-group/smart-intake/internal/model"
	"github.com/sells-group/smart-intake/internal/normalize"
)

func below(total float64) *float64 { return &total }

func opt(value, label, icon string) model.QuestionOption {
	return model.QuestionOption{Value: value, Label: label, Icon: icon}
}

func services(labels ...string) []model.QuestionOption {
	out := make([]model.QuestionOption, 0, len(labels))
	for _, l := range labels {
		out = append(out, model.QuestionOption{Value: normalize.ServiceKey(l), Label: l})
	}
	return out
}

// ServiceOptions is the static service-grid option list per industry.
var ServiceOptions = map[model.Industry][]model.QuestionOption{
	model.IndustryLandscaping: services("Lawn Mowing", "Landscape Design", "Mulching",
		"Hedge Trimming", "Tree Trimming", "Irrigation", "Hardscaping", "Sod Installation"),
	model.IndustryHVAC: services("AC Repair", "Furnace Repair", "AC Installation",
		"Heating Installation", "Duct Cleaning", "Maintenance Plans", "Heat Pumps", "Thermostats"),
	model.IndustryPlumbing: services("Drain Cleaning", "Leak Repair", "Water Heaters",
		"Toilet Repair", "Sewer Line", "Repiping", "Fixture Installation", "Sump Pumps"),
	model.IndustryCleaning: services("House Cleaning", "Deep Cleaning", "Move Out Cleaning",
		"Office Cleaning", "Carpet Cleaning", "Window Cleaning", "Post Construction Cleaning"),
	model.IndustryRoofing: services("Roof Repair", "Roof Replacement", "Roof Inspection",
		"Gutter Installation", "Shingle Roofing", "Metal Roofing", "Storm Damage"),
	model.IndustryElectrical: services("Panel Upgrades", "Wiring", "Lighting Installation",
		"Outlet Repair", "EV Chargers", "Generator Installation", "Ceiling Fans"),
	model.IndustryPestControl: services("General Pest Control", "Termite Treatment",
		"Rodent Control", "Bed Bugs", "Mosquito Control", "Wildlife Removal"),
	model.IndustryGeneral: services("Consultation", "Installation", "Repair", "Maintenance",
		"Inspection", "Free Estimates"),
}

// DefaultEntries returns the built-in catalog in evaluation order.
func DefaultEntries() []Entry {
	return []Entry{
		{
			Question: model.SmartQuestion{
				ID:       QuestionServices,
				Type:     model.QuestionTypeServiceGrid,
				Priority: 1,
				Category: model.CategoryCritical,
				Question: "Which services do you offer?",
				DataNeed: model.NeedServices,
			},
			AppliesWhen:     Applicability{MaxTotal: below(70), WhenMissing: []string{"services"}},
			IndustryOptions: ServiceOptions,
		},
		{
			Question: model.SmartQuestion{
				ID:       QuestionDifferentiators,
				Type:     model.QuestionTypeSwipeCards,
				Priority: 2,
				Category: model.CategoryEnhancement,
				Question: "What sets you apart from the competition?",
				DataNeed: model.NeedDifferentiators,
				Options: []model.QuestionOption{
					opt("family_owned", "Family Owned", "home"),
					opt("licensed_insured", "Licensed & Insured", "shield"),
					opt("fast_response", "Fast Response", "zap"),
					opt("upfront_pricing", "Upfront Pricing", "tag"),
					opt("eco_friendly", "Eco-Friendly", "leaf"),
					opt("satisfaction_guarantee", "Satisfaction Guarantee", "award"),
				},
			},
			AppliesWhen: Applicability{MaxTotal: below(85)},
		},
		{
			Question: model.SmartQuestion{
				ID:       QuestionEmergencyService,
				Type:     model.QuestionTypeQuickPick,
				Priority: 1,
				Category: model.CategoryCritical,
				Question: "Do you offer emergency service?",
				DataNeed: model.NeedEmergencyService,
				Options: []model.QuestionOption{
					{Value: "24_7", Label: "Yes, 24/7", Icon: "clock", Popular: true},
					{Value: "extended_hours", Label: "Extended hours only", Icon: "sun"},
					{Value: "no", Label: "No, scheduled jobs only", Icon: "calendar"},
				},
			},
			AppliesWhen: Applicability{
				Industries: []model.Industry{model.IndustryPlumbing, model.IndustryHVAC, model.IndustryElectrical},
				Always:     true,
			},
		},
		{
			Question: model.SmartQuestion{
				ID:       QuestionBusinessStage,
				Type:     model.QuestionTypeQuickPick,
				Priority: 2,
				Category: model.CategoryPersonalization,
				Question: "How long have you been in business?",
				DataNeed: model.NeedYearsInBusiness,
				Options: []model.QuestionOption{
					{Value: "new", Label: "Just getting started", Tooltip: "Less than 2 years"},
					{Value: "growing", Label: "Growing", Tooltip: "2 to 5 years"},
					{Value: "established", Label: "Established", Tooltip: "5 to 15 years", Popular: true},
					{Value: "veteran", Label: "Industry veteran", Tooltip: "15+ years"},
				},
			},
			AppliesWhen: Applicability{MaxTotal: below(60)},
		},
		{
			Question: model.SmartQuestion{
				ID:       QuestionServiceRadius,
				Type:     model.QuestionTypeQuickPick,
				Priority: 2,
				Category: model.CategoryEnhancement,
				Question: "How far will you travel for a job?",
				DataNeed: model.NeedServiceRadius,
				Options: []model.QuestionOption{
					{Value: "10", Label: "Up to 10 miles"},
					{Value: "25", Label: "Up to 25 miles", Popular: true},
					{Value: "50", Label: "Up to 50 miles"},
					{Value: "100", Label: "50+ miles"},
				},
			},
			AppliesWhen: Applicability{WhenNoServiceAreas: true, WhenMissing: []string{"service_area"}},
		},
		{
			Question: model.SmartQuestion{
				ID:       QuestionBrandPersonality,
				Type:     model.QuestionTypeVisualBinary,
				Priority: 3,
				Category: model.CategoryPersonalization,
				Question: "Which look fits your brand?",
				DataNeed: model.NeedBrandStyle,
				Options: []model.QuestionOption{
					opt("modern", "Modern & Clean", "sparkles"),
					opt("classic", "Classic & Trusted", "landmark"),
				},
			},
			AppliesWhen: Applicability{MaxTotal: below(90)},
		},
		{
			Question: model.SmartQuestion{
				ID:       QuestionTeamSize,
				Type:     model.QuestionTypeQuickPick,
				Priority: 3,
				Category: model.CategoryPersonalization,
				Question: "How big is your team?",
				DataNeed: model.NeedTeamSize,
				Options: []model.QuestionOption{
					{Value: "solo", Label: "Just me"},
					{Value: "small", Label: "2-5 people", Popular: true},
					{Value: "medium", Label: "6-20 people"},
					{Value: "large", Label: "20+ people"},
				},
			},
			AppliesWhen: Applicability{MaxTotal: below(50)},
		},
	}
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := NewCatalog(DefaultEntries())
	if err != nil {
		panic(err)
	}
	return c
}
