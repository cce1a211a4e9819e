package study

// Study is the top-level description of a sensitivity study: the process-wide
// baseline constants, the sweep bounds, and the reference scenarios (one per
// survey window) whose published estimates the sweep reconciles against.
type Study struct {
	StudyVersion string              `yaml:"study_version" json:"study_version"`
	Title        string              `yaml:"title" json:"title"`
	Baselines    Baselines           `yaml:"baselines" json:"baselines"`
	Sweep        SweepBounds         `yaml:"sweep" json:"sweep"`
	References   []ReferenceScenario `yaml:"references" json:"references"`
}

// Baselines are the read-only constants shared by every scenario evaluation:
// the size of the driving population, the baseline fatal-crash risk per
// driver interaction, and the evasion probability of the non-impaired
// (reference) driver class.
type Baselines struct {
	TotalDrivers     float64 `yaml:"total_drivers" json:"total_drivers"`
	CrashRisk        float64 `yaml:"crash_risk" json:"crash_risk"`
	ReferenceEvasion float64 `yaml:"reference_evasion" json:"reference_evasion"`
}

// SweepBounds controls the excess-mixing grid: mix values run over
// [0, max_mix_pct) at step_pct granularity.
type SweepBounds struct {
	MaxMixPct int `yaml:"max_mix_pct" json:"max_mix_pct"`
	StepPct   int `yaml:"step_pct" json:"step_pct"`
}

// Step returns the effective grid step, defaulting to one percentage point.
func (b SweepBounds) Step() int {
	if b.StepPct <= 0 {
		return 1
	}
	return b.StepPct
}

// ReferenceScenario pins one survey window: the survey-measured prevalence
// held as the true value, the risk and evasion parameters, and the published
// model estimate the sweep should reconcile to.
type ReferenceScenario struct {
	Name                string  `yaml:"name" json:"name"`
	SurveyPrevalencePct float64 `yaml:"survey_prevalence_pct" json:"survey_prevalence_pct"`
	OtherImpairedPct    float64 `yaml:"other_impaired_pct" json:"other_impaired_pct"`
	RelativeRisk        float64 `yaml:"relative_risk" json:"relative_risk"`
	EvasionProbability  float64 `yaml:"evasion_probability" json:"evasion_probability"`
	TargetEstimate      float64 `yaml:"target_estimate" json:"target_estimate"`
}

// ReferenceByName returns the reference scenario with the given name, or nil
// if not found.
func (s *Study) ReferenceByName(name string) *ReferenceScenario {
	for i := range s.References {
		if s.References[i].Name == name {
			return &s.References[i]
		}
	}
	return nil
}
