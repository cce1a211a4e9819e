package validation

import (
	"fmt"

	"github.com/ntefft/dt-trends/pkg/study"
)

// ValidateStudy performs schema validation on a parsed Study.
// It checks structural correctness before any estimation runs.
func ValidateStudy(s *study.Study) *Report {
	r := NewReport()

	validateBaselines(s, r)
	validateSweepBounds(s, r)
	validateReferences(s, r)

	return r
}

func validateBaselines(s *study.Study, r *Report) {
	b := s.Baselines

	if b.TotalDrivers <= 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "baselines.total_drivers must be greater than 0",
			FieldPath:   "baselines.total_drivers",
			ActualValue: b.TotalDrivers,
			Expected:    "> 0",
		})
	}
	if b.CrashRisk <= 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "baselines.crash_risk must be greater than 0",
			FieldPath:   "baselines.crash_risk",
			ActualValue: b.CrashRisk,
			Expected:    "> 0",
		})
	}
	if b.ReferenceEvasion < 0 || b.ReferenceEvasion > 1 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "baselines.reference_evasion must be a probability",
			FieldPath:   "baselines.reference_evasion",
			ActualValue: b.ReferenceEvasion,
			Expected:    "[0, 1]",
		})
	}
}

func validateSweepBounds(s *study.Study, r *Report) {
	sw := s.Sweep

	if sw.MaxMixPct <= 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "sweep.max_mix_pct must be greater than 0",
			FieldPath:   "sweep.max_mix_pct",
			ActualValue: sw.MaxMixPct,
			Expected:    "> 0",
			Suggestions: []string{"200 covers the published reconciliation range"},
		})
	}
	if sw.StepPct < 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "sweep.step_pct must not be negative",
			FieldPath:   "sweep.step_pct",
			ActualValue: sw.StepPct,
			Expected:    ">= 0 (0 means the default step of 1)",
		})
	}
	if sw.MaxMixPct > 0 && sw.Step() >= sw.MaxMixPct {
		r.AddWarning(Result{
			Level:       LevelSchema,
			Message:     "sweep step leaves a single grid point",
			FieldPath:   "sweep.step_pct",
			ActualValue: sw.StepPct,
			Expected:    fmt.Sprintf("< %d", sw.MaxMixPct),
		})
	}
}

func validateReferences(s *study.Study, r *Report) {
	if len(s.References) == 0 {
		r.AddError(Result{
			Level:     LevelSchema,
			Message:   "references must contain at least one scenario",
			FieldPath: "references",
			Expected:  "at least 1 reference scenario",
		})
		return
	}

	seen := make(map[string]bool, len(s.References))
	for i, ref := range s.References {
		path := fmt.Sprintf("references[%d]", i)

		if ref.Name == "" {
			r.AddError(Result{
				Level:     LevelSchema,
				Message:   fmt.Sprintf("%s: name must not be empty", path),
				FieldPath: path + ".name",
				Expected:  "non-empty label, typically the survey year",
			})
		} else if seen[ref.Name] {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s: duplicate reference name %q", path, ref.Name),
				FieldPath:   path + ".name",
				ActualValue: ref.Name,
				Expected:    "unique name per reference scenario",
			})
		}
		seen[ref.Name] = true

		if ref.SurveyPrevalencePct < 0 || ref.SurveyPrevalencePct > 100 {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s (%s): survey_prevalence_pct out of range", path, ref.Name),
				FieldPath:   path + ".survey_prevalence_pct",
				ActualValue: ref.SurveyPrevalencePct,
				Expected:    "[0, 100]",
			})
		}
		if ref.OtherImpairedPct < 0 || ref.OtherImpairedPct > 100 {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s (%s): other_impaired_pct out of range", path, ref.Name),
				FieldPath:   path + ".other_impaired_pct",
				ActualValue: ref.OtherImpairedPct,
				Expected:    "[0, 100]",
			})
		}
		if ref.SurveyPrevalencePct+ref.OtherImpairedPct > 100 {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s (%s): impaired shares exceed the population", path, ref.Name),
				FieldPath:   path,
				ActualValue: ref.SurveyPrevalencePct + ref.OtherImpairedPct,
				Expected:    "survey_prevalence_pct + other_impaired_pct <= 100",
			})
		}
		if ref.RelativeRisk <= 0 {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s (%s): relative_risk must be greater than 0", path, ref.Name),
				FieldPath:   path + ".relative_risk",
				ActualValue: ref.RelativeRisk,
				Expected:    "> 0",
			})
		}
		if ref.EvasionProbability < 0 || ref.EvasionProbability > 1 {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s (%s): evasion_probability must be a probability", path, ref.Name),
				FieldPath:   path + ".evasion_probability",
				ActualValue: ref.EvasionProbability,
				Expected:    "[0, 1]",
			})
		}
		if ref.TargetEstimate <= 0 || ref.TargetEstimate >= 1 {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s (%s): target_estimate must be a fraction", path, ref.Name),
				FieldPath:   path + ".target_estimate",
				ActualValue: ref.TargetEstimate,
				Expected:    "(0, 1)",
				Suggestions: []string{"published estimates are fractions, not percentages"},
			})
		}
	}
}
