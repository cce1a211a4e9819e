// Package sweep drives the excess-mixing sensitivity study: it holds each
// reference scenario's survey prevalence fixed, re-runs the estimator across a
// grid of excess-mixing values, and locates the mixing level whose estimate
// best matches the published target.
package sweep

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ntefft/dt-trends/pkg/estimator"
	"github.com/ntefft/dt-trends/pkg/study"
	"github.com/ntefft/dt-trends/pkg/validation"
)

// Point is one grid evaluation: the excess-mixing percentage and the
// prevalence the estimator reports at that level.
type Point struct {
	MixPct     int     `json:"mix_pct"`
	Prevalence float64 `json:"prevalence"`
}

// ScenarioResult is the sweep output for one reference scenario. It is built
// fresh per invocation and never mutated afterwards.
type ScenarioResult struct {
	Name                string  `json:"name"`
	SurveyPrevalencePct float64 `json:"survey_prevalence_pct"`
	TargetEstimate      float64 `json:"target_estimate"`
	Curve               []Point `json:"curve"`
	ReconciledMixPct    int     `json:"reconciled_mix_pct"`
	ReconciledEstimate  float64 `json:"reconciled_estimate"`
	AtBoundary          bool    `json:"at_boundary"`
	InfeasibleMix       []int   `json:"infeasible_mix_pct,omitempty"`
	Err                 string  `json:"error,omitempty"`
}

// Run sweeps every reference scenario in the study. Scenarios are evaluated
// independently: a failure in one is recorded on its result and in the report
// without aborting the others.
func Run(st *study.Study, b estimator.Baselines) ([]ScenarioResult, *validation.Report) {
	report := validation.NewReport()
	results := make([]ScenarioResult, 0, len(st.References))

	for i := range st.References {
		results = append(results, runScenario(&st.References[i], st.Sweep, b, report))
	}

	return results, report
}

func runScenario(ref *study.ReferenceScenario, bounds study.SweepBounds, b estimator.Baselines, report *validation.Report) ScenarioResult {
	res := ScenarioResult{
		Name:                ref.Name,
		SurveyPrevalencePct: ref.SurveyPrevalencePct,
		TargetEstimate:      ref.TargetEstimate,
	}

	step := bounds.Step()
	for mix := 0; mix < bounds.MaxMixPct; mix += step {
		est, err := estimator.Estimate(estimator.Scenario{
			DrinkingSharePct:      ref.SurveyPrevalencePct,
			OtherImpairedSharePct: ref.OtherImpairedPct,
			ExcessMixingPct:       float64(mix),
			RelativeRisk:          ref.RelativeRisk,
			EvasionProbability:    ref.EvasionProbability,
		}, b)

		var infeasible *estimator.InfeasibleError
		switch {
		case err == nil:
			res.Curve = append(res.Curve, Point{MixPct: mix, Prevalence: est.Prevalence})
		case errors.As(err, &infeasible):
			res.InfeasibleMix = append(res.InfeasibleMix, mix)
		default:
			// Invalid inputs are the same at every grid point; fail the
			// scenario once and move on.
			res.Err = err.Error()
			report.AddError(validation.Result{
				Level:       validation.LevelModel,
				Message:     fmt.Sprintf("scenario %q: %v", ref.Name, err),
				FieldPath:   "references",
				ActualValue: ref.Name,
			})
			return res
		}
	}

	if len(res.Curve) == 0 {
		res.Err = "no feasible grid point in the swept range"
		report.AddError(validation.Result{
			Level:       validation.LevelModel,
			Message:     fmt.Sprintf("scenario %q: every grid point in [0, %d) is infeasible", ref.Name, bounds.MaxMixPct),
			FieldPath:   "sweep.max_mix_pct",
			ActualValue: bounds.MaxMixPct,
			Suggestions: []string{"check the relative risk and evasion inputs; R stays below 4 across the grid"},
		})
		return res
	}

	idx := reconcile(res.Curve, ref.TargetEstimate)
	res.ReconciledMixPct = res.Curve[idx].MixPct
	res.ReconciledEstimate = res.Curve[idx].Prevalence

	if idx == len(res.Curve)-1 {
		res.AtBoundary = true
		last := res.Curve[idx].MixPct
		msg := fmt.Sprintf("scenario %q: closest match sits at the end of the swept range (mix=%d%%); widen sweep.max_mix_pct", ref.Name, last)
		if len(res.InfeasibleMix) > 0 && res.InfeasibleMix[len(res.InfeasibleMix)-1] > last {
			msg = fmt.Sprintf("scenario %q: closest match sits at the feasibility edge (mix=%d%%); the target is unreachable under this model", ref.Name, last)
		}
		report.AddWarning(validation.Result{
			Level:       validation.LevelSweep,
			Message:     msg,
			FieldPath:   "sweep.max_mix_pct",
			ActualValue: bounds.MaxMixPct,
		})
	}

	return res
}

// reconcile returns the index of the curve point whose prevalence is closest
// to target by absolute deviation. Exact ties go to the first (lowest-mix)
// point, which floats.MinIdx guarantees.
func reconcile(curve []Point, target float64) int {
	devs := make([]float64, len(curve))
	for i, pt := range curve {
		devs[i] = math.Abs(pt.Prevalence - target)
	}
	return floats.MinIdx(devs)
}
