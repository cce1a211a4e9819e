package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ntefft/dt-trends/pkg/estimator"
	"github.com/ntefft/dt-trends/pkg/study"
	"github.com/ntefft/dt-trends/pkg/sweep"
	"github.com/ntefft/dt-trends/pkg/validation"
)

// loadAndValidate loads the study and runs schema validation.
func loadAndValidate(projectPath string) (*study.Study, *validation.Report, error) {
	st, err := study.LoadProject(projectPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading study: %w", err)
	}
	report := validation.ValidateStudy(st)
	return st, report, nil
}

// resolveBaselines turns the study's baselines into estimator constants,
// applying any environment overrides on top.
func resolveBaselines(st *study.Study) estimator.Baselines {
	return estimator.Baselines{
		TotalDrivers:     st.Baselines.TotalDrivers,
		CrashRisk:        st.Baselines.CrashRisk,
		ReferenceEvasion: st.Baselines.ReferenceEvasion,
	}.WithEnvOverrides()
}

func runValidate(projectPath string) error {
	_, report, err := loadAndValidate(projectPath)
	if err != nil {
		return err
	}

	printValidationReport(report)

	if !report.Valid {
		os.Exit(1)
	}
	return nil
}

func runEstimate(projectPath string, mixPct float64) error {
	st, report, err := loadAndValidate(projectPath)
	if err != nil {
		return err
	}
	if !report.Valid {
		printValidationReport(report)
		return fmt.Errorf("study has validation errors; fix before estimating")
	}

	b := resolveBaselines(st)
	rows := make([]estimateRow, 0, len(st.References))
	for _, ref := range st.References {
		row := estimateRow{name: ref.Name, surveyPct: ref.SurveyPrevalencePct}
		res, err := estimator.Estimate(estimator.Scenario{
			DrinkingSharePct:      ref.SurveyPrevalencePct,
			OtherImpairedSharePct: ref.OtherImpairedPct,
			ExcessMixingPct:       mixPct,
			RelativeRisk:          ref.RelativeRisk,
			EvasionProbability:    ref.EvasionProbability,
		}, b)
		if err != nil {
			row.err = err
		} else {
			row.result = res
		}
		rows = append(rows, row)
	}

	printEstimateTable(mixPct, rows)
	return nil
}

func runSweep(projectPath string) error {
	st, report, err := loadAndValidate(projectPath)
	if err != nil {
		return err
	}
	if !report.Valid {
		printValidationReport(report)
		return fmt.Errorf("study has validation errors")
	}

	b := resolveBaselines(st)
	results, sweepReport := sweep.Run(st, b)
	report.Merge(sweepReport)

	output := map[string]any{
		"study":      st.Title,
		"baselines":  b,
		"sweep":      st.Sweep,
		"results":    results,
		"validation": report,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
