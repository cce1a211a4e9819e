package main

import (
	"fmt"

	"github.com/ntefft/dt-trends/pkg/estimator"
	"github.com/ntefft/dt-trends/pkg/validation"
)

func printValidationReport(r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Printf("ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Printf("  [%s] %s\n", e.Level, e.Message)
			if e.FieldPath != "" {
				fmt.Printf("    -> %s = %v\n", e.FieldPath, e.ActualValue)
			}
			if e.Expected != "" {
				fmt.Printf("    expected: %s\n", e.Expected)
			}
			for _, s := range e.Suggestions {
				fmt.Printf("    * %s\n", s)
			}
		}
		fmt.Println()
	}

	if len(r.Warnings) > 0 {
		fmt.Printf("WARNINGS (%d):\n", len(r.Warnings))
		for _, w := range r.Warnings {
			fmt.Printf("  [%s] %s\n", w.Level, w.Message)
			if w.FieldPath != "" {
				fmt.Printf("    -> %s = %v\n", w.FieldPath, w.ActualValue)
			}
			if w.Expected != "" {
				fmt.Printf("    expected: %s\n", w.Expected)
			}
			for _, s := range w.Suggestions {
				fmt.Printf("    * %s\n", s)
			}
		}
		fmt.Println()
	}

	if len(r.Info) > 0 {
		fmt.Printf("INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Printf("  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Println()
	}

	if r.Valid {
		fmt.Printf("Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Printf("Result: INVALID (%s)\n", r.Summary)
	}
}

type estimateRow struct {
	name      string
	surveyPct float64
	result    estimator.Result
	err       error
}

func printEstimateTable(mixPct float64, rows []estimateRow) {
	fmt.Printf("Prevalence Estimates (excess mixing = %.0f%%)\n", mixPct)
	fmt.Println("=============================================")
	fmt.Println()
	fmt.Printf("%-10s %10s %12s %12s %10s\n", "Scenario", "Survey %", "Estimate", "Theta-hat", "R")
	fmt.Printf("%-10s %10s %12s %12s %10s\n", "----------", "----------", "------------", "------------", "----------")

	for _, row := range rows {
		if row.err != nil {
			fmt.Printf("%-10s %10.2f %s\n", row.name, row.surveyPct, row.err)
			continue
		}
		fmt.Printf("%-10s %10.2f %12.5f %12.3f %10.3f\n",
			row.name, row.surveyPct,
			row.result.Prevalence, row.result.ImpliedRiskRatio, row.result.CrashRatio)
	}
}
