// Package estimator back-solves the prevalence of impaired driving from the
// crash-type ratios implied by a multinomial model of two-vehicle fatal
// crashes. The solver sees only the expected crash counts, not the true risk
// multiplier: it recovers the relative risk from the count ratios and then
// inverts it into a population share.
package estimator

import (
	"fmt"
	"math"
)

// Scenario is the estimator's argument: population shares, risk, evasion,
// and the excess-mixing bias term. All percentage fields are 0-100.
type Scenario struct {
	DrinkingSharePct      float64 `json:"drinking_share_pct"`
	OtherImpairedSharePct float64 `json:"other_impaired_share_pct"`
	ExcessMixingPct       float64 `json:"excess_mixing_pct"`
	RelativeRisk          float64 `json:"relative_risk"`
	EvasionProbability    float64 `json:"evasion_probability"`
}

// Result is the back-solved output. Prevalence is the contract value; the
// implied risk ratio and crash ratio are reported alongside because the
// published tables print theta next to the prevalence estimate.
type Result struct {
	Prevalence       float64 `json:"prevalence"`
	ImpliedRiskRatio float64 `json:"implied_risk_ratio"`
	CrashRatio       float64 `json:"crash_ratio"`
}

// InfeasibleError reports a scenario whose crash-count ratio R falls below 4:
// the quadratic in the back-solve has no real root, so the assumed model
// cannot produce those counts. Callers must treat this as a distinct outcome,
// never as a numeric result.
type InfeasibleError struct {
	CrashRatio float64
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("infeasible scenario: crash ratio R = %.4f is below %v", e.CrashRatio, MinFeasibleRatio)
}

// Estimate back-solves the impaired-driver prevalence implied by the expected
// crash-type counts for the scenario. It returns an *InfeasibleError when the
// counts admit no real solution, and a plain error for out-of-range inputs.
func Estimate(sc Scenario, b Baselines) (Result, error) {
	if err := checkInputs(sc, b); err != nil {
		return Result{}, err
	}

	p := sc.DrinkingSharePct / 100
	x := sc.OtherImpairedSharePct / 100
	mix := sc.ExcessMixingPct / 100

	nRef := b.TotalDrivers * (1 - p - x)
	nImp := b.TotalDrivers * p

	riskImp := b.CrashRisk * sc.RelativeRisk
	riskRef := b.CrashRisk

	// Expected fatal-interaction intensity per pairing. A crash requires one
	// driver's fatal error and the other's failure to evade it.
	fII := InteractionsPerPair * (1 - sc.EvasionProbability) * riskImp
	fIR := (1-sc.EvasionProbability)*riskImp + (1-b.ReferenceEvasion)*riskRef
	fRR := InteractionsPerPair * (1 - b.ReferenceEvasion) * riskRef

	// Expected crash-type counts. Excess mixing inflates only the
	// impaired-impaired pairing beyond its independent-mixing share.
	aII := nImp * nImp * fII * (1 + mix)
	aRR := nRef * nRef * fRR
	aIR := 2 * nRef * nImp * fIR

	// An empty driver class or an evasion probability of 1 zeroes out a
	// crash type, leaving no ratio to solve against.
	r := (aIR * aIR) / (aII * aRR)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return Result{}, fmt.Errorf("degenerate scenario: a crash type has zero expected count, so the crash ratio is not finite")
	}

	// The back-solve does not know RelativeRisk; it recovers theta from the
	// count ratios alone. R < 4 means the quadratic has no real root.
	disc := r*r - MinFeasibleRatio*r
	if disc < 0 {
		return Result{}, &InfeasibleError{CrashRatio: r}
	}
	thetaHat := ((r - 2) + math.Sqrt(disc)) / 2

	nHat := math.Sqrt((aII / aRR) / thetaHat)
	prevalence := (nHat / (1 + nHat)) * (1 - x)

	return Result{
		Prevalence:       prevalence,
		ImpliedRiskRatio: thetaHat,
		CrashRatio:       r,
	}, nil
}

func checkInputs(sc Scenario, b Baselines) error {
	if sc.DrinkingSharePct < 0 || sc.DrinkingSharePct > 100 {
		return fmt.Errorf("drinking share %.4f%% out of range [0, 100]", sc.DrinkingSharePct)
	}
	if sc.OtherImpairedSharePct < 0 || sc.OtherImpairedSharePct > 100 {
		return fmt.Errorf("other impaired share %.4f%% out of range [0, 100]", sc.OtherImpairedSharePct)
	}
	if sc.DrinkingSharePct+sc.OtherImpairedSharePct > 100 {
		return fmt.Errorf("impaired shares sum to %.4f%%, exceeding the population",
			sc.DrinkingSharePct+sc.OtherImpairedSharePct)
	}
	if sc.ExcessMixingPct < 0 {
		return fmt.Errorf("excess mixing %.4f%% must not be negative", sc.ExcessMixingPct)
	}
	if sc.RelativeRisk <= 0 {
		return fmt.Errorf("relative risk %.4f must be greater than 0", sc.RelativeRisk)
	}
	if sc.EvasionProbability < 0 || sc.EvasionProbability > 1 {
		return fmt.Errorf("evasion probability %.4f out of range [0, 1]", sc.EvasionProbability)
	}
	if b.TotalDrivers <= 0 {
		return fmt.Errorf("total drivers %.0f must be greater than 0", b.TotalDrivers)
	}
	if b.CrashRisk <= 0 {
		return fmt.Errorf("baseline crash risk %v must be greater than 0", b.CrashRisk)
	}
	if b.ReferenceEvasion < 0 || b.ReferenceEvasion > 1 {
		return fmt.Errorf("reference evasion %.4f out of range [0, 1]", b.ReferenceEvasion)
	}
	return nil
}
