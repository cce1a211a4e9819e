package estimator

import (
	"errors"
	"math"
	"testing"
)

func defaultScenario() Scenario {
	return Scenario{
		DrinkingSharePct:      12.4,
		OtherImpairedSharePct: 0,
		ExcessMixingPct:       0,
		RelativeRisk:          10,
		EvasionProbability:    0.1,
	}
}

func TestEstimateRoundTrip(t *testing.T) {
	// With no excess mixing the back-solve must recover the input prevalence
	// exactly: the inverse is constructed from the same forward model.
	res, err := Estimate(defaultScenario(), DefaultBaselines())
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if math.Abs(res.Prevalence-0.124) > 1e-9 {
		t.Errorf("prevalence = %v, want 0.124", res.Prevalence)
	}
}

func TestEstimateRoundTripWithOtherImpaired(t *testing.T) {
	// The (1-x) adjustment cancels against the shrunken reference class, so
	// the round trip holds with a second impaired class present.
	sc := defaultScenario()
	sc.OtherImpairedSharePct = 5
	res, err := Estimate(sc, DefaultBaselines())
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if math.Abs(res.Prevalence-0.124) > 1e-9 {
		t.Errorf("prevalence = %v, want 0.124", res.Prevalence)
	}
}

func TestEstimateImpliedRiskRatio(t *testing.T) {
	// theta-hat recovers theta discounted by the evasion asymmetry:
	// 10 * (1-0.1) / (1-0) = 9.
	res, err := Estimate(defaultScenario(), DefaultBaselines())
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if math.Abs(res.ImpliedRiskRatio-9.0) > 1e-9 {
		t.Errorf("implied risk ratio = %v, want 9.0", res.ImpliedRiskRatio)
	}
}

func TestEstimateMonotoneInMixing(t *testing.T) {
	// Regression pin for the direction of the bias: raising the excess-mixing
	// term strictly raises the estimate.
	b := DefaultBaselines()
	expected := map[float64]float64{
		0:   0.12400,
		10:  0.13622,
		20:  0.14847,
		50:  0.18549,
		100: 0.24995,
	}

	prev := -1.0
	for _, mix := range []float64{0, 10, 20, 50, 100} {
		sc := defaultScenario()
		sc.ExcessMixingPct = mix
		res, err := Estimate(sc, b)
		if err != nil {
			t.Fatalf("Estimate(mix=%v) failed: %v", mix, err)
		}
		if res.Prevalence <= prev {
			t.Errorf("prevalence at mix=%v is %v, not above %v", mix, res.Prevalence, prev)
		}
		if math.Abs(res.Prevalence-expected[mix]) > 5e-6 {
			t.Errorf("prevalence at mix=%v is %v, want %v", mix, res.Prevalence, expected[mix])
		}
		prev = res.Prevalence
	}
}

func TestEstimateInfeasible(t *testing.T) {
	// A risk ratio near 1 plus heavy excess mixing pushes R below 4.
	sc := Scenario{
		DrinkingSharePct:   10,
		ExcessMixingPct:    50,
		RelativeRisk:       1.05,
		EvasionProbability: 0,
	}
	_, err := Estimate(sc, DefaultBaselines())
	if err == nil {
		t.Fatal("expected infeasible-scenario error, got a result")
	}

	var infeasible *InfeasibleError
	if !errors.As(err, &infeasible) {
		t.Fatalf("expected *InfeasibleError, got %T: %v", err, err)
	}
	if infeasible.CrashRatio >= MinFeasibleRatio {
		t.Errorf("reported crash ratio = %v, want < %v", infeasible.CrashRatio, MinFeasibleRatio)
	}
}

func TestEstimateDegenerateBoundary(t *testing.T) {
	// theta=1 with symmetric evasion puts R at exactly 4: the quadratic has a
	// single repeated root, which is still a feasible solve.
	sc := Scenario{
		DrinkingSharePct:   10,
		RelativeRisk:       1,
		EvasionProbability: 0,
	}
	res, err := Estimate(sc, DefaultBaselines())
	if err != nil {
		t.Fatalf("Estimate failed at the feasibility boundary: %v", err)
	}
	if math.Abs(res.CrashRatio-4.0) > 1e-9 {
		t.Errorf("crash ratio = %v, want exactly 4", res.CrashRatio)
	}
	if math.Abs(res.Prevalence-0.10) > 1e-9 {
		t.Errorf("prevalence = %v, want 0.10", res.Prevalence)
	}
}

func TestEstimateDeterministic(t *testing.T) {
	sc := defaultScenario()
	sc.ExcessMixingPct = 37
	b := DefaultBaselines()

	first, err := Estimate(sc, b)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	second, err := Estimate(sc, b)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if first != second {
		t.Errorf("repeated calls differ: %+v vs %+v", first, second)
	}
}

func TestEstimateRejectsBadInputs(t *testing.T) {
	b := DefaultBaselines()
	cases := []struct {
		name   string
		mutate func(*Scenario)
	}{
		{"negative drinking share", func(sc *Scenario) { sc.DrinkingSharePct = -1 }},
		{"share above 100", func(sc *Scenario) { sc.DrinkingSharePct = 101 }},
		{"negative other share", func(sc *Scenario) { sc.OtherImpairedSharePct = -1 }},
		{"shares exceed population", func(sc *Scenario) { sc.OtherImpairedSharePct = 90 }},
		{"negative mixing", func(sc *Scenario) { sc.ExcessMixingPct = -5 }},
		{"zero relative risk", func(sc *Scenario) { sc.RelativeRisk = 0 }},
		{"evasion above 1", func(sc *Scenario) { sc.EvasionProbability = 1.5 }},
	}

	for _, tc := range cases {
		sc := defaultScenario()
		tc.mutate(&sc)
		if _, err := Estimate(sc, b); err == nil {
			t.Errorf("%s: expected an input error", tc.name)
		}
	}
}

func TestEstimateDegenerateScenarios(t *testing.T) {
	// Boundary shares are valid inputs but leave a crash type with zero
	// expected count; the estimator reports a named degenerate error rather
	// than an invalid-input rejection or a NaN result.
	b := DefaultBaselines()
	cases := []struct {
		name   string
		mutate func(*Scenario)
	}{
		{"zero drinking share", func(sc *Scenario) { sc.DrinkingSharePct = 0 }},
		{"no reference class", func(sc *Scenario) {
			sc.DrinkingSharePct = 60
			sc.OtherImpairedSharePct = 40
		}},
		{"certain evasion", func(sc *Scenario) { sc.EvasionProbability = 1 }},
	}

	for _, tc := range cases {
		sc := defaultScenario()
		tc.mutate(&sc)
		res, err := Estimate(sc, b)
		if err == nil {
			t.Errorf("%s: expected a degenerate-scenario error, got %+v", tc.name, res)
			continue
		}
		var infeasible *InfeasibleError
		if errors.As(err, &infeasible) {
			t.Errorf("%s: degenerate case misreported as infeasible: %v", tc.name, err)
		}
	}
}

func TestEstimateRejectsBadBaselines(t *testing.T) {
	sc := defaultScenario()
	bads := []Baselines{
		{TotalDrivers: 0, CrashRisk: DefaultCrashRisk},
		{TotalDrivers: DefaultTotalDrivers, CrashRisk: 0},
		{TotalDrivers: DefaultTotalDrivers, CrashRisk: DefaultCrashRisk, ReferenceEvasion: -0.1},
	}
	for i, b := range bads {
		if _, err := Estimate(sc, b); err == nil {
			t.Errorf("baselines case %d: expected an input error", i)
		}
	}
}

func TestBaselinesWithEnvOverrides(t *testing.T) {
	t.Setenv("DTTRENDS_TOTAL_DRIVERS", "250000")
	t.Setenv("DTTRENDS_CRASH_RISK", "0.0002")
	t.Setenv("DTTRENDS_REFERENCE_EVASION", "0.05")

	b := DefaultBaselines().WithEnvOverrides()
	if b.TotalDrivers != 250000 {
		t.Errorf("total drivers = %v, want 250000", b.TotalDrivers)
	}
	if b.CrashRisk != 0.0002 {
		t.Errorf("crash risk = %v, want 0.0002", b.CrashRisk)
	}
	if b.ReferenceEvasion != 0.05 {
		t.Errorf("reference evasion = %v, want 0.05", b.ReferenceEvasion)
	}
}

func TestBaselinesEnvOverridesIgnoreJunk(t *testing.T) {
	t.Setenv("DTTRENDS_TOTAL_DRIVERS", "not-a-number")
	t.Setenv("DTTRENDS_CRASH_RISK", "")

	b := DefaultBaselines().WithEnvOverrides()
	if b.TotalDrivers != DefaultTotalDrivers {
		t.Errorf("total drivers = %v, want the default %v", b.TotalDrivers, DefaultTotalDrivers)
	}
	if b.CrashRisk != DefaultCrashRisk {
		t.Errorf("crash risk = %v, want the default %v", b.CrashRisk, DefaultCrashRisk)
	}
}

func TestEstimateScaleInvariance(t *testing.T) {
	// The population size and baseline risk cancel in the count ratios, so
	// rescaling both must not move the estimate.
	sc := defaultScenario()
	sc.ExcessMixingPct = 25

	small, err := Estimate(sc, Baselines{TotalDrivers: 1000, CrashRisk: 0.01})
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	large, err := Estimate(sc, Baselines{TotalDrivers: 5000000, CrashRisk: 0.000001})
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if math.Abs(small.Prevalence-large.Prevalence) > 1e-9 {
		t.Errorf("estimate moved with scale: %v vs %v", small.Prevalence, large.Prevalence)
	}
}
