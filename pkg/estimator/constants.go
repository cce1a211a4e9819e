package estimator

import (
	"os"
	"strconv"
)

// Baseline constants for scenario evaluation.
// These are the process-wide values shared by every scenario: they are read
// once at initialization and never mutated during a computation.
const (
	DefaultTotalDrivers     = 100000.0 // size of the driving population
	DefaultCrashRisk        = 0.0001   // baseline fatal-crash risk per driver interaction
	DefaultReferenceEvasion = 0.0      // evasion probability of non-impaired drivers

	// Every pair of drivers is assumed to interact this many times per period.
	InteractionsPerPair = 2.0

	// Minimum crash-count ratio for which the quadratic has a real root.
	MinFeasibleRatio = 4.0
)

// Baselines bundles the process-wide constants so the estimator stays a pure
// function of explicit inputs rather than package-level state.
type Baselines struct {
	TotalDrivers     float64 `json:"total_drivers"`
	CrashRisk        float64 `json:"crash_risk"`
	ReferenceEvasion float64 `json:"reference_evasion"`
}

// DefaultBaselines returns the standard constants used by the published
// sensitivity analysis.
func DefaultBaselines() Baselines {
	return Baselines{
		TotalDrivers:     DefaultTotalDrivers,
		CrashRisk:        DefaultCrashRisk,
		ReferenceEvasion: DefaultReferenceEvasion,
	}
}

// WithEnvOverrides returns a copy of b with any DTTRENDS_* environment
// overrides applied. Every entry point that evaluates scenarios must resolve
// its baselines through this so the CLI and the results API agree on the
// constants in use.
func (b Baselines) WithEnvOverrides() Baselines {
	b.TotalDrivers = envFloat("DTTRENDS_TOTAL_DRIVERS", b.TotalDrivers)
	b.CrashRisk = envFloat("DTTRENDS_CRASH_RISK", b.CrashRisk)
	b.ReferenceEvasion = envFloat("DTTRENDS_REFERENCE_EVASION", b.ReferenceEvasion)
	return b
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
