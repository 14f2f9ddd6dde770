package filter

import (
	"fmt"
	"math"
	"strconv"
)

// FFmpeg's atempo filter only accepts multipliers in [0.5, 2.0].
// Rates outside that range are composed from several chained atempo stages.
const (
	tempoMin = 0.5
	tempoMax = 2.0

	// maxTempoSteps bounds the chain length. Ten doublings cover any rate a
	// human would ask for; past that the plan is returned best-effort.
	maxTempoSteps = 10

	// tempoTolerance is the tolerance for chain convergence.
	tempoTolerance = 1e-6
)

// WarnFunc is a callback for warning messages during planning.
// Set to nil to suppress warnings.
type WarnFunc func(msg string)

// PlanTempo decomposes a playback-rate multiplier into a sequence of atempo
// steps, each within [0.5, 2.0], whose product approximates rate.
//
// A non-positive rate is invalid: the identity plan [1.0] is returned and a
// warning is reported. rate == 1.0 also yields the identity plan, which the
// chain builder treats as "omit the tempo stage entirely".
//
// If the step cap is reached before convergence (only possible for extreme
// rates), the best-effort plan is returned with a warning about the residual.
func PlanTempo(rate float64, warn WarnFunc) []float64 {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		if warn != nil {
			warn(fmt.Sprintf("invalid tempo rate %v, using 1.0", rate))
		}
		return []float64{1.0}
	}

	if converged(1.0, rate) {
		return []float64{1.0}
	}

	var steps []float64
	current := 1.0
	for range maxTempoSteps {
		step := clamp(rate/current, tempoMin, tempoMax)
		steps = append(steps, step)
		current *= step
		if converged(current, rate) {
			return steps
		}
	}

	if warn != nil {
		warn(fmt.Sprintf("tempo chain did not converge to %v after %d steps (reached %v)",
			rate, maxTempoSteps, current))
	}
	return steps
}

// IsIdentity reports whether a plan is the no-op plan [1.0].
func IsIdentity(plan []float64) bool {
	return len(plan) == 1 && plan[0] == 1.0
}

// FormatStep serializes a tempo step as a plain decimal with insignificant
// trailing zeros stripped, e.g. 2.0 -> "2", 1.25 -> "1.25".
func FormatStep(step float64) string {
	return strconv.FormatFloat(step, 'f', -1, 64)
}

// converged reports whether current matches rate within the tolerance.
func converged(current, rate float64) bool {
	return math.Abs(current-rate) <= tempoTolerance
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
