// Package calc implements the five independent moment-difficulty component
// calculators. Each is a pure function of (Situation, Workload, Action):
// deterministic, no I/O, no shared state, and clamped to its declared bound
// no matter how extreme the inputs are.
package calc

import "github.com/okian/crux/internal/domain/model"

// Component bounds.
const (
	LeverageMax = 5.0
	ScoreMax    = 100.0
)

// Component names, used as calibration keys and metric labels.
const (
	ComponentLeverage  = "leverage"
	ComponentPressure  = "pressure"
	ComponentFatigue   = "fatigue"
	ComponentExecution = "execution"
	ComponentBio       = "bio"
)

// Names lists every component exactly once.
func Names() []string {
	return []string{
		ComponentLeverage,
		ComponentPressure,
		ComponentFatigue,
		ComponentExecution,
		ComponentBio,
	}
}

// All runs the five calculators and returns the raw component scores.
// The calculators are independent; order is irrelevant.
func All(s model.Situation, w model.Workload, a model.Action) model.Components {
	return model.Components{
		Leverage:  Leverage(s, w, a),
		Pressure:  Pressure(s, w, a),
		Fatigue:   Fatigue(s, w, a),
		Execution: Execution(s, w, a),
		Bio:       Bio(s, w, a),
	}
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
