// Package composite combines the five normalized component scores into the
// single 0-100 moment-difficulty score and its band.
package composite

import (
	"fmt"
	"math"

	"github.com/okian/crux/internal/domain/calc"
	"github.com/okian/crux/internal/domain/calibration"
	"github.com/okian/crux/internal/domain/model"
)

// Published formula constants. These are part of the external contract and
// must not drift between calls.
const (
	basePoint    = 50.0
	scalePoint   = 10.0
	compositeMin = 0.0
	compositeMax = 100.0

	weightSumTolerance = 1e-9
)

// Default component weights.
const (
	defaultLeverageWeight  = 0.35
	defaultPressureWeight  = 0.20
	defaultFatigueWeight   = 0.20
	defaultExecutionWeight = 0.15
	defaultBioWeight       = 0.10
)

// Aggregator normalizes raw components against a calibration table and
// folds them into the composite under fixed weights.
type Aggregator struct {
	table   *calibration.Table
	weights map[string]float64
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithWeights overrides the component weights. The weight-sum invariant is
// still enforced by New.
func WithWeights(weights map[string]float64) Option {
	return func(a *Aggregator) {
		a.weights = make(map[string]float64, len(weights))
		for name, w := range weights {
			a.weights[name] = w
		}
	}
}

// New builds an Aggregator and checks the load-time invariants once: every
// component must carry a weight, the weights must sum to exactly 1.0, and
// the calibration table must be complete.
func New(table *calibration.Table, opts ...Option) (*Aggregator, error) {
	a := &Aggregator{
		table: table,
		weights: map[string]float64{
			calc.ComponentLeverage:  defaultLeverageWeight,
			calc.ComponentPressure:  defaultPressureWeight,
			calc.ComponentFatigue:   defaultFatigueWeight,
			calc.ComponentExecution: defaultExecutionWeight,
			calc.ComponentBio:       defaultBioWeight,
		},
	}
	for _, opt := range opts {
		opt(a)
	}

	sum := 0.0
	for _, name := range calc.Names() {
		w, ok := a.weights[name]
		if !ok {
			return nil, fmt.Errorf("%w: no weight for %s", ErrInvalidWeights, name)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return nil, fmt.Errorf("%w: weights sum to %v, want 1.0", ErrInvalidWeights, sum)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// CalibrationVersion returns the version of the underlying table.
func (a *Aggregator) CalibrationVersion() string {
	return a.table.Version()
}

// Weight returns the weight assigned to a component.
func (a *Aggregator) Weight(component string) float64 {
	return a.weights[component]
}

// Composite maps raw component scores to the 0-100 composite and its band:
// base + scale * sum of weighted z-scores, clamped. A missing calibration
// entry aborts with calibration.ErrCalibrationMissing; no partial result
// is produced.
func (a *Aggregator) Composite(c model.Components) (float64, model.Band, error) {
	raw := map[string]float64{
		calc.ComponentLeverage:  c.Leverage,
		calc.ComponentPressure:  c.Pressure,
		calc.ComponentFatigue:   c.Fatigue,
		calc.ComponentExecution: c.Execution,
		calc.ComponentBio:       c.Bio,
	}

	weighted := 0.0
	for _, name := range calc.Names() {
		z, err := a.table.Normalize(name, raw[name])
		if err != nil {
			return 0, "", err
		}
		weighted += a.weights[name] * z
	}

	composite := basePoint + scalePoint*weighted
	composite = math.Max(compositeMin, math.Min(compositeMax, composite))

	return composite, model.BandFor(composite), nil
}
