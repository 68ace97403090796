// Package calibration holds the versioned normalization parameters used to
// convert raw component scores into z-scores.
//
// A Table is immutable once built: recalibration produces a new table with a
// new version, never an in-place mutation, so in-flight requests always see
// a consistent snapshot. The normalizer fails closed: a component without a
// calibration entry aborts the whole computation instead of silently
// substituting a default.
package calibration

import (
	"fmt"
	"time"

	"github.com/okian/crux/internal/domain/calc"
)

// Entry is the calibration row for one component.
type Entry struct {
	Mean   float64 `koanf:"mean" json:"mean"`
	Stddev float64 `koanf:"stddev" json:"stddev"`
}

// Table maps component names to their active calibration entries.
type Table struct {
	version      string
	calibratedAt time.Time
	entries      map[string]Entry
}

// Option applies a configuration option to a Table under construction.
type Option func(*Table)

// WithVersion sets the table version identifier.
func WithVersion(version string) Option {
	return func(t *Table) {
		if version != "" {
			t.version = version
		}
	}
}

// WithCalibratedAt sets the calibration timestamp.
func WithCalibratedAt(at time.Time) Option {
	return func(t *Table) {
		if !at.IsZero() {
			t.calibratedAt = at
		}
	}
}

// WithEntry sets the calibration entry for a component.
func WithEntry(component string, mean, stddev float64) Option {
	return func(t *Table) {
		t.entries[component] = Entry{Mean: mean, Stddev: stddev}
	}
}

// WithEntries replaces all entries at once.
func WithEntries(entries map[string]Entry) Option {
	return func(t *Table) {
		t.entries = make(map[string]Entry, len(entries))
		for name, e := range entries {
			t.entries[name] = e
		}
	}
}

// New builds a Table. Without options it carries no entries; use Default
// for the built-in v1 parameters.
func New(opts ...Option) *Table {
	t := &Table{
		version:      "v0",
		calibratedAt: time.Now().UTC(),
		entries:      make(map[string]Entry),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Default returns the built-in v1 calibration table.
func Default() *Table {
	return New(
		WithVersion("v1"),
		WithEntries(map[string]Entry{
			calc.ComponentLeverage:  {Mean: 1.2, Stddev: 0.8},
			calc.ComponentPressure:  {Mean: 48, Stddev: 9},
			calc.ComponentFatigue:   {Mean: 48, Stddev: 9},
			calc.ComponentExecution: {Mean: 48, Stddev: 9},
			calc.ComponentBio:       {Mean: 48, Stddev: 9},
		}),
	)
}

// Version returns the table's version identifier.
func (t *Table) Version() string { return t.version }

// CalibratedAt returns when the table was calibrated.
func (t *Table) CalibratedAt() time.Time { return t.calibratedAt }

// Entry returns the calibration row for a component.
func (t *Table) Entry(component string) (Entry, bool) {
	e, ok := t.entries[component]
	return e, ok
}

// Normalize converts a raw component score to a z-score against the active
// calibration entry. Returns ErrCalibrationMissing if the component has no
// entry or a non-positive stddev.
func (t *Table) Normalize(component string, raw float64) (float64, error) {
	e, ok := t.entries[component]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrCalibrationMissing, component)
	}
	if e.Stddev <= 0 {
		return 0, fmt.Errorf("%w: %s has non-positive stddev", ErrCalibrationMissing, component)
	}
	return (raw - e.Mean) / e.Stddev, nil
}

// Validate checks that every known component has exactly one usable entry.
// Run once at startup so requests can fail only on genuinely missing rows.
func (t *Table) Validate() error {
	for _, name := range calc.Names() {
		if _, err := t.Normalize(name, 0); err != nil {
			return err
		}
	}
	return nil
}
