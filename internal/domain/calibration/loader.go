package calibration

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// fileTable is the YAML shape of a calibration override file:
//
//	version: v2
//	calibrated_at: 2026-08-01T00:00:00Z
//	components:
//	  leverage: {mean: 1.3, stddev: 0.75}
//	  ...
type fileTable struct {
	Version      string           `koanf:"version"`
	CalibratedAt time.Time        `koanf:"calibrated_at"`
	Components   map[string]Entry `koanf:"components"`
}

// LoadFile reads a calibration table from a YAML file and validates it
// against the known component set.
func LoadFile(path string) (*Table, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load calibration file: %w", err)
	}

	var ft fileTable
	if err := k.UnmarshalWithConf("", &ft, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("parse calibration file: %w", err)
	}
	if ft.Version == "" {
		return nil, fmt.Errorf("%w: file table has no version", ErrCalibrationMissing)
	}

	t := New(
		WithVersion(ft.Version),
		WithCalibratedAt(ft.CalibratedAt),
		WithEntries(ft.Components),
	)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
