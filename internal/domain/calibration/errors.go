package calibration

import "errors"

// Sentinel kinds for calibration errors.
var (
	// ErrCalibrationMissing means a component has no active calibration
	// entry. This is a configuration defect: the computation must abort
	// rather than assume a default.
	ErrCalibrationMissing = errors.New("calibration missing")
)
