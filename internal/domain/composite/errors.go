package composite

import "errors"

// Sentinel kinds for aggregator errors.
var (
	ErrInvalidWeights = errors.New("invalid component weights")
)
