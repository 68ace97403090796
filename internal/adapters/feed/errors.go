package feed

import "errors"

// Sentinel kinds for upstream feed errors.
var (
	// ErrUpstreamUnavailable wraps transport failures, timeouts and 5xx
	// responses from the game-state provider. Recoverable: the client
	// retries once before surfacing it.
	ErrUpstreamUnavailable = errors.New("upstream feed unavailable")

	// ErrNoActiveSituation means the provider is reachable but reports no
	// in-progress play to score. Not an error condition for the caller.
	ErrNoActiveSituation = errors.New("no active situation")
)
