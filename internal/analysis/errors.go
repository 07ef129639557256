package analysis

import "errors"

// ErrInvalidInput rejects malformed requests (bad ticker, non-finite price)
// before any pricing math runs. Upstream failures reuse the provider
// taxonomy: providers.ErrNoData is terminal for the symbol,
// providers.ErrUnavailable is retryable by the caller. A single empty or
// malformed expiration chain is not an error at all; that expiration's
// result is simply empty.
var ErrInvalidInput = errors.New("invalid input")
