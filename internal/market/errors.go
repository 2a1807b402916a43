package market

import (
	"fmt"
	"time"
)

// The gateway classifies every failure into one of five categories so that
// callers (chat relay, webhook) can map them to user-facing replies and HTTP
// statuses without string matching.

// ValidationError means the caller omitted or malformed a required parameter.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// RateLimitedError means the minimum inter-call interval for the target
// provider has not elapsed yet. Wait is the caller-facing estimate.
type RateLimitedError struct {
	Provider Provider
	Wait     time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit hit for %s, try again in %d seconds", e.Provider, e.WaitSeconds())
}

// WaitSeconds rounds the remaining wait up to whole seconds, never below 1.
func (e *RateLimitedError) WaitSeconds() int {
	s := int(e.Wait.Seconds()) + 1
	if s < 1 {
		s = 1
	}
	return s
}

// UpstreamError means the provider answered but reported a semantic error.
type UpstreamError struct {
	Provider Provider
	Message  string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Provider, e.Message)
}

// IncompleteDataError means the provider returned success but omitted fields
// the requested shape needs. Distinct from UpstreamError so the caller knows
// the query itself succeeded.
type IncompleteDataError struct {
	Msg string
}

func (e *IncompleteDataError) Error() string { return e.Msg }

// TransportError wraps a network-level failure that survived all retries.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport failure: %v", e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }
