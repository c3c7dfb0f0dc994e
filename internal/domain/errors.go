package domain

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// ErrRateLimited is surfaced when the provider kept rejecting requests after
// the bounded retry protocol gave up, or when the announced reset is further
// away than the protocol is willing to wait.
var ErrRateLimited = errors.New("provider rate limit exceeded")

// ErrWindowSplitExhausted is surfaced when a capped list endpoint keeps
// returning full pages and the time window cannot be bisected any further.
var ErrWindowSplitExhausted = errors.New("time window cannot be split further")

// ErrEventFeedUnsupported marks providers without a generic account-history
// feed. Incremental sync is unavailable for them; market discovery falls
// back to balances only.
var ErrEventFeedUnsupported = errors.New("provider has no account history feed")

// RateLimitError is the transport-level signal that a single request was
// rejected for pacing reasons. RetryAfter is zero when the provider did not
// announce a reset timestamp.
type RateLimitError struct {
	RetryAfter time.Time
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter.IsZero() {
		return "request rejected: rate limited"
	}
	return fmt.Sprintf("request rejected: rate limited until %s", e.RetryAfter.Format(time.RFC3339))
}

// SchemaError reports a missing or malformed field in a provider response.
// Retrying cannot fix a contract mismatch, so it aborts the fetch at once.
type SchemaError struct {
	Endpoint string
	Field    string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing or malformed field %q", e.Endpoint, e.Field)
}

// BudgetExhaustedError aborts a sync whose per-refresh request budget ran
// out, carrying the request count and the call site that tripped it.
type BudgetExhaustedError struct {
	Issued   int
	Endpoint string
}

func (e *BudgetExhaustedError) Error() string {
	return fmt.Sprintf("request budget exhausted after %d requests (at %s)", e.Issued, e.Endpoint)
}
