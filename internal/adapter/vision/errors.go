package vision

import (
	"context"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
)

// Sentinel errors surfaced to callers. Everything else from the extraction
// pipeline is wrapped into one of these two.
var (
	// ErrQuotaExhausted means the provider refused the call for billing or
	// quota reasons. Retrying or switching models will not help.
	ErrQuotaExhausted = errors.New("vision: provider quota exhausted")

	// ErrAllModelsFailed means every configured model was tried and none
	// produced a response.
	ErrAllModelsFailed = errors.New("vision: all models failed")
)

// errClass drives the retry loop.
type errClass int

const (
	// classRetryable: transient failure, retry the same model with backoff.
	classRetryable errClass = iota
	// classFatal: the request itself is bad for this model, move to the next
	// model without retrying.
	classFatal
	// classQuota: abort the whole ladder immediately.
	classQuota
)

// classify maps a provider error to a retry class.
//
// Billing exhaustion arrives as a 400 with a "credit balance" message, not as
// a 429; a 429 is rate limiting and worth retrying.
func classify(err error) errClass {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return classRetryable
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "credit balance") || strings.Contains(msg, "quota") {
		return classQuota
	}

	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case 408, 429, 500, 502, 503, 504, 529:
			return classRetryable
		default:
			if apierr.StatusCode >= 400 && apierr.StatusCode < 500 {
				return classFatal
			}
			return classRetryable
		}
	}

	// Network-level errors (connection reset, DNS) come through untyped.
	return classRetryable
}
