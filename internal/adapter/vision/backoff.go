package vision

import (
	"errors"
	"regexp"
	"strconv"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
)

// retryInPattern matches provider hints like "retry in 7s" or "retry in 2.5s".
var retryInPattern = regexp.MustCompile(`retry in (\d+(?:\.\d+)?)s`)

// retryDelay picks the wait before the next attempt. A server-suggested delay
// (Retry-After header or a "retry in Ns" hint in the message) wins; otherwise
// the delay doubles per attempt, capped at max.
func retryDelay(err error, attempt int, base, max time.Duration) time.Duration {
	if d, ok := serverSuggestedDelay(err); ok {
		if d > max {
			return max
		}
		return d
	}

	d := base << uint(attempt)
	if d > max || d <= 0 {
		return max
	}
	return d
}

func serverSuggestedDelay(err error) (time.Duration, bool) {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) && apierr.Response != nil {
		if h := apierr.Response.Header.Get("Retry-After"); h != "" {
			if secs, perr := strconv.Atoi(h); perr == nil && secs > 0 {
				return time.Duration(secs) * time.Second, true
			}
		}
	}

	if m := retryInPattern.FindStringSubmatch(err.Error()); m != nil {
		if secs, perr := strconv.ParseFloat(m[1], 64); perr == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second)), true
		}
	}

	return 0, false
}
