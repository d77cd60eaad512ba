package generator

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/brightpost/draftforge/internal/provider"
)

// retryOutcome records how a retried call went for the generation metadata.
type retryOutcome struct {
	attempts     int
	fallbackUsed bool
}

// isRetryable classifies provider errors. Auth and bad-request failures will
// not improve on retry; timeouts, rate limits, and server errors might.
func isRetryable(err error) bool {
	switch provider.StatusCode(err) {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return false
	}
	return true
}

// completeWithRetry runs fn up to maxRetries+1 times with a per-attempt
// timeout and exponential backoff (1s, 2s, ...). The final attempt switches
// to the fallback model. A parsed draft short-circuits the loop; a malformed
// response counts as a retryable failure.
func (e *Engine) completeWithRetry(
	ctx context.Context,
	fn func(ctx context.Context, useFallback bool) (Draft, string, error),
) (Draft, string, retryOutcome, error) {
	var lastErr error
	outcome := retryOutcome{}

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			break
		}

		useFallback := attempt == e.maxRetries && e.maxRetries > 0
		if useFallback {
			outcome.fallbackUsed = true
		}

		attemptCtx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
		draft, raw, err := fn(attemptCtx, useFallback)
		cancel()

		outcome.attempts = attempt + 1
		if err == nil {
			return draft, raw, outcome, nil
		}
		lastErr = err
		e.logger.Warn("generation attempt failed",
			"attempt", attempt+1, "fallback", useFallback, "error", err)

		if !isRetryable(err) {
			break
		}

		if attempt < e.maxRetries {
			backoff := e.backoffBase << attempt
			select {
			case <-ctx.Done():
				return Draft{}, "", outcome, &ProviderUnavailableError{Attempts: outcome.attempts, LastErr: ctx.Err()}
			case <-time.After(backoff):
			}
		}
	}

	if lastErr == nil {
		lastErr = ctx.Err()
		if lastErr == nil {
			lastErr = errors.New("no generation attempts made")
		}
	}
	return Draft{}, "", outcome, &ProviderUnavailableError{Attempts: outcome.attempts, LastErr: lastErr}
}
