// Package retry wraps ledger-submitting calls and retries failures that are
// transient rather than semantic: network faults, nonce conflicts caused by
// concurrent submission from one account, and duplicate submissions that are
// already pending in the propagation layer.
//
// Everything else (reverts, authorization failures, signing errors) is
// returned immediately without consuming another attempt.
//
//	receipt, err := retry.Do(ctx, executor, func(ctx context.Context) (*types.Receipt, error) {
//		return submit(ctx)
//	})
//
// Classification consults structured information first (coded SDK errors,
// HTTP status codes, network error types) and falls back to message
// substrings only when nothing typed is available. The substring fallback is
// inherently fragile across node implementations.
//
// Attempts are not delayed by default. Supply a rate.Limiter in Config to
// pace resubmissions.
package retry
