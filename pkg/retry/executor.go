package retry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/vworld-labs/world-sdk-go/pkg/shared"
)

const DefaultMaxAttempts = 3

type Config struct {
	MaxAttempts int
	// Limiter paces attempts. Nil retries immediately.
	Limiter    *rate.Limiter
	Classifier Classifier
	Logger     *slog.Logger
	Registerer prometheus.Registerer
}

// Executor retries transient submission failures. Retries are local to one
// call; concurrent calls do not coordinate.
type Executor struct {
	maxAttempts int
	limiter     *rate.Limiter
	classifier  Classifier
	logger      *slog.Logger
	metrics     *metrics
}

// NewExecutor creates a new Executor.
func NewExecutor(config Config) (*Executor, error) {
	maxAttempts := config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	classifier := config.Classifier
	if classifier == nil {
		classifier = Classify
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collectors, err := newMetrics(config.Registerer)
	if err != nil {
		return nil, err
	}

	return &Executor{
		maxAttempts: maxAttempts,
		limiter:     config.Limiter,
		classifier:  classifier,
		logger:      logger,
		metrics:     collectors,
	}, nil
}

// MaxAttempts returns the configured attempt bound.
func (e *Executor) MaxAttempts() int {
	return e.maxAttempts
}

// Do invokes operation until it succeeds, fails fatally, or exhausts the
// executor's attempt bound. Fatal errors are returned unchanged after a
// single invocation. Exhaustion returns the last retryable error wrapped in a
// *shared.Error carrying its classification.
func Do[T any](ctx context.Context, executor *Executor, operation func(context.Context) (T, error)) (T, error) {
	var zero T
	if executor == nil {
		defaultExecutor, err := NewExecutor(Config{})
		if err != nil {
			return zero, err
		}
		executor = defaultExecutor
	}

	var lastErr error
	var lastCode shared.ErrorCode
	for attempt := 1; attempt <= executor.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		if executor.limiter != nil && attempt > 1 {
			if err := executor.limiter.Wait(ctx); err != nil {
				return zero, err
			}
		}

		result, err := operation(ctx)
		if err == nil {
			executor.metrics.observe(outcomeSuccess)
			return result, nil
		}

		code := executor.classifier(err)
		if !code.Retryable() {
			executor.metrics.observe(outcomeFatal)
			return zero, err
		}

		executor.metrics.observe(outcomeRetryable)
		executor.logger.Warn(
			"retryable submission failure",
			"attempt", attempt,
			"max_attempts", executor.maxAttempts,
			"code", string(code),
			"error", err,
		)
		lastErr = err
		lastCode = code
	}

	executor.metrics.observe(outcomeExhausted)
	return zero, &shared.Error{
		Code:    lastCode,
		Message: fmt.Sprintf("giving up after %d attempts", executor.maxAttempts),
		Cause:   lastErr,
	}
}

// WithRetry runs operation under a default executor bounded by maxAttempts.
func WithRetry[T any](ctx context.Context, operation func(context.Context) (T, error), maxAttempts int) (T, error) {
	executor, err := NewExecutor(Config{MaxAttempts: maxAttempts})
	if err != nil {
		var zero T
		return zero, err
	}
	return Do(ctx, executor, operation)
}
