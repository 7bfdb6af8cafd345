package errors

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxRetries     int           // Maximum number of retries (0 = no retries)
	InitialDelay   time.Duration // Initial delay before first retry
	MaxDelay       time.Duration // Maximum delay between retries
	Multiplier     float64       // Delay multiplier for exponential backoff
	Jitter         float64       // Random jitter factor (0-1)
	RetryableTypes []ErrorType   // Error types that should be retried
}

// DefaultRetryConfig returns sensible defaults for the AI lookup path.
// Candidate probes must run with NoRetryConfig: a failed candidate is
// abandoned, never retried.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   2,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.2,
		RetryableTypes: []ErrorType{
			Network,
			Timeout,
			RateLimit,
			ServerError,
		},
	}
}

// NoRetryConfig returns a configuration that never retries.
func NoRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: 0}
}

// Retrier implements retry logic with exponential backoff.
type Retrier struct {
	config RetryConfig
	rng    *rand.Rand
}

// NewRetrier creates a new retrier.
func NewRetrier(config RetryConfig) *Retrier {
	return &Retrier{
		config: config,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc func(ctx context.Context) error

// RetryResult holds the result of a retry operation.
type RetryResult struct {
	Attempts  int           // Number of attempts made
	LastError error         // The last error encountered
	Duration  time.Duration // Total time spent retrying
	Success   bool          // Whether the operation succeeded
}

// Do executes the function with retries.
func (r *Retrier) Do(ctx context.Context, operation string, url string, fn RetryFunc) *RetryResult {
	result := &RetryResult{}
	start := time.Now()

	var lastErr error
	delay := r.config.InitialDelay

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		result.Attempts++

		err := fn(ctx)
		if err == nil {
			result.Success = true
			result.Duration = time.Since(start)
			return result
		}

		lastErr = err

		if ctx.Err() != nil {
			result.LastError = NewCancelledError(url, operation)
			result.Duration = time.Since(start)
			return result
		}

		if attempt >= r.config.MaxRetries {
			break
		}

		if !r.shouldRetry(err) {
			break
		}

		actualDelay := r.calculateDelay(delay)

		select {
		case <-ctx.Done():
			result.LastError = NewCancelledError(url, operation)
			result.Duration = time.Since(start)
			return result
		case <-time.After(actualDelay):
		}

		delay = r.nextDelay(delay)
	}

	result.LastError = lastErr
	result.Duration = time.Since(start)
	return result
}

// shouldRetry checks if an error should be retried.
func (r *Retrier) shouldRetry(err error) bool {
	if err == nil {
		return false
	}

	if len(r.config.RetryableTypes) > 0 {
		errType := GetErrorType(err)
		for _, t := range r.config.RetryableTypes {
			if errType == t {
				return true
			}
		}
		return false
	}

	return IsRetryable(err)
}

// calculateDelay applies jitter to the base delay.
func (r *Retrier) calculateDelay(base time.Duration) time.Duration {
	if r.config.Jitter <= 0 {
		return base
	}

	jitter := r.config.Jitter * (r.rng.Float64()*2 - 1) // [-jitter, +jitter]
	delay := float64(base) * (1 + jitter)
	return time.Duration(delay)
}

// nextDelay computes the next backoff delay.
func (r *Retrier) nextDelay(current time.Duration) time.Duration {
	next := time.Duration(float64(current) * math.Max(r.config.Multiplier, 1))
	if r.config.MaxDelay > 0 && next > r.config.MaxDelay {
		next = r.config.MaxDelay
	}
	return next
}
