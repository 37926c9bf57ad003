// Package resilience wraps completion calls with fortify protection
// patterns: bulkhead, timeout, and circuit breaker.
//
// There is deliberately no retry layer here. Inference steps are
// non-idempotent, and retry policy belongs to the caller.
package resilience

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"

	"github.com/felixgeelhaar/framing-go/infrastructure/completion"
)

// Executor provides protected completion execution.
type Executor struct {
	provider completion.Provider
	bulkhead bulkhead.Bulkhead[completion.Response]
	breaker  circuitbreaker.CircuitBreaker[completion.Response]
	timeout  time.Duration
}

// ExecutorConfig configures the executor.
type ExecutorConfig struct {
	// MaxConcurrent limits concurrent completion calls.
	MaxConcurrent int

	// CircuitBreakerThreshold is the number of consecutive failures
	// before the circuit opens.
	CircuitBreakerThreshold int

	// CircuitBreakerTimeout is how long the circuit stays open.
	CircuitBreakerTimeout time.Duration

	// Timeout bounds a single completion call. Always finite.
	Timeout time.Duration
}

// DefaultExecutorConfig returns a configuration with sensible defaults.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		MaxConcurrent:           10,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   30 * time.Second,
		Timeout:                 120 * time.Second,
	}
}

// NewExecutor creates a protected executor around a provider.
func NewExecutor(provider completion.Provider, cfg ExecutorConfig) *Executor {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	threshold := cfg.CircuitBreakerThreshold
	if threshold <= 0 {
		threshold = 5
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &Executor{
		provider: provider,
		bulkhead: bulkhead.New[completion.Response](bulkhead.Config{
			MaxConcurrent: maxConcurrent,
		}),
		breaker: circuitbreaker.New[completion.Response](circuitbreaker.Config{
			MaxRequests: uint32(maxConcurrent), // #nosec G115 -- bounds checked above
			Interval:    cfg.CircuitBreakerTimeout,
			Timeout:     cfg.CircuitBreakerTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(threshold) // #nosec G115 -- bounds checked above
			},
		}),
		timeout: timeout,
	}
}

// NewDefaultExecutor creates an executor with default configuration.
func NewDefaultExecutor(provider completion.Provider) *Executor {
	return NewExecutor(provider, DefaultExecutorConfig())
}

// Name returns the underlying provider name.
func (e *Executor) Name() string {
	return e.provider.Name()
}

// Complete runs one completion call with bulkhead, timeout, and circuit
// breaker applied. A timed-out call surfaces as a plain failure.
func (e *Executor) Complete(ctx context.Context, req completion.Request) (completion.Response, error) {
	return e.bulkhead.Execute(ctx, func(ctx context.Context) (completion.Response, error) {
		ctx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		return e.breaker.Execute(ctx, func(ctx context.Context) (completion.Response, error) {
			return e.provider.Complete(ctx, req)
		})
	})
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (e *Executor) CircuitBreakerState() circuitbreaker.State {
	return e.breaker.State()
}

// Ensure Executor satisfies the provider contract so it can be dropped in
// anywhere a provider is expected.
var _ completion.Provider = (*Executor)(nil)
