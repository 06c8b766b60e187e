package remote

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/ratelimit"
	"github.com/felixgeelhaar/fortify/retry"
	"go.uber.org/zap"

	"github.com/sinh-x/google-classroom-mcp/internal/config"
	"github.com/sinh-x/google-classroom-mcp/internal/interfaces"
	"github.com/sinh-x/google-classroom-mcp/internal/metrics"
	"github.com/sinh-x/google-classroom-mcp/internal/models"
)

// Ensure ResilientFetcher implements interfaces.Fetcher
var _ interfaces.Fetcher = (*ResilientFetcher)(nil)

// rateLimitKey is the single bucket shared by every remote call
const rateLimitKey = "remote"

var errRateLimited = errors.New("remote rate limit exceeded")

// outcome carries non-transient failures past the retry and breaker layers
// so that only transient failures are retried and counted toward tripping.
type outcome struct {
	data []byte
	err  error
}

// ResilientFetcher wraps a Fetcher with rate limiting, a per-call timeout,
// a circuit breaker and retries for transient failures.
type ResilientFetcher struct {
	next    interfaces.Fetcher
	limiter ratelimit.RateLimiter
	breaker circuitbreaker.CircuitBreaker[outcome]
	retry   retry.Retry[outcome]
	timeout time.Duration
	logger  *zap.Logger
}

// NewResilientFetcher creates a resilient wrapper around next
func NewResilientFetcher(next interfaces.Fetcher, cfg config.RemoteConfig, logger *zap.Logger) *ResilientFetcher {
	threshold := cfg.BreakerThreshold
	if threshold <= 0 {
		threshold = 5
	}
	attempts := cfg.RetryMaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = cfg.RateLimit
	}

	f := &ResilientFetcher{
		next: next,
		breaker: circuitbreaker.New[outcome](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    cfg.BreakerTimeout,
			Timeout:     cfg.BreakerTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(threshold) // #nosec G115 -- threshold is positive
			},
		}),
		retry: retry.New[outcome](retry.Config{
			MaxAttempts:   attempts,
			InitialDelay:  cfg.RetryInitialDelay,
			BackoffPolicy: retry.BackoffExponential,
			Multiplier:    cfg.RetryMultiplier,
		}),
		timeout: cfg.Timeout,
		logger:  logger,
	}

	if cfg.RateLimit > 0 {
		f.limiter = ratelimit.New(&ratelimit.Config{
			Rate:  cfg.RateLimit,
			Burst: burst,
		})
	}

	return f
}

// Fetch performs the remote call for key.
// Composition order: Rate limit → Timeout → Circuit Breaker → Retry
func (f *ResilientFetcher) Fetch(ctx context.Context, key models.Key) ([]byte, error) {
	kind := string(key.Kind)

	if f.limiter != nil && !f.limiter.Allow(ctx, rateLimitKey) {
		metrics.RecordRemoteCall(kind, string(CategoryTransient))
		f.logger.Warn("Remote call rate limited", zap.String("key", key.String()))
		return nil, NewError(CategoryTransient, errRateLimited)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	done := metrics.TimeRemoteCall(kind)
	defer done()

	// The last transient error seen by the retry loop, reported unwrapped
	var lastErr *Error

	out, err := f.breaker.Execute(ctx, func(ctx context.Context) (outcome, error) {
		return f.retry.Do(ctx, func(ctx context.Context) (outcome, error) {
			data, err := f.next.Fetch(ctx, key)
			if err == nil {
				return outcome{data: data}, nil
			}

			re := Classify(err)
			if re.Category != CategoryTransient {
				return outcome{err: re}, nil
			}
			lastErr = re
			return outcome{}, re
		})
	})

	switch {
	case err != nil:
		re := lastErr
		if re == nil {
			// Rejected by an open breaker or a done context before any attempt
			re = NewError(CategoryTransient, err)
		}
		metrics.RecordRemoteCall(kind, string(re.Category))
		f.logger.Warn("Remote call failed",
			zap.String("key", key.String()),
			zap.String("breaker", f.breaker.State().String()),
			zap.Error(err))
		return nil, re
	case out.err != nil:
		re := Classify(out.err)
		metrics.RecordRemoteCall(kind, string(re.Category))
		f.logger.Warn("Remote call rejected", zap.String("key", key.String()), zap.Error(re))
		return nil, re
	default:
		metrics.RecordRemoteCall(kind, "ok")
		return out.data, nil
	}
}
