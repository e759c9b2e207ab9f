package rpc

import (
	"context"
	"fmt"
	"time"
)

// DelayPolicy selects how the inter-attempt delay grows.
type DelayPolicy int

const (
	// DelayFixed waits Delay between every attempt.
	DelayFixed DelayPolicy = iota
	// DelayLinear waits Delay * attempt (1-based) between attempts.
	DelayLinear
	// DelayExponential doubles the delay after each attempt, capped at MaxDelay.
	DelayExponential
)

// RetryConfig defines retry behavior for source chain calls.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
	MaxDelay    time.Duration
	Policy      DelayPolicy
}

// DefaultRetryConfig mirrors the relay's configured defaults.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts: 5,
	Delay:       5 * time.Second,
	MaxDelay:    60 * time.Second,
	Policy:      DelayLinear,
}

// CallWithRetry executes an RPC call with bounded attempts. It returns the
// last error wrapped with the attempt count instead of panicking or blocking,
// so the caller decides escalation.
func CallWithRetry(
	ctx context.Context,
	p Provider,
	method string,
	params []any,
	config RetryConfig,
) (any, error) {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := p.Call(ctx, method, params)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == config.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoffDelay(attempt, config)):
		}
	}

	return nil, fmt.Errorf("%s failed after %d attempts: %w", method, config.MaxAttempts, lastErr)
}

// backoffDelay returns the wait after the given 1-based attempt.
func backoffDelay(attempt int, config RetryConfig) time.Duration {
	var delay time.Duration
	switch config.Policy {
	case DelayLinear:
		delay = config.Delay * time.Duration(attempt)
	case DelayExponential:
		delay = config.Delay << (attempt - 1)
	default:
		delay = config.Delay
	}
	if config.MaxDelay > 0 && delay > config.MaxDelay {
		delay = config.MaxDelay
	}
	return delay
}
