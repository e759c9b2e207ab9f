package rpc

import (
	"context"
	"fmt"
	"log/slog"
)

// FailoverProvider tries each configured provider in order until one answers.
// It keeps the Provider shape so callers retry and fail over without knowing
// how many endpoints are behind it.
type FailoverProvider struct {
	providers []Provider
	log       *slog.Logger
}

// NewFailoverProvider wraps one or more providers. Order is priority order.
func NewFailoverProvider(providers ...Provider) *FailoverProvider {
	return &FailoverProvider{
		providers: providers,
		log:       slog.Default(),
	}
}

func (f *FailoverProvider) Name() string {
	if len(f.providers) == 1 {
		return f.providers[0].Name()
	}
	return "failover"
}

func (f *FailoverProvider) Call(ctx context.Context, method string, params []any) (any, error) {
	if len(f.providers) == 0 {
		return nil, fmt.Errorf("no providers configured")
	}

	var lastErr error
	for _, p := range f.providers {
		result, err := p.Call(ctx, method, params)
		if err == nil {
			return result, nil
		}
		lastErr = err
		f.log.Warn("Provider call failed, trying next", "provider", p.Name(), "method", method, "error", err)
	}

	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}
