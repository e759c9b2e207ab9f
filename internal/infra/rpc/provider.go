// Package rpc provides JSON-RPC access to the source chain node, with
// bounded retry and provider failover.
package rpc

import "context"

// Provider executes JSON-RPC calls against one node endpoint.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// Call makes a single JSON-RPC call and returns the decoded result field.
	Call(ctx context.Context, method string, params []any) (any, error)
}
