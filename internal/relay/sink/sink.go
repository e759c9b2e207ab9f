// Package sink delivers mint requests to the destination system.
package sink

import "context"

// MintRequest is the destination-facing payload for one lock event. Amount is
// a decimal string to avoid precision loss across representations.
type MintRequest struct {
	SourceTransactionHash string `json:"sourceTransactionHash"`
	Recipient             string `json:"recipient"`
	Token                 string `json:"token"`
	Amount                string `json:"amount"`
	DestinationChainID    string `json:"destinationChainId"`
}

// Sink is the destination delivery boundary: one synchronous request per
// event. A nil return means the destination acknowledged receipt; any error
// is a delivery failure for retry purposes.
type Sink interface {
	Submit(ctx context.Context, req *MintRequest) error
}
