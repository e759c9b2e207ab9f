package domain

import (
	"fmt"
	"math/big"
)

// LockEvent is a decoded TokensLocked event from the bridge contract.
// Identity is (TxHash, LogIndex); decoding the same raw log twice yields
// an identical record.
type LockEvent struct {
	TxHash             string
	LogIndex           uint64
	BlockNumber        uint64
	Sender             string
	Token              string
	Amount             *big.Int
	DestinationChainID string
	Recipient          string
}

// ID returns the identity key of the event.
func (e *LockEvent) ID() string {
	return fmt.Sprintf("%s:%d", e.TxHash, e.LogIndex)
}

// DispatchOutcome records the result of delivering one event downstream.
// Produced once per event per scan cycle.
type DispatchOutcome struct {
	Event     *LockEvent
	Delivered bool
	Attempts  int
}
