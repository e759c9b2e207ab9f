// Package decoder maps raw bridge contract logs to typed lock events.
package decoder

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/Sevast-st/bega-mon/internal/core/domain"
)

// TokensLockedTopic is the keccak256 hash of
// TokensLocked(address,address,uint256,bytes32,address).
const TokensLockedTopic = "0x910de40530744299ab730203b1c302d5789cc7aea893b5bb5a82fa0ea9e6edbe"

// Event layout: user, token and destinationChainId are indexed (topics 1-3);
// amount and recipient are ABI-encoded in the data field, 32 bytes each.
const (
	topicCount  = 4
	dataHexLen  = 128
	wordHexLen  = 64
	addrHexLen  = 40
	topicHexLen = 66
)

// Decoder is a pure, stateless mapping from one raw log to one LockEvent.
// Decoding the same log twice yields identical field values.
type Decoder struct {
	topic string
}

// New creates a decoder for the given event topic. An empty topic falls back
// to the TokensLocked signature hash.
func New(topic string) *Decoder {
	if topic == "" {
		topic = TokensLockedTopic
	}
	return &Decoder{topic: strings.ToLower(topic)}
}

// Topic returns the topic the decoder accepts, for use as the log filter.
func (d *Decoder) Topic() string {
	return d.topic
}

// Decode parses one raw log entry. A failure drops only this entry; it never
// affects sibling logs in the range.
func (d *Decoder) Decode(log domain.Log) (*domain.LockEvent, error) {
	if len(log.Topics) != topicCount {
		return nil, fmt.Errorf("expected %d topics, got %d", topicCount, len(log.Topics))
	}
	if strings.ToLower(log.Topics[0]) != d.topic {
		return nil, fmt.Errorf("unexpected event topic %s", log.Topics[0])
	}

	sender, err := addressFromTopic(log.Topics[1])
	if err != nil {
		return nil, fmt.Errorf("user topic: %w", err)
	}
	token, err := addressFromTopic(log.Topics[2])
	if err != nil {
		return nil, fmt.Errorf("token topic: %w", err)
	}

	data := strings.TrimPrefix(log.Data, "0x")
	if len(data) < dataHexLen {
		return nil, fmt.Errorf("data too short: %d hex chars, want %d", len(data), dataHexLen)
	}

	amount, ok := new(big.Int).SetString(data[:wordHexLen], 16)
	if ok && amount.Sign() < 0 {
		ok = false
	}
	if !ok {
		return nil, fmt.Errorf("invalid amount word %q", data[:wordHexLen])
	}

	recipientWord := data[wordHexLen:dataHexLen]
	recipient := "0x" + strings.ToLower(recipientWord[wordHexLen-addrHexLen:])
	if !isHex(recipientWord) {
		return nil, fmt.Errorf("invalid recipient word %q", recipientWord)
	}

	return &domain.LockEvent{
		TxHash:             log.TxHash,
		LogIndex:           log.LogIndex,
		BlockNumber:        log.BlockNumber,
		Sender:             sender,
		Token:              token,
		Amount:             amount,
		DestinationChainID: strings.ToLower(log.Topics[3]),
		Recipient:          recipient,
	}, nil
}

// addressFromTopic extracts the right-aligned address from a 32-byte topic.
func addressFromTopic(topic string) (string, error) {
	if len(topic) != topicHexLen || !strings.HasPrefix(topic, "0x") {
		return "", fmt.Errorf("malformed topic %q", topic)
	}
	addr := topic[topicHexLen-addrHexLen:]
	if !isHex(addr) {
		return "", fmt.Errorf("non-hex address in topic %q", topic)
	}
	return "0x" + strings.ToLower(addr), nil
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
