package evm

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	logger "log/slog"

	"github.com/Sevast-st/bega-mon/internal/core/domain"
	"github.com/Sevast-st/bega-mon/internal/infra/rpc"
)

// Reader implements chain.HeadReader against an EVM JSON-RPC endpoint.
type Reader struct {
	client rpc.Provider
	retry  rpc.RetryConfig
	log    logger.Logger
}

// NewReader creates a reader over the given provider. The retry config is
// shared by head and log queries.
func NewReader(client rpc.Provider, retry rpc.RetryConfig) *Reader {
	return &Reader{
		client: client,
		retry:  retry,
		log:    *logger.Default(),
	}
}

// Head returns the current chain height via eth_blockNumber.
func (r *Reader) Head(ctx context.Context) (uint64, error) {
	result, err := rpc.CallWithRetry(ctx, r.client, "eth_blockNumber", nil, r.retry)
	if err != nil {
		return 0, fmt.Errorf("eth_blockNumber failed: %w", err)
	}

	headHex, ok := result.(string)
	if !ok {
		return 0, fmt.Errorf("invalid block number response: %T", result)
	}

	return parseHexUint(headHex)
}

// FilterLogs fetches raw logs for the range via eth_getLogs. A range the
// provider could not serve within the retry budget is reported as an error,
// never as an empty result, so the scanner does not advance past it.
func (r *Reader) FilterLogs(
	ctx context.Context,
	rng domain.BlockRange,
	address string,
	topics []string,
) ([]domain.Log, error) {
	if !rng.Valid() {
		return nil, fmt.Errorf("invalid block range %s", rng)
	}

	topicFilter := make([]any, len(topics))
	for i, t := range topics {
		topicFilter[i] = t
	}

	params := []any{map[string]any{
		"fromBlock": fmt.Sprintf("0x%x", rng.From),
		"toBlock":   fmt.Sprintf("0x%x", rng.To),
		"address":   address,
		"topics":    topicFilter,
	}}

	result, err := rpc.CallWithRetry(ctx, r.client, "eth_getLogs", params, r.retry)
	if err != nil {
		return nil, fmt.Errorf("eth_getLogs %s failed: %w", rng, err)
	}

	rawLogs, ok := result.([]any)
	if !ok {
		if result == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid logs response: %T", result)
	}

	logs := make([]domain.Log, 0, len(rawLogs))
	for i, rawLog := range rawLogs {
		entry, ok := rawLog.(map[string]any)
		if !ok {
			r.log.Warn("Skipping malformed log entry", "index", i)
			continue
		}
		logs = append(logs, parseLog(entry))
	}

	return logs, nil
}

func parseLog(raw map[string]any) domain.Log {
	blockNumber, _ := parseHexUint(getString(raw["blockNumber"]))
	logIndex, _ := parseHexUint(getString(raw["logIndex"]))
	removed, _ := raw["removed"].(bool)

	var topics []string
	if rawTopics, ok := raw["topics"].([]any); ok {
		topics = make([]string, 0, len(rawTopics))
		for _, t := range rawTopics {
			topics = append(topics, strings.ToLower(getString(t)))
		}
	}

	return domain.Log{
		Address:     strings.ToLower(getString(raw["address"])),
		Topics:      topics,
		Data:        getString(raw["data"]),
		BlockNumber: blockNumber,
		TxHash:      getString(raw["transactionHash"]),
		LogIndex:    logIndex,
		Removed:     removed,
	}
}

func parseHexUint(hexStr string) (uint64, error) {
	n := new(big.Int)
	if _, ok := n.SetString(strings.TrimPrefix(hexStr, "0x"), 16); !ok {
		return 0, fmt.Errorf("invalid hex: %s", hexStr)
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("hex out of range: %s", hexStr)
	}
	return n.Uint64(), nil
}

func getString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
