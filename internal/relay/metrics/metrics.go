package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChainHeadBlock tracks the latest observed head of the source chain
	ChainHeadBlock = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "begamon_chain_head_block",
			Help: "Latest block height observed on the source chain",
		},
	)

	// CheckpointBlock tracks the highest fully scanned block
	CheckpointBlock = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "begamon_checkpoint_block",
			Help: "Highest block number whose range has completed a scan cycle",
		},
	)

	// BlocksScanned tracks total blocks covered by completed ranges
	BlocksScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "begamon_blocks_scanned_total",
			Help: "Total number of blocks covered by advanced ranges",
		},
	)

	// EventsDecoded tracks successfully decoded bridge events
	EventsDecoded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "begamon_events_decoded_total",
			Help: "Total number of successfully decoded TokensLocked events",
		},
	)

	// DecodeFailures tracks raw logs that could not be decoded
	DecodeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "begamon_decode_failures_total",
			Help: "Total number of raw logs dropped by the decoder",
		},
	)

	// DispatchAttempts tracks individual delivery attempts
	DispatchAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "begamon_dispatch_attempts_total",
			Help: "Total number of delivery attempts to the destination",
		},
	)

	// DispatchOutcomes tracks per-event delivery results
	DispatchOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "begamon_dispatch_outcomes_total",
			Help: "Per-event delivery outcomes",
		},
		[]string{"outcome"},
	)

	// CycleErrors tracks scan cycles that failed before advancing
	CycleErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "begamon_cycle_errors_total",
			Help: "Total number of scan cycles aborted by an error",
		},
	)

	// RPCCalls tracks JSON-RPC calls per provider and method
	RPCCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "begamon_rpc_calls_total",
			Help: "Total number of JSON-RPC calls",
		},
		[]string{"provider", "method"},
	)

	// RPCErrors tracks JSON-RPC failures per provider and method
	RPCErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "begamon_rpc_errors_total",
			Help: "Total number of failed JSON-RPC calls",
		},
		[]string{"provider", "method"},
	)

	// RPCLatency tracks JSON-RPC call latency
	RPCLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "begamon_rpc_latency_seconds",
			Help:    "JSON-RPC call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "method"},
	)
)
