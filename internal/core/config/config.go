package config

import (
	"time"

	"github.com/Sevast-st/bega-mon/internal/infra/storage/postgres"
	redisstore "github.com/Sevast-st/bega-mon/internal/infra/storage/redis"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Source      SourceConfig      `yaml:"source"`
	Destination DestinationConfig `yaml:"destination"`
	Relay       RelayConfig       `yaml:"relay"`
	Storage     StorageConfig     `yaml:"storage"`
	Alerts      AlertsConfig      `yaml:"alerts"`
}

// ServerConfig holds the health/metrics HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// SourceConfig describes the watched chain and bridge contract.
type SourceConfig struct {
	ContractAddress string           `yaml:"contract_address"`
	EventTopic      string           `yaml:"event_topic"` // empty = TokensLocked default
	RequestTimeout  time.Duration    `yaml:"request_timeout"`
	Providers       []ProviderConfig `yaml:"providers"`
}

// ProviderConfig holds settings for one RPC endpoint. Multiple providers are
// tried in order on failure.
type ProviderConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// DestinationConfig describes where mint requests are delivered.
type DestinationConfig struct {
	Type           string        `yaml:"type"` // http (default) or grpc
	Endpoint       string        `yaml:"endpoint"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// RelayConfig holds the scan/retry tunables.
type RelayConfig struct {
	PollInterval        time.Duration `yaml:"poll_interval"`
	ConfirmationDepth   uint64        `yaml:"confirmation_depth"`
	MaxRetryAttempts    int           `yaml:"max_retry_attempts"`
	RetryDelay          time.Duration `yaml:"retry_delay"`
	BackfillWindow      uint64        `yaml:"backfill_window"`
	DispatchParallelism int           `yaml:"dispatch_parallelism"`
}

// StorageConfig selects the checkpoint store. Postgres wins when both are
// set; with neither, the checkpoint lives in process memory only.
type StorageConfig struct {
	Postgres postgres.Config   `yaml:"postgres"`
	Redis    redisstore.Config `yaml:"redis"`
}

// AlertsConfig configures the alert fan-out.
type AlertsConfig struct {
	WebhookURL string        `yaml:"webhook_url"`
	Timeout    time.Duration `yaml:"timeout"`
}
