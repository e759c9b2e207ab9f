package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file. Environment variables in the
// file content are expanded before parsing.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if cfg.Source.ContractAddress == "" {
		return nil, fmt.Errorf("source.contract_address is required")
	}
	if len(cfg.Source.Providers) == 0 {
		return nil, fmt.Errorf("at least one source provider is required")
	}
	if cfg.Destination.Endpoint == "" {
		return nil, fmt.Errorf("destination.endpoint is required")
	}

	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Source.RequestTimeout == 0 {
		cfg.Source.RequestTimeout = 10 * time.Second
	}
	if cfg.Destination.Type == "" {
		cfg.Destination.Type = "http"
	}
	if cfg.Destination.RequestTimeout == 0 {
		cfg.Destination.RequestTimeout = 10 * time.Second
	}
	if cfg.Relay.PollInterval == 0 {
		cfg.Relay.PollInterval = 15 * time.Second
	}
	if cfg.Relay.ConfirmationDepth == 0 {
		cfg.Relay.ConfirmationDepth = 6
	}
	if cfg.Relay.MaxRetryAttempts == 0 {
		cfg.Relay.MaxRetryAttempts = 5
	}
	if cfg.Relay.RetryDelay == 0 {
		cfg.Relay.RetryDelay = 5 * time.Second
	}
	if cfg.Relay.BackfillWindow == 0 {
		cfg.Relay.BackfillWindow = 100
	}
	if cfg.Relay.DispatchParallelism == 0 {
		cfg.Relay.DispatchParallelism = 1
	}
	if cfg.Alerts.Timeout == 0 {
		cfg.Alerts.Timeout = 5 * time.Second
	}
}
