// Package control assembles the relay from configuration and manages its
// lifecycle.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/Sevast-st/bega-mon/internal/core/checkpoint"
	"github.com/Sevast-st/bega-mon/internal/core/config"
	"github.com/Sevast-st/bega-mon/internal/infra/chain/evm"
	"github.com/Sevast-st/bega-mon/internal/infra/rpc"
	"github.com/Sevast-st/bega-mon/internal/infra/storage/memory"
	"github.com/Sevast-st/bega-mon/internal/infra/storage/postgres"
	redisstore "github.com/Sevast-st/bega-mon/internal/infra/storage/redis"
	"github.com/Sevast-st/bega-mon/internal/relay/alert"
	"github.com/Sevast-st/bega-mon/internal/relay/decoder"
	"github.com/Sevast-st/bega-mon/internal/relay/dispatcher"
	"github.com/Sevast-st/bega-mon/internal/relay/health"
	"github.com/Sevast-st/bega-mon/internal/relay/monitor"
	"github.com/Sevast-st/bega-mon/internal/relay/sink"
)

// Relay is the assembled application.
type Relay struct {
	cfg          *config.AppConfig
	monitor      *monitor.Monitor
	healthServer *health.Server
	db           *postgres.DB
	redisStore   *redisstore.CheckpointStore
	grpcSink     *sink.GRPCSink
	log          *slog.Logger
}

// NewRelay wires all components from configuration.
func NewRelay(cfg *config.AppConfig) (*Relay, error) {
	relay := &Relay{cfg: cfg, log: slog.Default()}

	// 1. Checkpoint store
	store, err := relay.initStore(cfg.Storage)
	if err != nil {
		return nil, err
	}

	tracker := checkpoint.NewTracker(store, cfg.Relay.ConfirmationDepth, cfg.Relay.BackfillWindow)

	// 2. Source chain reader
	providers := make([]rpc.Provider, 0, len(cfg.Source.Providers))
	for _, p := range cfg.Source.Providers {
		providers = append(providers, rpc.NewHTTPProvider(p.Name, p.URL, cfg.Source.RequestTimeout))
	}
	retryCfg := rpc.RetryConfig{
		MaxAttempts: cfg.Relay.MaxRetryAttempts,
		Delay:       cfg.Relay.RetryDelay,
		MaxDelay:    time.Minute,
		Policy:      rpc.DelayLinear,
	}
	reader := evm.NewReader(rpc.NewFailoverProvider(providers...), retryCfg)

	// 3. Destination sink
	eventSink, err := relay.initSink(cfg.Destination)
	if err != nil {
		return nil, err
	}

	disp := dispatcher.New(eventSink, dispatcher.Config{
		MaxAttempts:    cfg.Relay.MaxRetryAttempts,
		RetryDelay:     cfg.Relay.RetryDelay,
		AttemptTimeout: cfg.Destination.RequestTimeout,
	})

	// 4. Alerts
	alerts := alert.NewDispatcher()
	if err := alerts.Register("console", alert.NewConsoleChannel()); err != nil {
		return nil, err
	}
	if cfg.Alerts.WebhookURL != "" {
		webhook := alert.NewWebhookChannel(cfg.Alerts.WebhookURL, cfg.Alerts.Timeout)
		if err := alerts.Register("webhook", webhook); err != nil {
			return nil, err
		}
	}

	// 5. Health
	healthMon := health.NewMonitor(health.Config{
		MaxLag:     cfg.Relay.BackfillWindow * 2,
		StallAfter: 4 * cfg.Relay.PollInterval,
	})
	relay.healthServer = health.NewServer(healthMon, cfg.Server.Port)

	// 6. Monitor loop
	relay.monitor = monitor.New(monitor.Config{
		Contract:            strings.ToLower(cfg.Source.ContractAddress),
		Reader:              reader,
		Decoder:             decoder.New(cfg.Source.EventTopic),
		Dispatcher:          disp,
		Tracker:             tracker,
		Alerts:              alerts,
		Observer:            healthMon,
		PollInterval:        cfg.Relay.PollInterval,
		DispatchParallelism: cfg.Relay.DispatchParallelism,
	})

	return relay, nil
}

func (r *Relay) initStore(cfg config.StorageConfig) (checkpoint.Store, error) {
	if cfg.Postgres.URL != "" {
		db, err := postgres.NewDB(context.Background(), cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		r.db = db
		r.log.Info("Using PostgreSQL checkpoint store")
		return postgres.NewCheckpointStore(db, ""), nil
	}

	if cfg.Redis.URL != "" {
		store, err := redisstore.NewCheckpointStore(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		r.redisStore = store
		r.log.Info("Using Redis checkpoint store")
		return store, nil
	}

	r.log.Info("Using in-memory checkpoint store")
	return memory.NewCheckpointStore(), nil
}

func (r *Relay) initSink(cfg config.DestinationConfig) (sink.Sink, error) {
	switch cfg.Type {
	case "grpc":
		s, err := sink.NewGRPCSink(cfg.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("init grpc sink: %w", err)
		}
		r.grpcSink = s
		return s, nil
	case "http", "":
		return sink.NewHTTPSink(cfg.Endpoint, cfg.RequestTimeout), nil
	default:
		return nil, fmt.Errorf("unknown destination type %q", cfg.Type)
	}
}

// Start launches the health server and the relay loop.
func (r *Relay) Start(ctx context.Context) error {
	go func() {
		if err := r.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.log.Error("Health server failed", "error", err)
		}
	}()

	go func() {
		if err := r.monitor.Start(ctx); err != nil {
			r.log.Error("Monitor loop failed", "error", err)
		}
	}()

	return nil
}

// Stop shuts everything down in reverse order.
func (r *Relay) Stop(ctx context.Context) error {
	r.log.Info("Stopping relay...")

	r.monitor.Stop()

	if r.grpcSink != nil {
		if err := r.grpcSink.Close(); err != nil {
			r.log.Warn("Failed to close grpc sink", "error", err)
		}
	}
	if r.redisStore != nil {
		if err := r.redisStore.Close(); err != nil {
			r.log.Warn("Failed to close redis", "error", err)
		}
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			r.log.Warn("Failed to close database", "error", err)
		}
	}

	return r.healthServer.Stop(ctx)
}
