// Package health reports relay liveness and checkpoint lag over HTTP.
package health

import (
	"sync"
	"time"
)

// Status levels, worst case wins.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusCritical Status = "critical"
)

// Report is the detailed health snapshot.
type Report struct {
	Status      Status    `json:"status"`
	ChainHead   uint64    `json:"chain_head"`
	Checkpoint  uint64    `json:"checkpoint"`
	Lag         uint64    `json:"lag"`
	LastCycleAt time.Time `json:"last_cycle_at"`
	LastError   string    `json:"last_error,omitempty"`
}

// Config sets the thresholds for degraded and critical states.
type Config struct {
	// MaxLag is the checkpoint lag (blocks behind head) above which the
	// relay is degraded. Zero disables the check.
	MaxLag uint64

	// StallAfter marks the relay critical when no cycle has completed for
	// this long.
	StallAfter time.Duration
}

// Monitor records per-cycle observations from the relay loop and answers
// health queries. It implements the monitor loop's CycleObserver.
type Monitor struct {
	mu  sync.RWMutex
	cfg Config

	head        uint64
	checkpoint  uint64
	lastCycleAt time.Time
	lastErr     error
}

// NewMonitor creates a health monitor.
func NewMonitor(cfg Config) *Monitor {
	if cfg.StallAfter <= 0 {
		cfg.StallAfter = 5 * time.Minute
	}
	return &Monitor{cfg: cfg}
}

// RecordCycle is called by the relay loop after every scan cycle.
func (m *Monitor) RecordCycle(head, checkpoint uint64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.head = head
	m.checkpoint = checkpoint
	m.lastCycleAt = time.Now()
	m.lastErr = err
}

// Check returns the current health report.
func (m *Monitor) Check() Report {
	m.mu.RLock()
	defer m.mu.RUnlock()

	report := Report{
		Status:      StatusHealthy,
		ChainHead:   m.head,
		Checkpoint:  m.checkpoint,
		LastCycleAt: m.lastCycleAt,
	}
	if m.head > m.checkpoint {
		report.Lag = m.head - m.checkpoint
	}
	if m.lastErr != nil {
		report.LastError = m.lastErr.Error()
		report.Status = StatusDegraded
	}
	if m.cfg.MaxLag > 0 && report.Lag > m.cfg.MaxLag {
		report.Status = StatusDegraded
	}
	if m.lastCycleAt.IsZero() || time.Since(m.lastCycleAt) > m.cfg.StallAfter {
		report.Status = StatusCritical
	}
	return report
}
