// Package monitor periodically probes node and trigger-store liveness and
// exposes a coarse connection status. The status is advisory: nothing
// blocks on it except the presentation layer.
package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"pulse-backend/metrics"
)

// Status is the coarse connection classification.
type Status int

const (
	// StatusInitializing: the node is not reachable yet.
	StatusInitializing Status = iota
	// StatusDegraded: the node answers but the trigger store does not.
	StatusDegraded
	// StatusLive: both collaborators answer.
	StatusLive
)

func (s Status) String() string {
	switch s {
	case StatusLive:
		return "live"
	case StatusDegraded:
		return "degraded"
	default:
		return "initializing"
	}
}

// NodeProber is the lightweight node liveness read.
type NodeProber interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// StorePinger is the lightweight trigger-store liveness read.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// Monitor runs the probe cycle. It is the single writer of the status and
// of the latest observed block number.
type Monitor struct {
	node     NodeProber
	store    StorePinger
	interval time.Duration
	log      *zap.Logger
	onChange func(Status)

	mu        sync.RWMutex
	status    Status
	latest    uint64
	haveBlock bool
}

// New creates a monitor probing every interval. onChange fires on status
// transitions and may be nil.
func New(node NodeProber, store StorePinger, interval time.Duration, log *zap.Logger, onChange func(Status)) *Monitor {
	return &Monitor{
		node:     node,
		store:    store,
		interval: interval,
		log:      log,
		onChange: onChange,
		status:   StatusInitializing,
	}
}

// Status returns the latest probe classification.
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// LatestBlock returns the latest block number seen and whether one has
// been observed at all.
func (m *Monitor) LatestBlock() (uint64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest, m.haveBlock
}

// Run probes once immediately and then on every interval tick until ctx
// is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Probe(ctx)
		}
	}
}

// Probe performs one probe cycle and returns the resulting status. Node
// failure forces initializing regardless of store health; store failure
// alone downgrades to degraded.
func (m *Monitor) Probe(ctx context.Context) Status {
	status := StatusLive

	block, err := m.node.BlockNumber(ctx)
	if err != nil {
		if ctx.Err() == nil {
			m.log.Warn("node probe failed", zap.Error(err))
		}
		status = StatusInitializing
	}

	if status != StatusInitializing {
		if err := m.store.Ping(ctx); err != nil {
			if ctx.Err() == nil {
				m.log.Warn("trigger store probe failed", zap.Error(err))
			}
			status = StatusDegraded
		}
	}

	m.mu.Lock()
	prev := m.status
	m.status = status
	if err == nil {
		m.latest = block
		m.haveBlock = true
		metrics.LatestBlock.Set(float64(block))
	}
	m.mu.Unlock()

	metrics.ConnectionStatus.Set(float64(status))
	if status != prev {
		m.log.Info("connection status changed",
			zap.String("from", prev.String()),
			zap.String("to", status.String()))
		if m.onChange != nil {
			m.onChange(status)
		}
	}
	return status
}
