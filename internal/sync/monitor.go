// Package sync implements the client synchronization engine: connectivity
// tracking, optimistic mutation apply with offline fallback, and the
// drain/retry/refresh reconciliation of the pending operation queue.
package sync

import (
	"context"
	"log"
	stdsync "sync"
	"time"
)

// State is the connectivity state exposed for display.
type State int32

const (
	// StateOffline means the backend is unreachable; mutations apply
	// locally and queue.
	StateOffline State = iota
	// StateOnline means the backend confirmed recent traffic.
	StateOnline
	// StateSyncing is transient, entered only during a reconcile pass.
	StateSyncing
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateOnline:
		return "online"
	case StateSyncing:
		return "syncing"
	default:
		return "offline"
	}
}

// ProbeFunc checks backend reachability.
type ProbeFunc func(ctx context.Context) error

// Monitor observes transitions between reachable and unreachable states and
// triggers reconciliation on recovery. It holds no business data.
type Monitor struct {
	mu    stdsync.RWMutex
	state State

	probe     ProbeFunc
	onRecover func(ctx context.Context)
	interval  time.Duration

	ticker   *time.Ticker
	stopCh   chan struct{}
	stopOnce stdsync.Once
}

// NewMonitor creates a connectivity monitor. onRecover is invoked whenever a
// probe finds the backend reachable again after an offline period.
func NewMonitor(probe ProbeFunc, interval time.Duration, onRecover func(ctx context.Context)) *Monitor {
	if interval == 0 {
		interval = 30 * time.Second
	}
	return &Monitor{
		state:     StateOffline,
		probe:     probe,
		onRecover: onRecover,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start derives the initial state from one immediate probe and begins the
// periodic reachability loop.
func (m *Monitor) Start(ctx context.Context) {
	if err := m.probe(ctx); err != nil {
		m.set(StateOffline)
		log.Printf("[Monitor] Starting offline: %v", err)
	} else {
		m.set(StateOnline)
	}

	m.ticker = time.NewTicker(m.interval)
	go m.run()
	log.Printf("[Monitor] Started - probe interval: %v, initial state: %s", m.interval, m.State())
}

func (m *Monitor) run() {
	for {
		select {
		case <-m.ticker.C:
			m.check()
		case <-m.stopCh:
			log.Printf("[Monitor] Stopped")
			return
		}
	}
}

// check runs one probe cycle. A pass already in flight owns the state, so
// Syncing is left alone.
func (m *Monitor) check() {
	if m.State() == StateSyncing {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.interval)
	defer cancel()

	err := m.probe(ctx)
	switch {
	case err == nil && m.State() == StateOffline:
		log.Printf("[Monitor] Backend reachable again, triggering sync")
		if m.onRecover != nil {
			m.onRecover(ctx)
		}
	case err != nil && m.State() == StateOnline:
		log.Printf("[Monitor] Reachability lost: %v", err)
		m.set(StateOffline)
	}
}

// State returns the current connectivity state.
func (m *Monitor) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// ReportOffline records a network-failed mutation attempt, moving the state
// to Offline without waiting for a platform signal.
func (m *Monitor) ReportOffline() {
	m.set(StateOffline)
}

func (m *Monitor) set(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

// Stop stops the reachability loop.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		if m.ticker != nil {
			m.ticker.Stop()
		}
		close(m.stopCh)
	})
}
