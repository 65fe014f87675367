// Package healthmonitor implements the Interface Health Monitor (component
// C): one probe loop per configured interface, debounced status with
// timestamps, and status-change notifications dispatched off the state
// lock.
package healthmonitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/crepric/netfailoverd/internal/domain/dispatch"
	"github.com/crepric/netfailoverd/internal/domain/netstatus"
)

// Monitor is the application-layer Interface Health Monitor.
//
// Monitor follows the same lifecycle idiom as the rest of the codebase: a
// running bool plus stopCh channel plus sync.WaitGroup, with each
// per-interface loop waking on a timer and watching stopCh for shutdown.
type Monitor struct {
	prober   netstatus.Prober
	interval time.Duration
	logger   *slog.Logger

	mu      sync.RWMutex
	records map[string]netstatus.Record
	names   []string

	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	dispatcher *dispatch.Dispatcher[netstatus.ChangeEvent]
}

// New constructs a Monitor for the given fixed set of interface names.
// interval is the time between successive probes of the same interface
// (configuration's health_check_interval_s).
func New(ifNames []string, prober netstatus.Prober, interval time.Duration, logger *slog.Logger) *Monitor {
	records := make(map[string]netstatus.Record, len(ifNames))
	names := make([]string, len(ifNames))
	copy(names, ifNames)
	for _, name := range ifNames {
		records[name] = netstatus.Record{Status: netstatus.Unknown}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		prober:     prober,
		interval:   interval,
		logger:     logger,
		records:    records,
		names:      names,
		dispatcher: dispatch.NewDispatcher[netstatus.ChangeEvent](32),
	}
}

// RegisterOnStatusChange sets (or replaces) the status-change listener.
// Safe to call before or after StartChecks.
func (m *Monitor) RegisterOnStatusChange(listener func(netstatus.ChangeEvent)) {
	m.dispatcher.SetHandler(listener)
}

// StartChecks spawns one probe loop per configured interface. Calling
// StartChecks twice is a no-op; it does not spawn a second set of loops.
func (m *Monitor) StartChecks() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	stopCh := m.stopCh
	names := make([]string, len(m.names))
	copy(names, m.names)
	m.mu.Unlock()

	m.dispatcher.Start()

	for _, name := range names {
		m.wg.Add(1)
		go m.runProbeLoop(name, stopCh)
	}
}

// StopChecks signals every probe loop to stop and waits for them to exit.
// Calling StopChecks twice, or before StartChecks, is a safe no-op, and it
// is always safe to call from a deferred shutdown path regardless of
// whether StartChecks ever ran.
func (m *Monitor) StopChecks() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	m.mu.Unlock()

	m.wg.Wait()
	m.dispatcher.Stop()
}

// CheckStatus returns the current status and last-checked timestamp for
// name, or ok=false if name is not a configured interface.
func (m *Monitor) CheckStatus(name string) (rec netstatus.Record, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok = m.records[name]
	return rec, ok
}

// InterfaceNames returns a snapshot of the configured interface names.
func (m *Monitor) InterfaceNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// runProbeLoop is the per-interface probe loop described in SPEC_FULL.md
// §4.C: probe, compare-and-update under lock, dispatch the change event
// off the lock, then wait for the next tick or shutdown.
func (m *Monitor) runProbeLoop(name string, stopCh chan struct{}) {
	defer m.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-timer.C:
		}

		next := time.Now().Add(m.interval)
		status := m.probeSafely(name)
		now := time.Now()

		m.mu.Lock()
		old := m.records[name]
		m.records[name] = netstatus.Record{Status: status, LastCheckedAt: now}
		changed := status != old.Status
		m.mu.Unlock()

		if changed {
			m.logger.Info("interface health changed", "interface", name, "old", old.Status, "new", status)
			m.dispatcher.Dispatch(netstatus.ChangeEvent{
				IfName:    name,
				Old:       old.Status,
				New:       status,
				Timestamp: now,
			})
		}

		delay := time.Until(next)
		if delay < 0 {
			delay = 0
		}
		timer.Reset(delay)
	}
}

// probeSafely invokes the injected Prober and recovers from any panic,
// reporting UNKNOWN on failure so a misbehaving probe can never take down
// the loop (SPEC_FULL.md §4.C "Failure semantics").
func (m *Monitor) probeSafely(name string) (status netstatus.Status) {
	status = netstatus.Unknown
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("probe panicked", "interface", name, "panic", fmt.Sprint(r))
			status = netstatus.Unknown
		}
	}()
	return m.prober.Probe(context.Background(), name)
}
