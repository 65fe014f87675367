// Package routemanager implements the Route Manager (component D):
// periodic routing-table sync, primary-default-gateway tracking, and the
// atomic default-gateway swap algorithm.
package routemanager

import (
	"context"
	"log/slog"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/crepric/netfailoverd/internal/domain/dispatch"
	"github.com/crepric/netfailoverd/internal/domain/routing"
)

// GatewayChangeEvent is published whenever the primary default gateway
// interface changes, including the first successful read that finds a
// default route. A read that finds no default route while no primary is
// known publishes nothing.
type GatewayChangeEvent struct {
	NewPrimary string
}

// Manager is the application-layer Route Manager.
type Manager struct {
	adapter  routing.Adapter
	interval time.Duration
	logger   *slog.Logger

	mu                sync.RWMutex
	snapshot          []routing.Entry
	currentPrimary    string
	knownGatewayIfs   map[string]struct{}
	haveReadOnce      bool

	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	dispatcher *dispatch.Dispatcher[GatewayChangeEvent]
}

// New constructs a Manager. interval is the routing-table sync period
// (configuration's route_sync_interval_s).
func New(adapter routing.Adapter, interval time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		adapter:         adapter,
		interval:        interval,
		logger:          logger,
		knownGatewayIfs: make(map[string]struct{}),
		dispatcher:      dispatch.NewDispatcher[GatewayChangeEvent](8),
	}
}

// RegisterOnGatewayChange sets (or replaces) the gateway-change listener.
func (m *Manager) RegisterOnGatewayChange(listener func(GatewayChangeEvent)) {
	m.dispatcher.SetHandler(listener)
}

// StartChecks starts the single sync loop. Calling it twice is a no-op.
func (m *Manager) StartChecks() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	stopCh := m.stopCh
	m.mu.Unlock()

	m.dispatcher.Start()

	m.wg.Add(1)
	go m.runSyncLoop(stopCh)
}

// StopChecks signals the sync loop to stop and waits for it to exit.
// Always safe to call, including when StartChecks was never called.
func (m *Manager) StopChecks() {
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

// PrimaryDefaultGwInterface returns the interface name of the current
// primary default gateway, or "" if none is known yet.
func (m *Manager) PrimaryDefaultGwInterface() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentPrimary
}

// GetRoutingTableAsStr renders the last-read snapshot, one entry per line.
func (m *Manager) GetRoutingTableAsStr() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var b strings.Builder
	for _, e := range m.snapshot {
		b.WriteString(e.String())
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Manager) runSyncLoop(stopCh chan struct{}) {
	defer m.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-timer.C:
		}

		m.sync(context.Background())

		timer.Reset(m.interval)
	}
}

// sync re-reads the routing table and updates derived state, firing the
// gateway-change listener (off the state lock) if the primary changed.
func (m *Manager) sync(ctx context.Context) {
	m.mu.Lock()
	newSnapshot, err := m.adapter.ReadTable(ctx)
	if err != nil {
		m.mu.Unlock()
		m.logger.Error("failed to read routing table", "error", err)
		return
	}

	m.snapshot = newSnapshot
	m.haveReadOnce = true

	seenThisSync := make(map[string]struct{})
	for _, e := range m.snapshot {
		if e.IsDefaultRoute() {
			seenThisSync[e.IfName] = struct{}{}
		}
	}
	for ifName := range m.knownGatewayIfs {
		if _, ok := seenThisSync[ifName]; !ok {
			m.logger.Warn("known gateway interface missing from routing table", "interface", ifName)
		}
	}
	for ifName := range seenThisSync {
		m.knownGatewayIfs[ifName] = struct{}{}
	}

	newPrimary, found := routing.PrimaryInterface(m.snapshot)
	if !found {
		newPrimary = ""
	}
	if gateways := routing.DefaultGateways(m.snapshot); len(gateways) > 1 && gateways[0].Metric == gateways[1].Metric {
		m.logger.Error("default routes share the minimum metric; using the first encountered",
			"interface", gateways[0].IfName, "other", gateways[1].IfName, "metric", gateways[0].Metric)
	}
	changed := newPrimary != m.currentPrimary
	m.currentPrimary = newPrimary
	m.mu.Unlock()

	if changed {
		m.logger.Info("default gateway changed", "new_primary", newPrimary)
		m.dispatcher.Dispatch(GatewayChangeEvent{NewPrimary: newPrimary})
	}
}

// SetDefaultGw atomically elects newIfName as the new primary default
// gateway, following the nine-step algorithm in SPEC_FULL.md §4.D.
func (m *Manager) SetDefaultGw(newIfName string) routing.Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	gateways := routing.DefaultGateways(m.snapshot)
	if len(gateways) == 0 {
		m.logger.Warn("there are no default gateways")
		return routing.NewStatus(routing.KindNotFound, "there are no default gateways")
	}

	if gateways[0].IfName == newIfName {
		m.logger.Info("interface is already the default gateway", "interface", newIfName)
		return routing.NewStatus(routing.KindNoOp, "interface "+newIfName+" was already default")
	}

	var newGwEntry *routing.Entry
	for i := range gateways {
		if gateways[i].IfName == newIfName {
			newGwEntry = &gateways[i]
			break
		}
	}
	if newGwEntry == nil {
		m.logger.Warn("interface does not have a routing entry", "interface", newIfName)
		return routing.NewStatus(routing.KindNotFound, "interface "+newIfName+" does not have a routing entry")
	}

	oldPrimary := gateways[0]

	// The +1 undoes the /proc/net/route-vs-kernel metric offset (§4.B).
	kernelOldMetric := oldPrimary.Metric + 1
	kernelNewMetric := newGwEntry.Metric + 1

	oldGwBytes := addrTo4(oldPrimary.Gw)
	newGwBytes := addrTo4(newGwEntry.Gw)

	// Deletion order is fixed: runner-up first, then current primary.
	if err := m.adapter.DeleteDefaultRoute(newGwEntry.IfName, kernelNewMetric, newGwBytes); err != nil {
		m.logger.Error("could not delete old route for new gateway", "interface", newGwEntry.IfName, "error", err)
		return routing.NewStatus(routing.KindUnknownError, "could not delete old route for new gw")
	}
	if err := m.adapter.DeleteDefaultRoute(oldPrimary.IfName, kernelOldMetric, oldGwBytes); err != nil {
		m.logger.Error("could not delete old route for old gateway", "interface", oldPrimary.IfName, "error", err)
		return routing.NewStatus(routing.KindUnknownError, "could not delete old route for old gw")
	}

	// Both additions are attempted regardless of the first's result, to
	// minimize the window with no default route at all.
	errOld := m.adapter.AddDefaultRoute(oldPrimary.IfName, kernelNewMetric, oldGwBytes)
	if errOld != nil {
		m.logger.Error("could not add demoted route", "interface", oldPrimary.IfName, "error", errOld)
	}
	errNew := m.adapter.AddDefaultRoute(newGwEntry.IfName, kernelOldMetric, newGwBytes)
	if errNew != nil {
		m.logger.Error("could not add promoted route", "interface", newGwEntry.IfName, "error", errNew)
	}
	if errOld != nil || errNew != nil {
		return routing.NewStatus(routing.KindUnknownError, "could not successfully add one of the routes")
	}

	m.logger.Info("reprogramming done", "new_primary", newGwEntry.IfName)
	return routing.Ok()
}

func addrTo4(a netip.Addr) [4]byte {
	if a.Is4In6() {
		a = a.Unmap()
	}
	return a.As4()
}
