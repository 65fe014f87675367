// Package policy implements the Failover Policy (component E): the
// decision logic that reacts to interface-health and gateway-change events
// and decides when the primary default gateway must switch.
package policy

import (
	"log/slog"
	"sync"

	"github.com/crepric/netfailoverd/internal/application/routemanager"
	"github.com/crepric/netfailoverd/internal/domain/netstatus"
	"github.com/crepric/netfailoverd/internal/domain/routing"
)

// healthMonitor is the subset of the Interface Health Monitor's contract
// the policy needs. Defined here (consumer side) so the policy package has
// no compile-time dependency on the monitor's concrete type.
type healthMonitor interface {
	CheckStatus(name string) (netstatus.Record, bool)
	RegisterOnStatusChange(listener func(netstatus.ChangeEvent))
}

// routeManager is the subset of the Route Manager's contract the policy
// needs.
type routeManager interface {
	PrimaryDefaultGwInterface() string
	SetDefaultGw(name string) routing.Status
	RegisterOnGatewayChange(listener func(event routemanager.GatewayChangeEvent))
}

// Policy is the application-layer Failover Policy.
type Policy struct {
	health healthMonitor
	routes routeManager
	logger *slog.Logger

	mu         sync.Mutex
	preference []string
}

// New constructs a Policy and registers its listeners with health and
// routes. Matches the reference implementation's constructor-time
// registration of on_if_status_changed/on_gw_changed.
func New(health healthMonitor, routes routeManager, logger *slog.Logger) *Policy {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Policy{health: health, routes: routes, logger: logger}
	health.RegisterOnStatusChange(p.onInterfaceStatusChanged)
	routes.RegisterOnGatewayChange(func(ev routemanager.GatewayChangeEvent) {
		p.OnGatewayChanged(ev.NewPrimary)
	})
	return p
}

// SetPreferredGatewayInterfaces replaces the preference list. Rejects
// duplicates (I2) and leaves the existing list untouched in that case.
func (p *Policy) SetPreferredGatewayInterfaces(interfaces []string) routing.Status {
	seen := make(map[string]struct{}, len(interfaces))
	for _, name := range interfaces {
		if _, dup := seen[name]; dup {
			p.logger.Warn("duplicate interface in preference list", "interface", name)
			return routing.NewStatus(routing.KindInvalidArguments, "duplicate interface: "+name)
		}
		seen[name] = struct{}{}
	}

	ordered := make([]string, len(interfaces))
	copy(ordered, interfaces)

	p.mu.Lock()
	p.preference = ordered
	p.mu.Unlock()

	p.logger.Info("preferred gateway interfaces reset", "interfaces", ordered)
	return routing.Ok()
}

// preferenceSnapshot returns a copy of the current preference list;
// priorityOf derives an interface's 0-based priority from it.
func (p *Policy) preferenceSnapshot() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.preference))
	copy(out, p.preference)
	return out
}

func priorityOf(preference []string, name string) (int, bool) {
	for i, n := range preference {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// onInterfaceStatusChanged implements SPEC_FULL.md §4.E's
// on_if_status_changed decision table. It is invoked by the Health
// Monitor's dispatcher, off the monitor's state lock, so it is free to call
// back into the Route Manager without risking lock inversion (the Route
// Manager's lock orders after the policy's, per §5).
func (p *Policy) onInterfaceStatusChanged(ev netstatus.ChangeEvent) {
	if ev.Old == ev.New {
		return
	}

	cur := p.routes.PrimaryDefaultGwInterface()
	preference := p.preferenceSnapshot()

	if ev.New == netstatus.Healthy {
		if cur == ev.IfName {
			return
		}
		newPriority, inList := priorityOf(preference, ev.IfName)
		if !inList {
			p.logger.Warn("healthy interface not in preference list", "interface", ev.IfName)
			return
		}
		if cur == "" {
			return
		}
		curPriority, curInList := priorityOf(preference, cur)
		if curInList && newPriority >= curPriority {
			return
		}
		p.logger.Info("promoting healthier interface", "interface", ev.IfName, "current_primary", cur)
		p.routes.SetDefaultGw(ev.IfName)
		return
	}

	// Any non-HEALTHY status.
	if cur != ev.IfName {
		return
	}
	for _, candidate := range preference {
		rec, ok := p.health.CheckStatus(candidate)
		if ok && rec.Status == netstatus.Healthy {
			p.logger.Info("failing over to healthy candidate", "interface", candidate)
			p.routes.SetDefaultGw(candidate)
			return
		}
	}
	p.logger.Warn("no healthy alternative found, leaving route table unchanged", "interface", ev.IfName)
}

// OnGatewayChanged is the gateway-change listener. It is currently
// informational only, matching the reference implementation's
// not-yet-implemented reconciliation logic (see SPEC_FULL.md §9's
// "Gateway-change reconciliation" design note and DESIGN.md's Open
// Question resolution).
func (p *Policy) OnGatewayChanged(newPrimary string) {
	p.logger.Info("gateway changed", "new_primary", newPrimary)
}
