// Package queryfacade implements the Query Facade (component F): a
// read-only, thread-safe view of the Health Monitor and Route Manager for
// consumption by the RPC transport.
package queryfacade

import (
	"sync"
	"time"

	"github.com/crepric/netfailoverd/internal/domain/netstatus"
	"github.com/crepric/netfailoverd/internal/domain/routing"
)

// InterfaceStatus is one row of GetIfStatus's result.
type InterfaceStatus struct {
	IfName        string
	Status        netstatus.Status
	LastCheckedAt time.Time
}

type healthMonitor interface {
	CheckStatus(name string) (netstatus.Record, bool)
	InterfaceNames() []string
}

type routeManager interface {
	PrimaryDefaultGwInterface() string
	SetDefaultGw(name string) routing.Status
}

// Facade is the Query Facade. Per SPEC_FULL.md §5 it sits outermost in
// the lock order, above Failover Policy, Route Manager and Health
// Monitor, and serializes its reads from those components under a coarse
// mutex, matching NetworkConfigImpl::GetDefaultGw/GetIfStatus.
type Facade struct {
	mu     sync.Mutex
	health healthMonitor
	routes routeManager
}

// New constructs a Facade over the given Health Monitor and Route Manager.
func New(health healthMonitor, routes routeManager) *Facade {
	return &Facade{health: health, routes: routes}
}

// GetDefaultGw returns the current primary default gateway interface, and
// false if none is known yet.
func (f *Facade) GetDefaultGw() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := f.routes.PrimaryDefaultGwInterface()
	return name, name != ""
}

// GetIfStatus returns the health status of every monitored interface.
func (f *Facade) GetIfStatus() []InterfaceStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := f.health.InterfaceNames()
	out := make([]InterfaceStatus, 0, len(names))
	for _, name := range names {
		rec, ok := f.health.CheckStatus(name)
		if !ok {
			continue
		}
		out = append(out, InterfaceStatus{
			IfName:        name,
			Status:        rec.Status,
			LastCheckedAt: rec.LastCheckedAt,
		})
	}
	return out
}

// ForceNewGateway forwards to the Route Manager's SetDefaultGw, returning
// its module-local result. Transport layers that preserve the documented
// RPC quirk (SPEC_FULL.md §6/§9) should log this result rather than
// propagate it as a transport error.
func (f *Facade) ForceNewGateway(ifName string) routing.Status {
	return f.routes.SetDefaultGw(ifName)
}
