package routing

import (
	"fmt"
	"net/netip"
	"sort"
)

// zeroAddr is the IPv4 "any" address, used both as the default-route
// destination and as its netmask.
var zeroAddr = netip.IPv4Unspecified()

// Entry describes one row of the kernel's IPv4 routing table.
//
// Metric follows the same convention as /proc/net/route: it is one less
// than the value the kernel holds internally. Operations that program a
// route back into the kernel (AddDefaultRoute/DeleteDefaultRoute) must add
// one back before issuing the ioctl; see the Adapter port.
type Entry struct {
	IfName string
	Dst    netip.Addr
	Gw     netip.Addr
	Metric int
}

// String renders the entry the way the reference implementation's
// RoutingEntry::toString does, one line suitable for GetRoutingTableAsStr.
func (e Entry) String() string {
	return fmt.Sprintf("If: %s - Dst: %s - Gw: %s - Metric: %d", e.IfName, e.Dst, e.Gw, e.Metric)
}

// IsDefaultRoute reports whether the entry's destination is 0.0.0.0,
// marking it as a candidate default gateway.
func (e Entry) IsDefaultRoute() bool {
	return e.Dst == zeroAddr
}

// DefaultGateways extracts the default-route entries from a snapshot and
// returns them sorted ascending by metric, lowest (highest priority) first.
// Ties are broken by encounter order, matching std::sort's behavior on the
// reference implementation's strict-weak-ordering comparator, which is
// stable for equal metrics only insofar as sort.SliceStable makes it so.
func DefaultGateways(snapshot []Entry) []Entry {
	gateways := make([]Entry, 0, len(snapshot))
	for _, e := range snapshot {
		if e.IsDefaultRoute() {
			gateways = append(gateways, e)
		}
	}
	sort.SliceStable(gateways, func(i, j int) bool {
		return gateways[i].Metric < gateways[j].Metric
	})
	return gateways
}

// PrimaryInterface returns the interface name of the minimum-metric default
// route in snapshot, and whether one was found. If two default routes share
// the minimum metric, the first one encountered in snapshot order wins and
// the collision is the caller's responsibility to log (see invariant I1
// in SPEC_FULL.md).
func PrimaryInterface(snapshot []Entry) (string, bool) {
	minMetric := 0
	found := false
	name := ""
	for _, e := range snapshot {
		if !e.IsDefaultRoute() {
			continue
		}
		if !found || e.Metric < minMetric {
			minMetric = e.Metric
			name = e.IfName
			found = true
		}
	}
	return name, found
}
