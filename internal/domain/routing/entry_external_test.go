package routing_test

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crepric/netfailoverd/internal/domain/routing"
)

func mustAddr(t *testing.T, s string) netip.Addr {
	t.Helper()
	a, err := netip.ParseAddr(s)
	assert.NoError(t, err)
	return a
}

func TestEntry_IsDefaultRoute(t *testing.T) {
	zero := routing.Entry{Dst: netip.IPv4Unspecified()}
	assert.True(t, zero.IsDefaultRoute())

	nonZero := routing.Entry{Dst: mustAddr(t, "10.0.0.0")}
	assert.False(t, nonZero.IsDefaultRoute())
}

func TestDefaultGateways_SortsAscendingByMetric(t *testing.T) {
	snapshot := []routing.Entry{
		{IfName: "eth1", Dst: netip.IPv4Unspecified(), Gw: mustAddr(t, "10.0.1.1"), Metric: 5},
		{IfName: "lan0", Dst: mustAddr(t, "192.168.1.0"), Gw: mustAddr(t, "0.0.0.0"), Metric: 0},
		{IfName: "eth0", Dst: netip.IPv4Unspecified(), Gw: mustAddr(t, "10.0.0.1"), Metric: 2},
	}

	gateways := routing.DefaultGateways(snapshot)

	assert.Len(t, gateways, 2)
	assert.Equal(t, "eth0", gateways[0].IfName)
	assert.Equal(t, "eth1", gateways[1].IfName)
}

func TestDefaultGateways_EmptyWhenNoDefaultRoute(t *testing.T) {
	snapshot := []routing.Entry{
		{IfName: "lan0", Dst: mustAddr(t, "192.168.1.0"), Metric: 0},
	}
	assert.Empty(t, routing.DefaultGateways(snapshot))
}

func TestPrimaryInterface(t *testing.T) {
	snapshot := []routing.Entry{
		{IfName: "eth1", Dst: netip.IPv4Unspecified(), Metric: 5},
		{IfName: "eth0", Dst: netip.IPv4Unspecified(), Metric: 2},
	}

	name, found := routing.PrimaryInterface(snapshot)
	assert.True(t, found)
	assert.Equal(t, "eth0", name)
}

func TestPrimaryInterface_NotFound(t *testing.T) {
	_, found := routing.PrimaryInterface(nil)
	assert.False(t, found)
}

func TestEntry_String(t *testing.T) {
	e := routing.Entry{IfName: "eth0", Dst: netip.IPv4Unspecified(), Gw: mustAddr(t, "10.0.0.1"), Metric: 2}
	assert.Contains(t, e.String(), "eth0")
	assert.Contains(t, e.String(), "Metric: 2")
}
