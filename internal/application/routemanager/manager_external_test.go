package routemanager_test

import (
	"context"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crepric/netfailoverd/internal/application/routemanager"
	"github.com/crepric/netfailoverd/internal/domain/routing"
)

// fakeAdapter is an in-memory routing.Adapter for exercising SetDefaultGw
// and the sync loop without a real kernel.
type fakeAdapter struct {
	mu sync.Mutex

	table []routing.Entry

	failDelete map[string]bool
	failAdd    map[string]bool

	deletedOrder []string
	addedOrder   []string
}

func newFakeAdapter(table []routing.Entry) *fakeAdapter {
	return &fakeAdapter{
		table:      table,
		failDelete: map[string]bool{},
		failAdd:    map[string]bool{},
	}
}

func (a *fakeAdapter) ReadTable(_ context.Context) ([]routing.Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]routing.Entry, len(a.table))
	copy(out, a.table)
	return out, nil
}

func (a *fakeAdapter) AddDefaultRoute(ifName string, _ int, _ [4]byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.addedOrder = append(a.addedOrder, ifName)
	if a.failAdd[ifName] {
		return assertError("add failed for " + ifName)
	}
	return nil
}

func (a *fakeAdapter) DeleteDefaultRoute(ifName string, _ int, _ [4]byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deletedOrder = append(a.deletedOrder, ifName)
	if a.failDelete[ifName] {
		return assertError("delete failed for " + ifName)
	}
	return nil
}

type assertError string

func (e assertError) Error() string { return string(e) }

func mustAddr(t *testing.T, s string) netip.Addr {
	t.Helper()
	a, err := netip.ParseAddr(s)
	require.NoError(t, err)
	return a
}

func defaultGatewaySnapshot(t *testing.T) []routing.Entry {
	return []routing.Entry{
		{IfName: "eth0", Dst: netip.IPv4Unspecified(), Gw: mustAddr(t, "10.0.0.1"), Metric: 2},
		{IfName: "eth1", Dst: netip.IPv4Unspecified(), Gw: mustAddr(t, "10.0.1.1"), Metric: 5},
	}
}

func syncOnce(t *testing.T, m *routemanager.Manager) {
	t.Helper()
	m.StartChecks()
	require.Eventually(t, func() bool {
		return m.PrimaryDefaultGwInterface() != ""
	}, time.Second, 5*time.Millisecond)
	m.StopChecks()
}

func TestManager_SetDefaultGw_NoDefaultGateways(t *testing.T) {
	adapter := newFakeAdapter(nil)
	m := routemanager.New(adapter, time.Hour, nil)

	status := m.SetDefaultGw("eth0")
	assert.Equal(t, routing.KindNotFound, status.Kind())
}

func TestManager_SetDefaultGw_AlreadyPrimaryIsNoOp(t *testing.T) {
	adapter := newFakeAdapter(defaultGatewaySnapshot(t))
	m := routemanager.New(adapter, time.Hour, nil)
	syncOnce(t, m)

	status := m.SetDefaultGw("eth0")
	assert.Equal(t, routing.KindNoOp, status.Kind())
}

func TestManager_SetDefaultGw_TargetNotFound(t *testing.T) {
	adapter := newFakeAdapter(defaultGatewaySnapshot(t))
	m := routemanager.New(adapter, time.Hour, nil)
	syncOnce(t, m)

	status := m.SetDefaultGw("eth9")
	assert.Equal(t, routing.KindNotFound, status.Kind())
}

func TestManager_SetDefaultGw_Success(t *testing.T) {
	adapter := newFakeAdapter(defaultGatewaySnapshot(t))
	m := routemanager.New(adapter, time.Hour, nil)
	syncOnce(t, m)

	status := m.SetDefaultGw("eth1")
	require.True(t, status.IsOk())

	// Deletion order is fixed: runner-up (the promoted interface) first,
	// then the current primary.
	assert.Equal(t, []string{"eth1", "eth0"}, adapter.deletedOrder)
	assert.ElementsMatch(t, []string{"eth0", "eth1"}, adapter.addedOrder)
}

func TestManager_SetDefaultGw_DeleteNewGwFails(t *testing.T) {
	adapter := newFakeAdapter(defaultGatewaySnapshot(t))
	adapter.failDelete["eth1"] = true
	m := routemanager.New(adapter, time.Hour, nil)
	syncOnce(t, m)

	status := m.SetDefaultGw("eth1")
	assert.Equal(t, routing.KindUnknownError, status.Kind())
	assert.Empty(t, adapter.addedOrder)
}

func TestManager_SetDefaultGw_DeleteOldGwFails(t *testing.T) {
	adapter := newFakeAdapter(defaultGatewaySnapshot(t))
	adapter.failDelete["eth0"] = true
	m := routemanager.New(adapter, time.Hour, nil)
	syncOnce(t, m)

	status := m.SetDefaultGw("eth1")
	assert.Equal(t, routing.KindUnknownError, status.Kind())
	assert.Empty(t, adapter.addedOrder)
}

func TestManager_SetDefaultGw_AddFailureStillAttemptsBoth(t *testing.T) {
	adapter := newFakeAdapter(defaultGatewaySnapshot(t))
	adapter.failAdd["eth0"] = true
	m := routemanager.New(adapter, time.Hour, nil)
	syncOnce(t, m)

	status := m.SetDefaultGw("eth1")
	assert.Equal(t, routing.KindUnknownError, status.Kind())
	assert.ElementsMatch(t, []string{"eth0", "eth1"}, adapter.addedOrder)
}

func TestManager_GatewayChangeEvent_FiresOnFirstSync(t *testing.T) {
	adapter := newFakeAdapter(defaultGatewaySnapshot(t))
	m := routemanager.New(adapter, time.Hour, nil)

	var mu sync.Mutex
	var events []routemanager.GatewayChangeEvent
	m.RegisterOnGatewayChange(func(ev routemanager.GatewayChangeEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	syncOnce(t, m)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 1)
	assert.Equal(t, "eth0", events[0].NewPrimary)
}

func TestManager_GetRoutingTableAsStr(t *testing.T) {
	adapter := newFakeAdapter(defaultGatewaySnapshot(t))
	m := routemanager.New(adapter, time.Hour, nil)
	syncOnce(t, m)

	str := m.GetRoutingTableAsStr()
	assert.Contains(t, str, "eth0")
	assert.Contains(t, str, "eth1")
}
