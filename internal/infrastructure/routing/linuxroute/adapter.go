//go:build linux && amd64

// Package linuxroute implements the routing.Adapter port (component B) for
// Linux: reading /proc/net/route and programming default routes with the
// SIOCADDRT/SIOCDELRT ioctls, exactly as net_failover_manager's original
// C++ RouteManager did via raw rtentry structs.
package linuxroute

import (
	"context"

	"github.com/crepric/netfailoverd/internal/domain/routing"
)

// Adapter is the Linux routing.Adapter implementation.
type Adapter struct {
	reader *tableReader
}

// New constructs an Adapter reading the standard /proc/net/route.
func New() *Adapter {
	return &Adapter{reader: newTableReader()}
}

// ReadTable implements routing.Adapter.
func (a *Adapter) ReadTable(ctx context.Context) ([]routing.Entry, error) {
	return a.reader.readTable(ctx)
}

// AddDefaultRoute implements routing.Adapter via SIOCADDRT.
func (a *Adapter) AddDefaultRoute(ifName string, kernelMetric int, gw [4]byte) error {
	return wrapIoctlError("add", ifName, addRoute(ifName, kernelMetric, gw))
}

// DeleteDefaultRoute implements routing.Adapter via SIOCDELRT.
func (a *Adapter) DeleteDefaultRoute(ifName string, kernelMetric int, gw [4]byte) error {
	return wrapIoctlError("delete", ifName, deleteRoute(ifName, kernelMetric, gw))
}
