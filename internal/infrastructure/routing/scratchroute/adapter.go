// Package scratchroute provides a routing.Adapter for platforms without
// /proc/net/route or SIOCADDRT/SIOCDELRT support (non-Linux, or Linux
// builds outside the amd64 ioctl layout this daemon ships). It lets the
// application layer construct and test a Route Manager on any platform;
// it is never a substitute for linuxroute on a real gateway deployment.
package scratchroute

import (
	"context"

	"github.com/crepric/netfailoverd/internal/domain/routing"
)

// Adapter is a routing.Adapter that reports an empty table and rejects
// every write, mirroring the resources/metrics/scratch collectors' stance
// on unsupported environments.
type Adapter struct{}

// New constructs a scratch Adapter.
func New() *Adapter {
	return &Adapter{}
}

// ReadTable always returns an empty table: a scratch environment has no
// kernel routing table to read.
func (a *Adapter) ReadTable(_ context.Context) ([]routing.Entry, error) {
	return nil, nil
}

// AddDefaultRoute always fails: no kernel route table exists to program.
func (a *Adapter) AddDefaultRoute(ifName string, _ int, _ [4]byte) error {
	return routing.NewStatus(routing.KindNotImplemented, "routing is not available on this platform: "+ifName)
}

// DeleteDefaultRoute always fails, for the same reason as AddDefaultRoute.
func (a *Adapter) DeleteDefaultRoute(ifName string, _ int, _ [4]byte) error {
	return routing.NewStatus(routing.KindNotImplemented, "routing is not available on this platform: "+ifName)
}
