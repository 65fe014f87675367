//go:build !(linux && amd64)

package main

import (
	"github.com/crepric/netfailoverd/internal/domain/routing"
	"github.com/crepric/netfailoverd/internal/infrastructure/routing/scratchroute"
)

// newRoutingAdapter constructs the platform routing.Adapter. Outside
// linux/amd64 there is no kernel route-table access, so the daemon runs
// against the always-empty scratch adapter.
func newRoutingAdapter() routing.Adapter {
	return scratchroute.New()
}
