//go:build linux && amd64

package main

import (
	"github.com/crepric/netfailoverd/internal/domain/routing"
	"github.com/crepric/netfailoverd/internal/infrastructure/routing/linuxroute"
)

// newRoutingAdapter constructs the platform routing.Adapter. On linux/amd64
// this is the real /proc/net/route + SIOCADDRT/SIOCDELRT adapter.
func newRoutingAdapter() routing.Adapter {
	return linuxroute.New()
}
