package netstatus

import "context"

// Prober is the injectable probe capability (component A). Given an
// interface name, it returns HEALTHY, UNHEALTHY or UNKNOWN according to
// observed packet loss. Implementations must be stateless and safe to
// invoke concurrently from many goroutines, each probing a distinct
// interface.
type Prober interface {
	Probe(ctx context.Context, ifName string) Status
}
