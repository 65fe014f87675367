package routing

import "context"

// Adapter is the injectable boundary between the Route Manager and the
// kernel routing table. Implementations must be safe to use without a real
// kernel underneath (see internal/infrastructure/routing/scratchroute) so
// the application layer remains testable on any platform.
type Adapter interface {
	// ReadTable returns an ordered snapshot of the IPv4 routing table.
	ReadTable(ctx context.Context) ([]Entry, error)

	// AddDefaultRoute installs a default route (destination and netmask
	// 0.0.0.0) on ifName via gw, at the given kernel metric. Callers must
	// pass the kernel-internal metric (userspace metric + 1); see Entry's
	// doc comment.
	AddDefaultRoute(ifName string, kernelMetric int, gw [4]byte) error

	// DeleteDefaultRoute removes a default route previously installed with
	// AddDefaultRoute. Same metric convention as AddDefaultRoute.
	DeleteDefaultRoute(ifName string, kernelMetric int, gw [4]byte) error
}
