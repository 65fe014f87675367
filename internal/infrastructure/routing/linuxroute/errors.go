// Package linuxroute implements the routing.Adapter port (component B) for
// Linux: reading /proc/net/route and programming default routes with the
// SIOCADDRT/SIOCDELRT ioctls, exactly as net_failover_manager's original
// C++ RouteManager did via raw rtentry structs.
package linuxroute

import "fmt"

// ioctlError wraps a failed routing syscall with the operation and
// interface it was attempted against, mirroring the kernel adapters'
// WrapError idiom used elsewhere in this codebase.
type ioctlError struct {
	Op     string
	IfName string
	Err    error
}

func (e *ioctlError) Error() string {
	return fmt.Sprintf("%s route for %s: %v", e.Op, e.IfName, e.Err)
}

func (e *ioctlError) Unwrap() error {
	return e.Err
}

func wrapIoctlError(op, ifName string, err error) error {
	if err == nil {
		return nil
	}
	return &ioctlError{Op: op, IfName: ifName, Err: err}
}
