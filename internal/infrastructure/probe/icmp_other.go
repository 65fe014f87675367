//go:build !linux

package probe

import (
	"context"
	"errors"
	"net/netip"
	"syscall"
	"time"
)

// nativePing is not supported outside Linux; this daemon targets Linux
// gateways, so non-Linux builds always fall back to TCP probing.
func (p *ICMPProber) nativePing(_ context.Context, _ netip.Addr, _ string, _ time.Duration) error {
	return errors.New("native icmp not supported on this platform")
}

// bindControl is a no-op outside Linux: SO_BINDTODEVICE is a Linux-only
// socket option, so BindToInterface has no effect on other platforms.
func bindControl(_ string) func(network, address string, c syscall.RawConn) error {
	return func(_, _ string, _ syscall.RawConn) error {
		return nil
	}
}
