//go:build linux

package probe

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"os"
	"syscall"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const (
	icmpEchoDataSize = 32
	icmpMaxPacketSize = 1500
)

// bindControl returns a net.Dialer.Control hook that binds the dialed
// socket to ifName via SO_BINDTODEVICE, following wan-prober's
// bindToDevice pattern, so a probe measures reachability via that specific
// interface rather than whatever the kernel currently routes through.
func bindControl(ifName string) func(network, address string, c syscall.RawConn) error {
	return func(_, _ string, c syscall.RawConn) error {
		var sockErr error
		err := c.Control(func(fd uintptr) {
			sockErr = syscall.SetsockoptString(int(fd), syscall.SOL_SOCKET, syscall.SO_BINDTODEVICE, ifName)
		})
		if err != nil {
			return err
		}
		return sockErr
	}
}

// nativePing sends one ICMP echo request to target and waits for the
// matching reply, returning nil on success. When cfg.BindToInterface is
// set, the underlying socket is bound to ifName before the echo is sent.
func (p *ICMPProber) nativePing(ctx context.Context, target netip.Addr, ifName string, timeout time.Duration) error {
	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return fmt.Errorf("open icmp socket: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if p.cfg.BindToInterface && ifName != "" {
		if err := bindConnToInterface(conn, ifName); err != nil {
			return fmt.Errorf("bind to %s: %w", ifName, err)
		}
	}

	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   os.Getpid() & 0xffff,
			Seq:  1,
			Data: make([]byte, icmpEchoDataSize),
		},
	}
	payload, err := msg.Marshal(nil)
	if err != nil {
		return fmt.Errorf("marshal echo: %w", err)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(timeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("set deadline: %w", err)
	}

	dst := &net.IPAddr{IP: net.IP(target.AsSlice())}
	if _, err := conn.WriteTo(payload, dst); err != nil {
		return fmt.Errorf("send echo: %w", err)
	}

	reply := make([]byte, icmpMaxPacketSize)
	n, _, err := conn.ReadFrom(reply)
	if err != nil {
		return fmt.Errorf("receive echo reply: %w", err)
	}
	rm, err := icmp.ParseMessage(1, reply[:n])
	if err != nil {
		return fmt.Errorf("parse echo reply: %w", err)
	}
	if rm.Type != ipv4.ICMPTypeEchoReply {
		return fmt.Errorf("unexpected reply type %v", rm.Type)
	}
	return nil
}

// bindConnToInterface binds the ICMP packet connection's underlying raw
// socket to ifName via SO_BINDTODEVICE.
func bindConnToInterface(conn *icmp.PacketConn, ifName string) error {
	rc, err := conn.IPv4PacketConn().SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	ctrlErr := rc.Control(func(fd uintptr) {
		sockErr = syscall.SetsockoptString(int(fd), syscall.SOL_SOCKET, syscall.SO_BINDTODEVICE, ifName)
	})
	if ctrlErr != nil {
		return ctrlErr
	}
	return sockErr
}
