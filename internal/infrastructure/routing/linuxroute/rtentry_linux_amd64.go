//go:build linux && amd64

package linuxroute

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// The SIOCADDRT/SIOCDELRT ioctl numbers from <linux/sockios.h>, and the
// struct rtentry layout from <linux/route.h>. x/sys/unix does not export
// typed helpers for either (route ioctls predate netlink and are rarely
// used by modern Go code), so both are reproduced here to match the
// kernel's wire layout exactly, the same contract the original
// RouteManager::AddRoute/DeleteRoute relied on.
const (
	siocAddRt = 0x890B
	siocDelRt = 0x890C

	rtfUp      = 0x0001
	rtfGateway = 0x0002
)

// sockaddrIn mirrors struct sockaddr_in, embedded inside struct rtentry's
// generic 16-byte struct sockaddr fields for AF_INET routes.
type sockaddrIn struct {
	family uint16
	port   uint16
	addr   [4]byte
	zero   [8]byte
}

// rtEntry mirrors the kernel's struct rtentry (linux/route.h) on 64-bit
// platforms. Field sizes and padding are chosen to reproduce the compiler's
// natural alignment of the C struct (120 bytes in total, with metric at
// offset 80 and dev at offset 88). This layout is specific to 64-bit Linux (the struct contains
// two native-word-sized pointers), hence the amd64 build constraint.
type rtEntry struct {
	pad1    uint64
	dst     sockaddrIn
	gateway sockaddrIn
	genmask sockaddrIn
	flags   uint16
	pad2    int16
	_       [4]byte
	pad3    uint64
	pad4    uintptr
	metric  int16
	_       [6]byte
	dev     uintptr
	mtu     uint64
	window  uint64
	irtt    uint16
	_       [6]byte
}

// configureDefaultRoute builds an rtEntry for a default route (destination
// and netmask 0.0.0.0) on ifName via gw, at the given kernel-internal
// metric, following RouteManager's ConfigureRoute.
func configureDefaultRoute(devNameBytes []byte, kernelMetric int, gw [4]byte) rtEntry {
	var rt rtEntry
	rt.dst = sockaddrIn{family: unix.AF_INET}
	rt.genmask = sockaddrIn{family: unix.AF_INET}
	rt.gateway = sockaddrIn{family: unix.AF_INET, addr: gw}
	rt.flags = rtfUp | rtfGateway
	rt.metric = int16(kernelMetric)
	rt.dev = uintptr(unsafe.Pointer(&devNameBytes[0]))
	return rt
}

func ioctlRoute(req uintptr, rt *rtEntry) error {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return err
	}
	defer unix.Close(fd)

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(unsafe.Pointer(rt)))
	if errno != 0 {
		return errno
	}
	return nil
}

// addRoute issues SIOCADDRT for a default route on ifName.
func addRoute(ifName string, kernelMetric int, gw [4]byte) error {
	devNameBytes := cString(ifName)
	rt := configureDefaultRoute(devNameBytes, kernelMetric, gw)
	err := ioctlRoute(siocAddRt, &rt)
	runtime.KeepAlive(devNameBytes)
	return err
}

// deleteRoute issues SIOCDELRT for a default route on ifName.
func deleteRoute(ifName string, kernelMetric int, gw [4]byte) error {
	devNameBytes := cString(ifName)
	rt := configureDefaultRoute(devNameBytes, kernelMetric, gw)
	err := ioctlRoute(siocDelRt, &rt)
	runtime.KeepAlive(devNameBytes)
	return err
}

// cString returns a NUL-terminated byte slice for use as a C string
// pointer source; the kernel only reads up to IFNAMSIZ bytes or the first
// NUL, whichever comes first.
func cString(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}
