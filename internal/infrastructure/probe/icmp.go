// Package probe implements the Probe capability (component A): an
// interface-bound ICMP reachability check with a packet-loss-ratio window,
// replacing the reference implementation's blocking external "ping"
// subprocess (interface_checker.cc's StartChecks) with native Go ICMP.
package probe

import (
	"context"
	"net"
	"net/netip"
	"strconv"
	"time"

	"github.com/crepric/netfailoverd/internal/domain/netstatus"
)

// Mode selects how ICMP probes are carried out, mirroring the teacher's
// ICMPProber native/fallback/auto modes.
type Mode int

const (
	// ModeAuto tries a native ICMP echo first and falls back to a TCP dial
	// whenever the native attempt fails for any reason (socket setup, send
	// or no reply); both share the same per-ping timeout.
	ModeAuto Mode = iota
	// ModeNative always attempts a native ICMP echo.
	ModeNative
	// ModeFallback always uses the TCP-dial fallback.
	ModeFallback
)

const (
	defaultTCPFallbackPort = 80
	defaultPingTarget      = "8.8.8.8"
)

// Config configures an ICMPProber.
type Config struct {
	// Mode selects native ICMP, TCP fallback, or auto-detection.
	Mode Mode
	// TCPFallbackPort is the port dialed in fallback mode.
	TCPFallbackPort int
	// Target is the address probed on every interface, matching the
	// reference implementation's single hardcoded kAddressToPing.
	Target netip.Addr
	// BindToInterface, when true, binds each probe's socket to the
	// interface under test via SO_BINDTODEVICE, so the probe exercises
	// that interface's path specifically rather than the system's
	// current default route.
	BindToInterface bool
	// PerPingTimeout bounds a single echo round-trip.
	PerPingTimeout time.Duration
	// WindowDuration is the total span of one health check: pings are
	// sent at Interval until WindowDuration elapses.
	WindowDuration time.Duration
	// Interval is the spacing between pings within one window.
	Interval time.Duration
	// LossThresholdPercent is the packet-loss percentage (0-100) above
	// which the window is classified Unhealthy. Loss at or below the
	// threshold is Healthy.
	LossThresholdPercent float64
}

func (c Config) target() netip.Addr {
	if c.Target.IsValid() {
		return c.Target
	}
	return netip.MustParseAddr(defaultPingTarget)
}

func (c Config) tcpPort() int {
	if c.TCPFallbackPort > 0 {
		return c.TCPFallbackPort
	}
	return defaultTCPFallbackPort
}

// ICMPProber implements netstatus.Prober.
type ICMPProber struct {
	cfg Config
}

// New constructs an ICMPProber from cfg.
func New(cfg Config) *ICMPProber {
	return &ICMPProber{cfg: cfg}
}

// Probe runs one loss-ratio window against cfg.Target, bound to ifName
// when cfg.BindToInterface is set, and classifies the result against
// cfg.LossThresholdPercent.
func (p *ICMPProber) Probe(ctx context.Context, ifName string) netstatus.Status {
	deadline := time.Now().Add(p.cfg.WindowDuration)
	sent, lost := 0, 0

	for {
		sent++
		if !p.pingOnce(ctx, ifName) {
			lost++
		}

		// A non-positive window or interval degrades to a single ping.
		if p.cfg.WindowDuration <= 0 || p.cfg.Interval <= 0 || !time.Now().Before(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			sent--
			goto classify
		case <-time.After(p.cfg.Interval):
		}
	}

classify:
	return classifyLoss(sent, lost, p.cfg.LossThresholdPercent)
}

// classifyLoss turns a ping count into a health status. Loss at or below
// thresholdPct is Healthy, strictly above it is Unhealthy; sent == 0
// (every ping was cancelled before completing) is Unknown.
func classifyLoss(sent, lost int, thresholdPct float64) netstatus.Status {
	if sent == 0 {
		return netstatus.Unknown
	}
	lossPct := (float64(lost) / float64(sent)) * 100
	if lossPct > thresholdPct {
		return netstatus.Unhealthy
	}
	return netstatus.Healthy
}

// pingOnce performs one reachability attempt, native ICMP or TCP fallback
// depending on cfg.Mode, and reports whether it succeeded.
func (p *ICMPProber) pingOnce(ctx context.Context, ifName string) bool {
	target := p.cfg.target()
	timeout := p.cfg.PerPingTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	switch p.cfg.Mode {
	case ModeFallback:
		return p.tcpPing(pctx, target, ifName)
	case ModeNative:
		return p.nativePing(pctx, target, ifName, timeout) == nil
	default: // ModeAuto
		if err := p.nativePing(pctx, target, ifName, timeout); err == nil {
			return true
		}
		return p.tcpPing(pctx, target, ifName)
	}
}

// tcpPing dials the target on cfg.TCPFallbackPort, optionally bound to
// ifName, and reports whether the connection succeeded.
func (p *ICMPProber) tcpPing(ctx context.Context, target netip.Addr, ifName string) bool {
	dialer := &net.Dialer{}
	if p.cfg.BindToInterface && ifName != "" {
		dialer.Control = bindControl(ifName)
	}
	addr := net.JoinHostPort(target.String(), strconv.Itoa(p.cfg.tcpPort()))
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
